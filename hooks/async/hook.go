// Package asynchook moves kvbag.Hooks calls off the adapter's hot path.
//
// Events go through a bounded queue drained by a fixed worker pool. When the
// queue is full the event is dropped and counted; the adapter never blocks on
// a hook, even while it holds a key lock.
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{CASConflictEvery: 10})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	cache, _ := kvbag.New[User](kvbag.Options[User]{
//	    Store: store,
//	    Codec: codec.JSON[User]{},
//	    Hooks: hooks,
//	})
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/kvbag"
)

type Hooks struct {
	inner   kvbag.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
}

var _ kvbag.Hooks = (*Hooks)(nil)

func New(inner kvbag.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close stops accepting events and waits for queued ones to run.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.mu.Lock()
		h.closed = true
		close(h.q)
		h.mu.Unlock()
		h.wg.Wait()
	})
}

// Dropped reports how many events were discarded on a full or closed queue.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		h.dropped.Add(1)
		return
	}
	select {
	case h.q <- f:
	default:
		h.dropped.Add(1)
	}
}

func (h *Hooks) CASConflict(k string) { h.try(func() { h.inner.CASConflict(k) }) }
func (h *Hooks) NotInteger(k string)  { h.try(func() { h.inner.NotInteger(k) }) }
func (h *Hooks) LockUnavailable(k, op string) {
	h.try(func() { h.inner.LockUnavailable(k, op) })
}
func (h *Hooks) DecodeFailed(k string, err error) {
	h.try(func() { h.inner.DecodeFailed(k, err) })
}
func (h *Hooks) StoreError(op, k string, err error) {
	h.try(func() { h.inner.StoreError(op, k, err) })
}
func (h *Hooks) MergeExhausted(k string, n int) {
	h.try(func() { h.inner.MergeExhausted(k, n) })
}
