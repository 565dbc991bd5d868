// Package lock implements an in-process advisory lock table with one FIFO
// queue per key. It satisfies provider.Locker.
//
// Waiters on the same key are granted the lock strictly in arrival order: on
// Unlock the lock is handed directly to the oldest waiter, so a newcomer can
// never barge ahead of a queued caller. Locks are not reentrant.
package lock

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	pr "github.com/unkn0wn-root/kvbag/provider"
)

const (
	defaultShards  = 64
	defaultTimeout = 3 * time.Second
)

type Options struct {
	// Shards is rounded up to a power of two. 0 => 64.
	Shards int
	// Timeout bounds how long Lock waits. 0 => 3s, negative => wait on ctx only.
	Timeout time.Duration
}

type Table struct {
	shards  []*shard
	mask    uint64
	timeout time.Duration
}

var _ pr.Locker = (*Table)(nil)

type shard struct {
	mu   sync.Mutex
	keys map[string]*entry
}

// entry exists only while the key is held or waited on.
type entry struct {
	held    bool
	waiters list.List // *waiter, oldest first
}

type waiter struct {
	granted chan struct{}
}

func New(opts Options) *Table {
	n := 1
	want := opts.Shards
	if want <= 0 {
		want = defaultShards
	}
	for n < want {
		n <<= 1
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	t := &Table{
		shards:  make([]*shard, n),
		mask:    uint64(n - 1),
		timeout: timeout,
	}
	for i := range t.shards {
		t.shards[i] = &shard{keys: make(map[string]*entry)}
	}
	return t
}

func (t *Table) shard(key string) *shard {
	return t.shards[xxhash.Sum64String(key)&t.mask]
}

// Lock acquires the lock for key, queueing behind earlier callers.
// It returns false if the timeout elapses or ctx is done first.
func (t *Table) Lock(ctx context.Context, key string) bool {
	s := t.shard(key)

	s.mu.Lock()
	e, ok := s.keys[key]
	if !ok {
		e = &entry{}
		s.keys[key] = e
	}
	if !e.held {
		e.held = true
		s.mu.Unlock()
		return true
	}
	w := &waiter{granted: make(chan struct{})}
	el := e.waiters.PushBack(w)
	s.mu.Unlock()

	var expired <-chan time.Time
	if t.timeout > 0 {
		timer := time.NewTimer(t.timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case <-w.granted:
		return true
	case <-ctx.Done():
	case <-expired:
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-w.granted:
		// handed over while we were giving up; we own it now
		return true
	default:
	}
	e.waiters.Remove(el)
	return false
}

// Unlock releases key and wakes the oldest waiter, if any.
// Unlocking a key that is not held is a no-op.
func (t *Table) Unlock(key string) {
	s := t.shard(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.keys[key]
	if !ok || !e.held {
		return
	}
	if front := e.waiters.Front(); front != nil {
		e.waiters.Remove(front)
		close(front.Value.(*waiter).granted)
		return
	}
	delete(s.keys, key)
}

// Len returns the number of keys currently held or waited on.
func (t *Table) Len() int {
	n := 0
	for _, s := range t.shards {
		s.mu.Lock()
		n += len(s.keys)
		s.mu.Unlock()
	}
	return n
}

func (t *Table) waiting(key string) int {
	s := t.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.keys[key]; ok {
		return e.waiters.Len()
	}
	return 0
}
