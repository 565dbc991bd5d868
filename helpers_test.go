package kvbag

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	c "github.com/unkn0wn-root/kvbag/codec"
	pr "github.com/unkn0wn-root/kvbag/provider"
	"github.com/unkn0wn-root/kvbag/provider/memory"
)

type user struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// faultyStore fails the operations whose error is set.
type faultyStore struct {
	*memory.Store
	getErr, setErr, addErr, delErr, ttlErr error
}

var _ pr.Store = (*faultyStore)(nil)

func newFaultyStore() *faultyStore { return &faultyStore{Store: memory.New()} }

func (s *faultyStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if s.getErr != nil {
		return nil, false, s.getErr
	}
	return s.Store.Get(ctx, key)
}

func (s *faultyStore) Set(ctx context.Context, key string, v []byte, ttl time.Duration) (bool, error) {
	if s.setErr != nil {
		return false, s.setErr
	}
	return s.Store.Set(ctx, key, v, ttl)
}

func (s *faultyStore) Add(ctx context.Context, key string, v []byte, ttl time.Duration) (bool, error) {
	if s.addErr != nil {
		return false, s.addErr
	}
	return s.Store.Add(ctx, key, v, ttl)
}

func (s *faultyStore) Delete(ctx context.Context, key string) error {
	if s.delErr != nil {
		return s.delErr
	}
	return s.Store.Delete(ctx, key)
}

func (s *faultyStore) TTL(ctx context.Context, key string) (time.Duration, bool, error) {
	if s.ttlErr != nil {
		return 0, false, s.ttlErr
	}
	return s.Store.TTL(ctx, key)
}

type refusingLocker struct{}

func (refusingLocker) Lock(context.Context, string) bool { return false }
func (refusingLocker) Unlock(string)                     {}

type recHooks struct {
	NopHooks
	mu     sync.Mutex
	events []string
}

func (h *recHooks) add(format string, args ...any) {
	h.mu.Lock()
	h.events = append(h.events, fmt.Sprintf(format, args...))
	h.mu.Unlock()
}

func (h *recHooks) CASConflict(k string)             { h.add("cas_conflict %s", k) }
func (h *recHooks) LockUnavailable(k, op string)     { h.add("lock_unavailable %s %s", op, k) }
func (h *recHooks) DecodeFailed(k string, _ error)   { h.add("decode_failed %s", k) }
func (h *recHooks) NotInteger(k string)              { h.add("not_integer %s", k) }
func (h *recHooks) StoreError(op, k string, _ error) { h.add("store_error %s %s", op, k) }
func (h *recHooks) MergeExhausted(k string, n int)   { h.add("merge_exhausted %s %d", k, n) }

func (h *recHooks) has(ev string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, e := range h.events {
		if e == ev {
			return true
		}
	}
	return false
}

type logEntry struct {
	level string
	msg   string
	f     Fields
}

type recLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *recLogger) add(level, msg string, f Fields) {
	l.mu.Lock()
	l.entries = append(l.entries, logEntry{level, msg, f})
	l.mu.Unlock()
}

func (l *recLogger) Debug(msg string, f Fields) { l.add("debug", msg, f) }
func (l *recLogger) Info(msg string, f Fields)  { l.add("info", msg, f) }
func (l *recLogger) Warn(msg string, f Fields)  { l.add("warn", msg, f) }
func (l *recLogger) Error(msg string, f Fields) { l.add("error", msg, f) }

func (l *recLogger) find(msg string) (logEntry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.msg == msg {
			return e, true
		}
	}
	return logEntry{}, false
}

func newTestCache[V any](t *testing.T, store pr.Store, codec c.Codec[V], optsOpt func(*Options[V])) Cache[V] {
	t.Helper()
	opts := Options[V]{Store: store, Codec: codec}
	if optsOpt != nil {
		optsOpt(&opts)
	}
	cc, err := New[V](opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return cc
}
