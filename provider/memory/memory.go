// Package memory is an in-process provider.Store backed by a map.
// TTLs are exact; Add is atomic under the store mutex.
package memory

import (
	"context"
	"sync"
	"time"

	pr "github.com/unkn0wn-root/kvbag/provider"
)

type entry struct {
	v   []byte
	exp time.Time // zero => no TTL
}

func (e entry) expired(now time.Time) bool {
	return !e.exp.IsZero() && !now.Before(e.exp)
}

// Store is safe for concurrent use. Values are copied on the way in and out.
type Store struct {
	mu  sync.Mutex
	m   map[string]entry
	now func() time.Time
}

var _ pr.Store = (*Store)(nil)

func New() *Store { return &Store{m: make(map[string]entry), now: time.Now} }

// NewWithClock lets tests drive expiry.
func NewWithClock(now func() time.Time) *Store {
	return &Store{m: make(map[string]entry), now: now}
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(key)
	if !ok {
		return nil, false, nil
	}
	return append([]byte{}, e.v...), true, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(key, value, ttl)
	return true, nil
}

func (s *Store) Add(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.live(key); ok {
		return false, nil
	}
	s.put(key, value, ttl)
	return true, nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.m, key)
	s.mu.Unlock()
	return nil
}

func (s *Store) TTL(_ context.Context, key string) (time.Duration, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(key)
	if !ok {
		return 0, false, nil
	}
	if e.exp.IsZero() {
		return 0, true, nil
	}
	return e.exp.Sub(s.now()), true, nil
}

// Len counts stored entries, including expired ones not yet reaped.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

func (s *Store) Close(_ context.Context) error { return nil }

// live must be called with mu held. Expired entries are dropped lazily.
func (s *Store) live(key string) (entry, bool) {
	e, ok := s.m[key]
	if !ok {
		return entry{}, false
	}
	if e.expired(s.now()) {
		delete(s.m, key)
		return entry{}, false
	}
	return e, true
}

func (s *Store) put(key string, value []byte, ttl time.Duration) {
	var exp time.Time
	if ttl > 0 {
		exp = s.now().Add(ttl)
	}
	s.m[key] = entry{v: append([]byte{}, value...), exp: exp}
}
