package util

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Stripes is a fixed set of mutexes selected by key hash. Stores without a
// native add-if-absent use it to make check-then-write atomic per key.
type Stripes struct {
	mu   []sync.Mutex
	mask uint64
}

// NewStripes rounds n up to a power of two (minimum 1).
func NewStripes(n int) *Stripes {
	size := 1
	for size < n {
		size <<= 1
	}
	return &Stripes{mu: make([]sync.Mutex, size), mask: uint64(size - 1)}
}

func (s *Stripes) For(key string) *sync.Mutex {
	return &s.mu[xxhash.Sum64String(key)&s.mask]
}
