package kvbag

import (
	"context"
	"time"

	c "github.com/unkn0wn-root/kvbag/codec"
	pr "github.com/unkn0wn-root/kvbag/provider"
)

// Flag modifies a single operation. Flags are a bitmask; unknown bits are ignored.
type Flag uint32

const (
	// ReadLatest asks for the most recent value, bypassing any read-through
	// staleness a store may tolerate. CompareAndSwap always re-reads with it.
	ReadLatest Flag = 1 << iota
)

// Token is the CAS token returned by GetWithToken: the exact bytes last
// observed for a key. It is compared byte-for-byte and never hashed; the
// caller already holds the full previous value, so hashing would only add a
// digest computation to every CAS attempt. A nil Token means "absent".
type Token []byte

// MergeFunc computes the next value from the current one. exists is false when
// the key is absent (or holds the false sentinel). Returning write=false ends
// the merge successfully without writing.
type MergeFunc[V any] func(current V, exists bool) (next V, write bool)

// CASOps is the primitive surface a MergePolicy drives.
type CASOps[V any] interface {
	GetWithToken(ctx context.Context, key string, flags ...Flag) (V, Token, bool)
	Add(ctx context.Context, key string, value V, ttl time.Duration, flags ...Flag) bool
	CompareAndSwap(ctx context.Context, token Token, key string, value V, ttl time.Duration, flags ...Flag) bool
}

// MergePolicy runs a bounded read-modify-write loop over ops and reports
// whether one attempt committed.
type MergePolicy[V any] func(ctx context.Context, ops CASOps[V], key string, fn MergeFunc[V], ttl time.Duration, attempts int, flags Flag) bool

// Cache is the caller-facing API. V is the caller's value type.
type Cache[V any] interface {
	CASOps[V]

	Enabled() bool
	Close(context.Context) error

	Get(ctx context.Context, key string, flags ...Flag) (v V, ok bool)
	Set(ctx context.Context, key string, value V, ttl time.Duration, flags ...Flag) bool
	Delete(ctx context.Context, key string, flags ...Flag) bool
	Merge(ctx context.Context, key string, fn MergeFunc[V], ttl time.Duration, attempts int, flags ...Flag) bool

	// Incr adds delta to an integer-valued entry under the key lock, clamping
	// the result at zero and keeping the entry's remaining TTL.
	Incr(ctx context.Context, key string, delta int64) (int64, bool)
	Decr(ctx context.Context, key string, delta int64) (int64, bool)

	MakeKey(segments ...string) string
	MakeGlobalKey(segments ...string) string
	MakeKeyInternal(keyspace string, segments ...string) string
}

// Options configure an adapter.
// Only Store and Codec are required; others have sensible defaults.
type Options[V any] struct {
	// Required
	Store pr.Store
	Codec c.Codec[V]

	Locker        pr.Locker      // nil => in-process FIFO lock table
	LockTimeout   time.Duration  // default locker only; 0 => 3s
	Keyspace      string         // MakeKey keyspace; "" => "local"
	Logger        Logger         // nil => NopLogger
	Hooks         Hooks          // nil => NopHooks
	MergePolicy   MergePolicy[V] // nil => MergeViaCAS
	MergeAttempts int            // used when Merge gets attempts <= 0; 0 => 10
	Disabled      bool           // every read misses, every write fails
}

func New[V any](opts Options[V]) (Cache[V], error) {
	return newAdapter[V](opts)
}
