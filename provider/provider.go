// Package provider defines the native store capability consumed by kvbag.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly the
// same []byte that was previously passed to Set or Add for a key (no
// prepended/appended metadata visible to the caller, no re-encoding, no
// mutation). A store that frames values internally (e.g. to carry an expiry)
// MUST strip the framing before returning them. kvbag uses the returned bytes
// as the compare-and-swap token, so any drift breaks CAS.
package provider

import (
	"context"
	"time"
)

// Store is a minimal byte store with per-entry TTLs.
// Must be safe for concurrent use. A ttl <= 0 means "no expiry".
type Store interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value unconditionally.
	// Returns ok=false when the store refused the write (e.g. under pressure).
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) (ok bool, err error)

	// Add stores value only if key holds no live entry. The existence check and
	// the write must be atomic with respect to other Add/Set calls on this store.
	// Returns ok=false when the key already exists.
	Add(ctx context.Context, key string, value []byte, ttl time.Duration) (ok bool, err error)

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// TTL reports the remaining lifetime of a live entry.
	// ttl == 0 with found == true means the entry never expires.
	TTL(ctx context.Context, key string) (ttl time.Duration, found bool, err error)

	// Close releases resources.
	Close(ctx context.Context) error
}

// Locker is an advisory, non-reentrant, per-key mutual exclusion primitive.
// Lock blocks for at most an implementation-defined bound and reports false
// when the lock could not be acquired. A holder must never call Lock again on
// the same key before Unlock.
type Locker interface {
	Lock(ctx context.Context, key string) bool
	Unlock(key string)
}
