package kvbag

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The adapter calls them on hot paths, some while holding a key lock.
type Hooks interface {
	// CompareAndSwap found a different token than the caller's (lost race).
	CASConflict(key string)

	// The per-key lock could not be acquired. op ∈ {"cas", "incr"}.
	LockUnavailable(key, op string)

	// Stored bytes could not be decoded; the read reported a miss.
	DecodeFailed(key string, err error)

	// Incr found a value that is not integer-compatible.
	NotInteger(key string)

	// The store returned an error. op ∈ {"get", "set", "add", "delete", "ttl"}.
	StoreError(op, key string, err error)

	// Merge gave up after attempts tries.
	MergeExhausted(key string, attempts int)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) CASConflict(string)               {}
func (NopHooks) LockUnavailable(string, string)   {}
func (NopHooks) DecodeFailed(string, error)       {}
func (NopHooks) NotInteger(string)                {}
func (NopHooks) StoreError(string, string, error) {}
func (NopHooks) MergeExhausted(string, int)       {}
