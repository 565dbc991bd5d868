package kvbag

import (
	"context"
	"time"

	c "github.com/unkn0wn-root/kvbag/codec"
	"github.com/unkn0wn-root/kvbag/lock"
	pr "github.com/unkn0wn-root/kvbag/provider"
)

type adapter[V any] struct {
	store         pr.Store
	locker        pr.Locker
	codec         c.Codec[V]
	log           Logger
	hooks         Hooks
	keyspace      string
	merge         MergePolicy[V]
	mergeAttempts int
	enabled       bool
}

var _ Cache[struct{}] = (*adapter[struct{}])(nil)

func newAdapter[V any](opts Options[V]) (*adapter[V], error) {
	if opts.Store == nil {
		return nil, ErrNilStore
	}
	if opts.Codec == nil {
		return nil, ErrNilCodec
	}

	a := &adapter[V]{
		store:   opts.Store,
		codec:   opts.Codec,
		enabled: !opts.Disabled,
	}

	// defaults
	a.log = coalesce[Logger](opts.Logger, NopLogger{})
	a.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	a.keyspace = coalesce(opts.Keyspace, defaultKeyspace)
	a.mergeAttempts = coalesce(opts.MergeAttempts, defaultMergeAttempts)

	if opts.Locker != nil {
		a.locker = opts.Locker
	} else {
		a.locker = lock.New(lock.Options{Timeout: opts.LockTimeout})
	}
	if opts.MergePolicy != nil {
		a.merge = opts.MergePolicy
	} else {
		a.merge = MergeViaCAS[V]
	}

	return a, nil
}

func (a *adapter[V]) Enabled() bool { return a.enabled }

func (a *adapter[V]) Close(ctx context.Context) error {
	return a.store.Close(ctx)
}

func (a *adapter[V]) Get(ctx context.Context, key string, _ ...Flag) (V, bool) {
	v, _, ok := a.fetch(ctx, key)
	return v, ok
}

func (a *adapter[V]) GetWithToken(ctx context.Context, key string, _ ...Flag) (V, Token, bool) {
	var zero V
	v, raw, ok := a.fetch(ctx, key)
	if !ok || isFalse(v) {
		// a stored false is indistinguishable from a miss here
		return zero, nil, false
	}
	if raw == nil {
		raw = []byte{}
	}
	return v, Token(raw), true
}

// fetch reads and decodes key. Every store returns the freshest value it has,
// so ReadLatest needs no special handling at this layer.
func (a *adapter[V]) fetch(ctx context.Context, key string) (V, []byte, bool) {
	var zero V
	if !a.enabled {
		return zero, nil, false
	}
	raw, ok, err := a.store.Get(ctx, key)
	if err != nil {
		a.storeError("get", key, err)
		return zero, nil, false
	}
	if !ok {
		return zero, nil, false
	}
	v, err := a.codec.Decode(raw)
	if err != nil {
		a.hooks.DecodeFailed(key, err)
		a.log.Debug("value decode failed; treating as miss", Fields{"key": key, "err": err})
		return zero, nil, false
	}
	return v, raw, true
}

func (a *adapter[V]) Set(ctx context.Context, key string, value V, ttl time.Duration, _ ...Flag) bool {
	if !a.enabled {
		return false
	}
	raw, err := a.codec.Encode(value)
	if err != nil {
		a.log.Warn("value encode failed", Fields{"key": key, "err": err})
		return false
	}
	ok, err := a.store.Set(ctx, key, raw, ttl)
	if err != nil {
		a.storeError("set", key, err)
		return false
	}
	if !ok {
		a.log.Debug("set rejected by store", Fields{"key": key})
	}
	return ok
}

func (a *adapter[V]) Add(ctx context.Context, key string, value V, ttl time.Duration, _ ...Flag) bool {
	if !a.enabled {
		return false
	}
	raw, err := a.codec.Encode(value)
	if err != nil {
		a.log.Warn("value encode failed", Fields{"key": key, "err": err})
		return false
	}
	ok, err := a.store.Add(ctx, key, raw, ttl)
	if err != nil {
		a.storeError("add", key, err)
		return false
	}
	return ok
}

// Delete reports success for absent keys; only a store failure yields false.
func (a *adapter[V]) Delete(ctx context.Context, key string, _ ...Flag) bool {
	if !a.enabled {
		return false
	}
	if err := a.store.Delete(ctx, key); err != nil {
		a.storeError("delete", key, err)
		return false
	}
	return true
}

func (a *adapter[V]) Merge(ctx context.Context, key string, fn MergeFunc[V], ttl time.Duration, attempts int, flags ...Flag) bool {
	if !a.enabled {
		return false
	}
	if attempts <= 0 {
		attempts = a.mergeAttempts
	}
	if a.merge(ctx, a, key, fn, ttl, attempts, joinFlags(flags)) {
		return true
	}
	a.hooks.MergeExhausted(key, attempts)
	a.log.Info("merge gave up", Fields{"key": key, "attempts": attempts})
	return false
}

func (a *adapter[V]) MakeKey(segments ...string) string {
	return MakeKeyInternal(a.keyspace, segments...)
}

func (a *adapter[V]) MakeGlobalKey(segments ...string) string {
	return MakeKeyInternal(globalKeyspace, segments...)
}

func (a *adapter[V]) MakeKeyInternal(keyspace string, segments ...string) string {
	return MakeKeyInternal(keyspace, segments...)
}

func (a *adapter[V]) storeError(op, key string, err error) {
	a.hooks.StoreError(op, key, err)
	a.log.Warn("store error", Fields{"op": op, "key": key, "err": &OpError{Op: op, Key: key, Err: err}})
}

func isFalse[V any](v V) bool {
	b, ok := any(v).(bool)
	return ok && !b
}
