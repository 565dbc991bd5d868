package kvbag

import (
	"context"
	"time"
)

// MergeViaCAS is the default MergePolicy: up to attempts rounds of
// GetWithToken -> fn -> Add (absent key) or CompareAndSwap (present key),
// with no pause between rounds.
func MergeViaCAS[V any](ctx context.Context, ops CASOps[V], key string, fn MergeFunc[V], ttl time.Duration, attempts int, flags Flag) bool {
	return mergeLoop(ctx, ops, key, fn, ttl, attempts, flags, nil)
}

// NewMergePolicy returns a MergeViaCAS variant that waits backoff(attempt)
// after each lost round (attempt starts at 1). The wait aborts the merge if
// ctx is done first.
func NewMergePolicy[V any](backoff func(attempt int) time.Duration) MergePolicy[V] {
	return func(ctx context.Context, ops CASOps[V], key string, fn MergeFunc[V], ttl time.Duration, attempts int, flags Flag) bool {
		return mergeLoop(ctx, ops, key, fn, ttl, attempts, flags, backoff)
	}
}

func mergeLoop[V any](ctx context.Context, ops CASOps[V], key string, fn MergeFunc[V], ttl time.Duration, attempts int, flags Flag, backoff func(int) time.Duration) bool {
	for attempt := 1; attempt <= attempts; attempt++ {
		cur, token, exists := ops.GetWithToken(ctx, key, flags|ReadLatest)

		next, write := fn(cur, exists)
		if !write {
			return true // nothing to merge
		}

		var ok bool
		if token == nil {
			ok = ops.Add(ctx, key, next, ttl, flags)
		} else {
			ok = ops.CompareAndSwap(ctx, token, key, next, ttl, flags)
		}
		if ok {
			return true
		}

		if attempt == attempts {
			break
		}
		if backoff != nil {
			if d := backoff(attempt); d > 0 && !sleepCtx(ctx, d) {
				return false
			}
		} else if ctx.Err() != nil {
			return false
		}
	}
	return false
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
