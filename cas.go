package kvbag

import (
	"bytes"
	"context"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"time"
)

// CompareAndSwap writes value iff the bytes currently stored under key equal
// token. The re-read and the write happen under the key lock, which is
// released on every path. A nil token matches an absent key.
func (a *adapter[V]) CompareAndSwap(ctx context.Context, token Token, key string, value V, ttl time.Duration, flags ...Flag) bool {
	if !a.enabled {
		return false
	}
	if !a.locker.Lock(ctx, key) {
		a.lockUnavailable(key, "cas")
		return false
	}
	defer a.locker.Unlock(key)

	_, cur, _ := a.GetWithToken(ctx, key, ReadLatest)
	if !tokensEqual(token, cur) {
		a.hooks.CASConflict(key)
		a.log.Info("compare-and-swap failed due to race condition", Fields{"key": key, "err": &OpError{Op: "cas", Key: key, Err: ErrTokenMismatch}})
		return false
	}
	return a.Set(ctx, key, value, ttl, flags...)
}

func tokensEqual(a, b Token) bool {
	return (a == nil) == (b == nil) && bytes.Equal(a, b)
}

func (a *adapter[V]) Incr(ctx context.Context, key string, delta int64) (int64, bool) {
	if !a.enabled {
		return 0, false
	}
	if !a.locker.Lock(ctx, key) {
		a.lockUnavailable(key, "incr")
		return 0, false
	}
	defer a.locker.Unlock(key)

	cur, ok := a.Get(ctx, key, ReadLatest)
	if !ok {
		return 0, false
	}
	n, ok := toInt64(cur)
	if !ok {
		a.notInteger(key)
		return 0, false
	}
	n = max(addSat(n, delta), 0)

	next, ok := fromInt64[V](n)
	if !ok {
		a.notInteger(key)
		return 0, false
	}

	// keep the original expiry instead of resetting it
	ttl, found, err := a.store.TTL(ctx, key)
	if err != nil {
		a.storeError("ttl", key, err)
		return 0, false
	}
	if !found || ttl < 0 {
		// expired between the read and the TTL lookup
		return 0, false
	}
	if !a.Set(ctx, key, next, ttl) {
		return 0, false
	}
	return n, true
}

func (a *adapter[V]) Decr(ctx context.Context, key string, delta int64) (int64, bool) {
	if delta == math.MinInt64 {
		delta++
	}
	return a.Incr(ctx, key, -delta)
}

func (a *adapter[V]) lockUnavailable(key, op string) {
	a.hooks.LockUnavailable(key, op)
	a.log.Info("could not acquire key lock", Fields{"key": key, "op": op, "err": &OpError{Op: op, Key: key, Err: ErrLockUnavailable}})
}

func (a *adapter[V]) notInteger(key string) {
	a.hooks.NotInteger(key)
	a.log.Debug("incr on non-integer value", Fields{"key": key, "err": &OpError{Op: "incr", Key: key, Err: ErrNotInteger}})
}

// addSat adds without wrapping around.
func addSat(n, delta int64) int64 {
	switch {
	case delta > 0 && n > math.MaxInt64-delta:
		return math.MaxInt64
	case delta < 0 && n < math.MinInt64-delta:
		return math.MinInt64
	}
	return n + delta
}

var decimalInt = regexp.MustCompile(`^-?[0-9]+$`)

// toInt64 accepts integer kinds, integral floats (JSON numbers decoded into
// any) and decimal strings.
func toInt64(v any) (int64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, false
		}
		return int64(f), true
	case reflect.String:
		s := rv.String()
		if !decimalInt.MatchString(s) {
			return 0, false
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// fromInt64 stores n in a V. Interface-typed V must be satisfiable by int64.
func fromInt64[V any](n int64) (V, bool) {
	var out V
	rv := reflect.ValueOf(&out).Elem()
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if rv.OverflowInt(n) {
			return out, false
		}
		rv.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if n < 0 || rv.OverflowUint(uint64(n)) {
			return out, false
		}
		rv.SetUint(uint64(n))
	case reflect.Float32, reflect.Float64:
		rv.SetFloat(float64(n))
	case reflect.String:
		rv.SetString(strconv.FormatInt(n, 10))
	case reflect.Interface:
		iv := reflect.ValueOf(n)
		if !iv.Type().Implements(rv.Type()) {
			return out, false
		}
		rv.Set(iv)
	default:
		return out, false
	}
	return out, true
}
