package codec

import (
	"errors"
	"fmt"
)

var ErrTooLarge = errors.New("codec: value exceeds size limit")

// LimitCodec bounds payload sizes around Inner. Encodes above MaxEncode never
// reach the store; stored bytes above MaxDecode are rejected without calling
// Inner, so the adapter reports a miss. A limit <= 0 is unlimited.
//
// Typical use is keeping values under bigcache's MaxEntrySize, or refusing
// oversized values another writer put into a shared Redis.
type LimitCodec[V any] struct {
	Inner     Codec[V]
	MaxEncode int
	MaxDecode int
}

func (c LimitCodec[V]) Encode(v V) ([]byte, error) {
	b, err := c.Inner.Encode(v)
	if err != nil {
		return nil, err
	}
	if over(len(b), c.MaxEncode) {
		return nil, fmt.Errorf("%w: encoded %d > %d", ErrTooLarge, len(b), c.MaxEncode)
	}
	return b, nil
}

func (c LimitCodec[V]) Decode(b []byte) (V, error) {
	if over(len(b), c.MaxDecode) {
		var zero V
		return zero, fmt.Errorf("%w: stored %d > %d", ErrTooLarge, len(b), c.MaxDecode)
	}
	return c.Inner.Decode(b)
}

func over(n, limit int) bool { return limit > 0 && n > limit }
