package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"time"
)

const (
	version byte = 1
	hdrLen       = 4 + 1 + 8 + 4
)

var (
	ErrCorrupt = errors.New("kvbag: corrupt entry")
	magic4     = [...]byte{'K', 'V', 'B', 'G'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Entry: magic(4) | ver(1) | expiresAt(i64 be, unix nanos, 0 = never) | vlen(u32 be) | payload(vlen)
func EncodeEntry(expiresAt int64, payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(hdrLen + len(payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)

	var u8 [8]byte
	var u4 [4]byte

	binary.BigEndian.PutUint64(u8[:], uint64(expiresAt))
	buf.Write(u8[:])

	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])

	buf.Write(payload)
	return buf.Bytes()
}

// DecodeEntry returns the expiry and a sub-slice of b holding the payload.
// Callers that hand the payload out must copy it if b is reused by the store.
func DecodeEntry(b []byte) (expiresAt int64, payload []byte, err error) {
	if len(b) < hdrLen || !hasMagic(b) || b[4] != version {
		return 0, nil, ErrCorrupt
	}

	off := 5

	expiresAt = int64(binary.BigEndian.Uint64(b[off : off+8]))
	off += 8

	vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if vlen < 0 || vlen != len(b)-off { // strict: no trailing bytes
		return 0, nil, ErrCorrupt
	}

	return expiresAt, b[off : off+vlen], nil
}

// ExpiresAt converts a relative ttl into the absolute expiry stored in an entry.
// ttl <= 0 yields 0 (never expires).
func ExpiresAt(now time.Time, ttl time.Duration) int64 {
	if ttl <= 0 {
		return 0
	}
	return now.Add(ttl).UnixNano()
}

// Expired reports whether an entry with the given expiry is dead at now.
func Expired(expiresAt int64, now time.Time) bool {
	return expiresAt != 0 && now.UnixNano() >= expiresAt
}

// Remaining returns the time left before expiresAt, or 0 for entries that
// never expire. Expired entries report a negative duration.
func Remaining(expiresAt int64, now time.Time) time.Duration {
	if expiresAt == 0 {
		return 0
	}
	return time.Duration(expiresAt - now.UnixNano())
}
