package wire

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
	"time"
)

func mustDecodeEntry(t *testing.T, b []byte) (int64, []byte) {
	t.Helper()
	exp, p, err := DecodeEntry(b)
	if err != nil {
		t.Fatalf("DecodeEntry error: %v", err)
	}
	return exp, p
}

func TestEntryRTEmptyAndNonEmpty(t *testing.T) {
	cases := []struct {
		exp     int64
		payload []byte
	}{
		{0, nil},
		{42, []byte("hello")},
		{math.MaxInt64, []byte{0, 1, 2, 3, 4}},
	}
	for _, tc := range cases {
		enc := EncodeEntry(tc.exp, tc.payload)
		exp, p := mustDecodeEntry(t, enc)
		if exp != tc.exp {
			t.Fatalf("expiry mismatch: got %d want %d", exp, tc.exp)
		}
		if !bytes.Equal(p, tc.payload) {
			t.Fatalf("payload mismatch: got %x want %x", p, tc.payload)
		}
	}
}

func TestEntryRejectsTrailingBytes(t *testing.T) {
	enc := EncodeEntry(7, []byte("x"))
	enc = append(enc, 0xDE, 0xAD)
	if _, _, err := DecodeEntry(enc); err == nil {
		t.Fatalf("expected error on trailing bytes")
	}
}

func TestEntryCorruptHeadersAndLengths(t *testing.T) {
	enc := EncodeEntry(1, []byte("abc"))

	badMagic := append([]byte(nil), enc...)
	badMagic[0] = 'X'
	if _, _, err := DecodeEntry(badMagic); err == nil {
		t.Fatalf("expected error on bad magic")
	}

	badVer := append([]byte(nil), enc...)
	badVer[4] = version + 1
	if _, _, err := DecodeEntry(badVer); err == nil {
		t.Fatalf("expected error on bad version")
	}

	// vlen is at offset 13..16 (4 magic +1 ver +8 expiry)
	tooLong := append([]byte(nil), enc...)
	binary.BigEndian.PutUint32(tooLong[13:17], uint32(len("abc")+1))
	if _, _, err := DecodeEntry(tooLong); err == nil {
		t.Fatalf("expected error on vlen beyond buffer")
	}

	trunc := enc[:len(enc)-1]
	if _, _, err := DecodeEntry(trunc); err == nil {
		t.Fatalf("expected error on truncated buffer")
	}

	if _, _, err := DecodeEntry([]byte("KVBG")); err == nil {
		t.Fatalf("expected error on header-only buffer")
	}
}

func TestEntryZeroCopyPayload(t *testing.T) {
	enc := EncodeEntry(1, []byte("Z"))
	_, p := mustDecodeEntry(t, enc)
	p[0] = 'Q'
	_, p2 := mustDecodeEntry(t, enc)
	if p2[0] != 'Q' {
		t.Fatalf("expected zero-copy slice into enc buffer")
	}
}

func TestExpiryHelpers(t *testing.T) {
	now := time.Unix(1700000000, 0)

	if got := ExpiresAt(now, 0); got != 0 {
		t.Fatalf("ExpiresAt(0) = %d, want 0", got)
	}
	if got := ExpiresAt(now, -time.Second); got != 0 {
		t.Fatalf("ExpiresAt(<0) = %d, want 0", got)
	}
	exp := ExpiresAt(now, time.Minute)
	if exp != now.Add(time.Minute).UnixNano() {
		t.Fatalf("ExpiresAt(1m) = %d", exp)
	}

	if Expired(0, now.Add(1000*time.Hour)) {
		t.Fatalf("zero expiry must never expire")
	}
	if Expired(exp, now) {
		t.Fatalf("entry expired too early")
	}
	if !Expired(exp, now.Add(time.Minute)) {
		t.Fatalf("entry should be expired at its deadline")
	}

	if got := Remaining(exp, now.Add(20*time.Second)); got != 40*time.Second {
		t.Fatalf("Remaining = %v, want 40s", got)
	}
	if got := Remaining(0, now); got != 0 {
		t.Fatalf("Remaining(no expiry) = %v, want 0", got)
	}
}
