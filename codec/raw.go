package codec

// Bytes is an identity codec for []byte values.
// Decode copies, so callers may keep the result after the store reuses its buffer.
type Bytes struct{}

func (Bytes) Encode(b []byte) ([]byte, error) { return b, nil }
func (Bytes) Decode(b []byte) ([]byte, error) { return append([]byte(nil), b...), nil }

// String stores Go strings as their raw bytes (no validation).
// Counters kept as decimal strings work with Incr through this codec.
type String struct{}

func (String) Encode(s string) ([]byte, error) { return []byte(s), nil }
func (String) Decode(b []byte) (string, error) { return string(b), nil }
