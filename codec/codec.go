// Package codec converts cache values to and from the byte strings handed to
// a provider.Store. The encoded bytes double as kvbag's CAS token, so a codec
// used with CompareAndSwap should be deterministic for equal values.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
