package codec

import (
	"github.com/fxamacker/cbor/v2"
)

// CBOR encodes with the RFC 8949 core deterministic rules (sorted map keys,
// shortest integer forms), so equal values always produce the same bytes and
// the same CAS token. Integers decoded into V=any are int64, which Incr
// accepts. The zero value is ready to use.
type CBOR[V any] struct{}

var _ Codec[struct{}] = CBOR[struct{}]{}

var cborEnc, cborDec = func() (cbor.EncMode, cbor.DecMode) {
	eo := cbor.CoreDetEncOptions()
	eo.Time = cbor.TimeRFC3339Nano
	em, err := eo.EncMode()
	if err != nil {
		panic(err)
	}
	dm, err := cbor.DecOptions{IntDec: cbor.IntDecConvertSigned}.DecMode()
	if err != nil {
		panic(err)
	}
	return em, dm
}()

func (CBOR[V]) Encode(v V) ([]byte, error) { return cborEnc.Marshal(v) }

func (CBOR[V]) Decode(b []byte) (V, error) {
	var v V
	err := cborDec.Unmarshal(b, &v)
	return v, err
}
