package codec

import (
	"errors"

	"google.golang.org/protobuf/proto"
)

var ErrNilMessage = errors.New("codec: nil proto message")

// Protobuf stores proto messages in binary wire format. Marshalling is
// deterministic so equal messages yield equal CAS tokens.
type Protobuf[T proto.Message] struct {
	ctor func() T
}

// NewProtobuf takes a constructor for an empty message,
// e.g. func() *pb.Page { return &pb.Page{} }.
func NewProtobuf[T proto.Message](ctor func() T) Protobuf[T] {
	return Protobuf[T]{ctor: ctor}
}

var detMarshal = proto.MarshalOptions{Deterministic: true}

func (c Protobuf[T]) Encode(m T) ([]byte, error) {
	if !m.ProtoReflect().IsValid() {
		return nil, ErrNilMessage
	}
	return detMarshal.Marshal(m)
}

func (c Protobuf[T]) Decode(b []byte) (T, error) {
	m := c.ctor()
	if err := proto.Unmarshal(b, m); err != nil {
		var zero T
		return zero, err
	}
	return m, nil
}
