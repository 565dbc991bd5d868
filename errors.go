package kvbag

import (
	"errors"
	"fmt"
)

var (
	ErrNilStore = errors.New("kvbag: store is required")
	ErrNilCodec = errors.New("kvbag: codec is required")

	// Runtime causes. Operations never return these; they reach Hooks and
	// the Logger wrapped in *OpError.
	ErrLockUnavailable = errors.New("kvbag: lock unavailable")
	ErrTokenMismatch   = errors.New("kvbag: cas token mismatch")
	ErrNotInteger      = errors.New("kvbag: value is not an integer")
)

// OpError records which operation failed on which key and why.
type OpError struct {
	Op  string
	Key string
	Err error
}

func (e *OpError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("kvbag: %s %q failed", e.Op, e.Key)
	}
	return fmt.Sprintf("kvbag: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }
