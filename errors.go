package flatbuffers

import (
	"fmt"

	"golang.org/x/xerrors"
)

// Sentinel causes carried by DecodeError. Match with xerrors.Is.
var (
	// ErrOutOfBounds reports an offset that escapes the buffer.
	ErrOutOfBounds = xerrors.New("offset out of bounds")

	// ErrInvalidUTF8 reports string bytes that are not valid UTF-8.
	ErrInvalidUTF8 = xerrors.New("string is not valid UTF-8")
)

// DecodeError is returned by Table accessors when an encoded buffer is
// malformed. It is the recoverable error class: a bad buffer must never
// crash the reader. Misuse of the Builder is the other class and panics at
// the call site, since it indicates a bug in the calling code rather than
// bad data.
type DecodeError struct {
	Pos UOffsetT // buffer offset at which decoding failed
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("flatbuffers: malformed buffer at offset %d: %v", e.Pos, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func decodeErr(pos UOffsetT, cause error) error {
	return &DecodeError{Pos: pos, Err: cause}
}
