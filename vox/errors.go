package vox

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedStream reports bytes that cannot be a .vox stream: bad
	// magic, truncated headers, or declared lengths running past the input.
	ErrMalformedStream = errors.New("malformed stream")

	// ErrStructural reports a well-formed chunk stream whose chunks do not
	// describe valid models (unpaired XYZI, bad palette size, bad dimensions).
	ErrStructural = errors.New("structural error")
)

// DecodeError carries the failing byte offset. Offset is -1 when the
// failure is not tied to one chunk. Use errors.Is with ErrMalformedStream or
// ErrStructural to classify it.
type DecodeError struct {
	Kind   error
	Offset int64
	Msg    string
}

func (e *DecodeError) Error() string {
	if e.Offset < 0 {
		return fmt.Sprintf("vox: %v: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("vox: %v at offset %d: %s", e.Kind, e.Offset, e.Msg)
}

func (e *DecodeError) Unwrap() error { return e.Kind }

func malformed(offset int64, format string, args ...any) error {
	return &DecodeError{Kind: ErrMalformedStream, Offset: offset, Msg: fmt.Sprintf(format, args...)}
}

func structural(offset int64, format string, args ...any) error {
	return &DecodeError{Kind: ErrStructural, Offset: offset, Msg: fmt.Sprintf(format, args...)}
}
