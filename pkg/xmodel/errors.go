package xmodel

import (
	"errors"
	"fmt"
	"io"
)

// Codec errors. Every failure aborts the Encode or Decode call that hit it.
var (
	ErrMagicMismatch       = errors.New("xmodel: magic mismatch: expected 'xmda'")
	ErrUnsupportedVersion  = errors.New("xmodel: unsupported version")
	ErrUnknownStructureTag = errors.New("xmodel: unknown structure tag")
	ErrDanglingReference   = errors.New("xmodel: dangling reference")
	ErrIO                  = errors.New("xmodel: i/o error")
	ErrTerminatorMismatch  = errors.New("xmodel: terminator mismatch: expected 'eoxd'")
	ErrStructureMismatch   = errors.New("xmodel: unexpected structure kind")
	ErrOverflow            = errors.New("xmodel: value does not fit its wire width")
	ErrMalformed           = errors.New("xmodel: malformed graph")
	ErrNilContainer        = errors.New("xmodel: nil container")
)

// ioError wraps a sink or source failure so that both ErrIO and the cause
// match with errors.Is. A clean EOF inside the stream is a truncation.
func ioError(err error) error {
	if errors.Is(err, ErrIO) {
		return err
	}
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return fmt.Errorf("%w: %w", ErrIO, err)
}
