package imaging

import (
	"errors"
	"fmt"
)

// ErrContextUnavailable reports that a drawing surface could not be acquired.
// It is fatal for the editing session that hit it.
var ErrContextUnavailable = errors.New("drawing context unavailable")

// DecodeError reports that a source image could not be turned into a Surface:
// corrupt data, an unsupported format, or a failed fetch. No Surface is created
// when it is returned.
type DecodeError struct {
	// Source names what was being decoded (a path, URL, or "bytes").
	Source string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode image %q: %v", e.Source, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError reports that an export attempt produced no bytes. Partial output
// is never returned alongside it.
type EncodeError struct {
	Format Format
	Err    error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("failed to encode %s: %v", e.Format, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }
