package document

import (
	"errors"
	"fmt"
)

// ErrInvalidFileType is returned for files outside the supported types.
var ErrInvalidFileType = errors.New("invalid file type: only PDF, plain text and EPUB are supported")

// DecodeError means the document could not be loaded at all.
type DecodeError struct {
	Name string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Name, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
