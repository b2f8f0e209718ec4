package internalerr

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrDuplicate        = errors.New("duplicate entry")
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrUnknownMethod    = errors.New("unknown scoring method")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// InputError reports a missing or malformed input file.
type InputError struct {
	Path string
	Err  error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("input %s: %v", e.Path, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrInvalidInput) match any InputError.
func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewInputError wraps err with the offending path.
func NewInputError(path string, err error) *InputError {
	return &InputError{Path: path, Err: err}
}
