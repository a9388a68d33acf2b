package errs

import "errors"

// Sentinel errors shared across packages. Wrap them with fmt.Errorf("...: %w", ErrX)
// so the message names the missing key and callers can still use errors.Is.
var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid")
	ErrConflict = errors.New("already exists")
)
