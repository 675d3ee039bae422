package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated indicates a missing or unresolvable bearer token.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// StateError reports a transition attempted against the wrong lifecycle state.
// Retrying without a state change will fail again.
type StateError struct {
	Message string
}

func (e *StateError) Error() string { return e.Message }

// NewStateError constructs a StateError with a user-facing message.
func NewStateError(format string, args ...any) *StateError {
	return &StateError{Message: fmt.Sprintf(format, args...)}
}

// PermissionError reports insufficient privilege for the attempted operation.
type PermissionError struct {
	Message string
}

func (e *PermissionError) Error() string { return e.Message }

// NewPermissionError constructs a PermissionError.
func NewPermissionError(format string, args ...any) *PermissionError {
	return &PermissionError{Message: fmt.Sprintf(format, args...)}
}

// ValidationError reports that a data source backing a precondition check was
// unreachable. The caller may retry; no partial verdict is produced.
type ValidationError struct {
	Source string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("pemeriksaan %s gagal: sumber data tidak dapat diakses", e.Source)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// NewValidationError wraps a data source failure.
func NewValidationError(source string, err error) *ValidationError {
	return &ValidationError{Source: source, Err: err}
}

// IsStateError reports whether err is (or wraps) a StateError.
func IsStateError(err error) bool {
	var se *StateError
	return errors.As(err, &se)
}

// IsPermissionError reports whether err is (or wraps) a PermissionError.
func IsPermissionError(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
