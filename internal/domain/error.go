package domain

import "errors"

// Error kinds. Every client-visible failure unwraps to exactly one of them.
var (
	// ErrInvalidInput is returned when a request payload is missing fields or is malformed.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthenticated is returned when the caller could not be identified.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden is returned when the caller references a resource it does not own.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound is returned when an entity is absent or not visible to the caller.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write would violate a uniqueness constraint.
	ErrConflict = errors.New("conflict")
)

// Error is a failure with a stable message that may be shown to clients.
type Error struct {
	Kind    error
	Message string
}

// NewError creates an Error of the given kind.
func NewError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}
