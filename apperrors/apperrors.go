// Package apperrors carries the service error taxonomy so handlers can map
// failures to HTTP statuses without inspecting message strings.
package apperrors

import "errors"

type Kind int

const (
	Internal Kind = iota
	Unauthenticated
	Forbidden
	BadRequest
	NotFound
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "internal error"
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds a taxonomy error with a user-facing message.
func New(kind Kind, message string) error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a taxonomy kind and user-facing message to an underlying
// error. The underlying error is logged, never returned to clients.
func Wrap(kind Kind, message string, err error) error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from an error chain; anything untyped is
// Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// MessageOf returns the user-facing message for an error chain. Untyped
// errors get a generic message so internals never leak.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "Server error"
}
