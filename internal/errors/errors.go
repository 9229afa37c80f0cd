// Package errors provides the sentinel errors shared across domain modules.
// Use cases return these (usually wrapped into named domain errors) and the
// HTTP layer maps them to status codes and error codes.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a clash with existing data, such as a duplicate key.
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indicates the input failed validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates the request lacks valid credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the authenticated caller doesn't have permission.
	ErrForbidden = errors.New("forbidden")

	// ErrGone indicates the resource existed but is no longer usable (e.g., expired).
	ErrGone = errors.New("gone")

	// ErrTooManyRequests indicates the caller exceeded a rate limit.
	ErrTooManyRequests = errors.New("too many requests")
)

// New creates an error with the given message.
func New(message string) error {
	return errors.New(message)
}

// Wrap adds context to err while keeping the error chain intact.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}
