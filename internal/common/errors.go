// Package common defines shared constants and sentinel errors used across
// the server layers of GophNotes. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorValidation   = errors.New("validation error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")

	// AI provider errors (failure, timeout or unusable response).
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// ValidationError carries a client-facing message and matches ErrorValidation.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Is reports ErrorValidation as the sentinel behind every ValidationError.
func (e *ValidationError) Is(target error) bool { return target == ErrorValidation }

// NewValidationError returns a ValidationError with the given message.
func NewValidationError(msg string) error {
	return &ValidationError{Message: msg}
}
