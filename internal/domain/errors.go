package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidNodeType is returned when a deck node type is neither
	// "deck" nor "folder".
	ErrInvalidNodeType = errors.New("invalid node type")

	// ErrInvalidQuality is returned when a review quality is outside
	// the 0-5 range accepted by the scheduler.
	ErrInvalidQuality = errors.New("review quality must be between 0 and 5")

	// ErrInvalidFeedback is returned when session feedback is neither
	// "forgot" nor "remembered".
	ErrInvalidFeedback = errors.New("invalid review feedback")

	// ErrUnauthorized is returned when an operation is not permitted.
	ErrUnauthorized = errors.New("unauthorized operation")
)

// ValidationError describes a validation failure on a specific field. It
// wraps a sentinel error so callers can still match with errors.Is.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a ValidationError wrapping the given sentinel.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: message, Err: err}
}
