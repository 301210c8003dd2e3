package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain layer operations.
var (
	// ErrValidationFailed indicates that validation checks have failed
	ErrValidationFailed = errors.New("validation failed")

	// ErrUnsupportedSource indicates that a source key is not part of the supported set
	ErrUnsupportedSource = errors.New("unsupported source")
)

// ValidationError represents a validation error with detailed field information.
// It implements the error interface and provides context about which field failed validation.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns a formatted error message for the validation error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// Unwrap allows errors.Is(err, ErrValidationFailed).
func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// UnsupportedSourceError is returned when a caller names a source key outside the supported set.
type UnsupportedSourceError struct {
	Key string
}

func (e *UnsupportedSourceError) Error() string {
	return fmt.Sprintf("unsupported source %q", e.Key)
}

// Unwrap allows errors.Is(err, ErrUnsupportedSource).
func (e *UnsupportedSourceError) Unwrap() error {
	return ErrUnsupportedSource
}
