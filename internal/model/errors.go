package model

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")

	// ErrDimensionMismatch means an embedding does not match the store's
	// dimensionality. Usually a model or configuration change; fatal.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	ErrEmbeddingFailure  = errors.New("embedding failure")
	ErrGenerationFailure = errors.New("generation failure")
	ErrTranscription     = errors.New("transcription error")
	ErrBackendTimeout    = errors.New("backend timeout")
	ErrMalformedOutput   = errors.New("malformed generation output")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

func (e ValidationError) Is(target error) bool { return target == ErrValidation }

// NewValidationError creates a new validation error
func NewValidationError(field, message string) ValidationError {
	return ValidationError{Field: field, Message: message}
}

// IsValidationError checks if an error is a validation error (including wrapped errors)
func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// DimensionMismatchError carries the configured and offered vector lengths.
type DimensionMismatchError struct {
	Want int
	Got  int
}

func (e DimensionMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch: store has %d, embedding has %d", e.Want, e.Got)
}

func (e DimensionMismatchError) Is(target error) bool { return target == ErrDimensionMismatch }

// StepError names the pipeline step that failed so callers can retry the whole run.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string { return e.Step + ": " + e.Err.Error() }
func (e *StepError) Unwrap() error { return e.Err }

// FailedStep returns the step recorded on err, or "" if none.
func FailedStep(err error) string {
	var se *StepError
	if errors.As(err, &se) {
		return se.Step
	}
	return ""
}

// IsBackendError reports whether err belongs to the backend-unreachable class,
// which callers may retry with backoff.
func IsBackendError(err error) bool {
	return errors.Is(err, ErrEmbeddingFailure) ||
		errors.Is(err, ErrGenerationFailure) ||
		errors.Is(err, ErrTranscription) ||
		errors.Is(err, ErrBackendTimeout)
}
