// Package errors classifies SDK failures so the retry loop knows which ones
// are worth another attempt.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCategory determines how errors should be handled by retry logic.
type ErrorCategory int

const (
	// Recoverable errors are retried with exponential backoff.
	Recoverable ErrorCategory = iota

	// Irrecoverable errors fail immediately.
	Irrecoverable
)

func (c ErrorCategory) String() string {
	switch c {
	case Recoverable:
		return "Recoverable"
	case Irrecoverable:
		return "Irrecoverable"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// Sentinels matched by ClassifiedError.Is through the response status.
var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	ErrBackend           = errors.New("backend failure")
	ErrTimeout           = errors.New("backend timeout")
)

// ClassifiedError wraps a failed call with its category and the server's
// structured error body when one was returned.
type ClassifiedError struct {
	Category   ErrorCategory
	StatusCode int // 0 for network errors
	Message    string
	Step       string // pipeline step reported by the server, if any
	Body       string
	Underlying error
}

func (e *ClassifiedError) Error() string {
	msg := e.Message
	if msg == "" && e.Underlying != nil {
		msg = e.Underlying.Error()
	}
	if e.Step != "" {
		msg = fmt.Sprintf("%s (step %s)", msg, e.Step)
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("[%s] HTTP %d: %s", e.Category, e.StatusCode, msg)
	}
	return fmt.Sprintf("[%s] %s", e.Category, msg)
}

func (e *ClassifiedError) Unwrap() error { return e.Underlying }

// Is lets callers test against the package sentinels with errors.Is.
func (e *ClassifiedError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrValidation:
		return e.StatusCode == http.StatusBadRequest || e.StatusCode == http.StatusRequestEntityTooLarge
	case ErrDimensionMismatch:
		return e.StatusCode == http.StatusConflict
	case ErrBackend:
		return e.StatusCode == http.StatusBadGateway
	case ErrTimeout:
		return e.StatusCode == http.StatusGatewayTimeout
	}
	return false
}

// IsIrrecoverable returns true if the error should not be retried.
func IsIrrecoverable(err error) bool {
	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified.Category == Irrecoverable
	}
	return false
}
