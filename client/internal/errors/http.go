package errors

import (
	"encoding/json"
	"fmt"
)

// errorBody mirrors the server's JSON error envelope.
type errorBody struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Step    string `json:"step"`
}

// ClassifyHTTPError determines whether an HTTP error should be retried.
// 4xx responses other than 408 and 429 are irrecoverable; everything else may
// be transient.
func ClassifyHTTPError(statusCode int, body []byte, underlyingErr error) *ClassifiedError {
	ce := &ClassifiedError{
		Category:   getHTTPErrorCategory(statusCode),
		StatusCode: statusCode,
		Body:       string(body),
		Underlying: underlyingErr,
	}
	var eb errorBody
	if json.Unmarshal(body, &eb) == nil {
		ce.Message = eb.Message
		ce.Step = eb.Step
	}
	return ce
}

func getHTTPErrorCategory(statusCode int) ErrorCategory {
	switch {
	case statusCode >= 400 && statusCode < 500:
		switch statusCode {
		case 408, 429:
			return Recoverable
		default:
			return Irrecoverable
		}
	case statusCode == 502 || statusCode == 504:
		// a failed or timed-out model call was already attempted server side
		return Irrecoverable
	default:
		return Recoverable
	}
}

// NewHTTPError creates a classified error for an unexpected status.
func NewHTTPError(statusCode int, body []byte, operation string) *ClassifiedError {
	return ClassifyHTTPError(statusCode, body, fmt.Errorf("%s failed: HTTP %d", operation, statusCode))
}

// NewNetworkError creates a classified error for transport failures. These are
// always recoverable.
func NewNetworkError(operation string, err error) *ClassifiedError {
	return &ClassifiedError{
		Category:   Recoverable,
		Underlying: fmt.Errorf("%s network error: %w", operation, err),
	}
}
