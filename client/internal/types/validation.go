package types

import (
	"errors"
	"fmt"
	"strings"
)

// ------------------------------
// Shared Errors
// ------------------------------

// ErrInvalidArgument is returned before any request is sent when input is rejected locally.
var ErrInvalidArgument = errors.New("invalid argument")

// MaxTopK mirrors the server's search limit.
const MaxTopK = 50

// ValidateIDPresent ensures an identifier path segment is non-empty and cannot
// escape its route.
func ValidateIDPresent(id, field string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidArgument, field)
	}
	if strings.ContainsAny(id, "/?#") {
		return fmt.Errorf("%w: %s contains reserved characters", ErrInvalidArgument, field)
	}
	return nil
}

func (r IngestRequest) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return fmt.Errorf("%w: text is required", ErrInvalidArgument)
	}
	return nil
}

func (r SearchRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return fmt.Errorf("%w: query is required", ErrInvalidArgument)
	}
	if r.TopK < 0 || r.TopK > MaxTopK {
		return fmt.Errorf("%w: topK must be between 1 and %d", ErrInvalidArgument, MaxTopK)
	}
	return nil
}

func (q HistoryQuery) Validate() error {
	if q.Limit < 0 {
		return fmt.Errorf("%w: limit must not be negative", ErrInvalidArgument)
	}
	if !q.Since.IsZero() && !q.Until.IsZero() && q.Until.Before(q.Since) {
		return fmt.Errorf("%w: until is before since", ErrInvalidArgument)
	}
	return nil
}
