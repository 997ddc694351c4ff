package validate

import (
	"fmt"
	"strconv"
	"time"
	"unicode"
	"unicode/utf8"
)

const (
	MaxTitleLen = 200
	MaxQueryLen = 2000
	// MaxTranscriptBytes bounds a transcript submitted as text.
	MaxTranscriptBytes = 2 << 20
)

func NonEmpty(field, v string) error {
	if v == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

func MaxLen(field, v string, limit int) error {
	if utf8.RuneCountInString(v) > limit {
		return fmt.Errorf("%s exceeds %d characters", field, limit)
	}
	return nil
}

// Title allows any printable text up to MaxTitleLen characters.
func Title(v string) error {
	if err := MaxLen("title", v, MaxTitleLen); err != nil {
		return err
	}
	for _, r := range v {
		if unicode.IsControl(r) {
			return fmt.Errorf("title contains control characters")
		}
	}
	return nil
}

// -------- Request specific helpers ----------

// CreateTranscript validates text ingestion input.
func CreateTranscript(text, title string) error {
	if err := NonEmpty("text", text); err != nil {
		return err
	}
	if len(text) > MaxTranscriptBytes {
		return fmt.Errorf("text exceeds %d bytes", MaxTranscriptBytes)
	}
	if !utf8.ValidString(text) {
		return fmt.Errorf("text must be valid UTF-8")
	}
	return Title(title)
}

// Query validates an optional summarization or search query.
func Query(v string) error {
	return MaxLen("query", v, MaxQueryLen)
}

// Limit parses an optional non-negative integer query parameter.
func Limit(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("limit must be a non-negative integer")
	}
	return n, nil
}

// Timestamp parses an optional RFC 3339 query parameter.
func Timestamp(field, raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be an RFC 3339 timestamp", field)
	}
	return t, nil
}
