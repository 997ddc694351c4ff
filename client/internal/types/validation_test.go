package types

import (
	"errors"
	"testing"
	"time"
)

func TestValidateIDPresent(t *testing.T) {
	if err := ValidateIDPresent("3f2a", "transcriptId"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, id := range []string{"", "  ", "a/b", "a?b"} {
		if err := ValidateIDPresent(id, "transcriptId"); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("%q: expected ErrInvalidArgument, got %v", id, err)
		}
	}
}

func TestRequestValidation(t *testing.T) {
	if err := (IngestRequest{Text: " "}).Validate(); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("empty text accepted: %v", err)
	}
	if err := (SearchRequest{Query: "q", TopK: MaxTopK + 1}).Validate(); err == nil {
		t.Fatal("topK over limit accepted")
	}
	if err := (SearchRequest{Query: "q"}).Validate(); err != nil {
		t.Fatalf("default topK rejected: %v", err)
	}
	now := time.Now()
	if err := (HistoryQuery{Since: now, Until: now.Add(-time.Minute)}).Validate(); err == nil {
		t.Fatal("inverted window accepted")
	}
}
