// Package generation defines the text generation backend contract.
package generation

import (
	"context"
	"fmt"
	"strings"
)

// Generator turns a prompt into model output. hint describes the JSON object
// the caller expects; backends that support structured output use it to
// constrain the response.
type Generator interface {
	Generate(ctx context.Context, prompt string, hint SchemaHint) (string, error)
}

// SchemaHint names the keys of the expected JSON object. A zero hint requests
// free text.
type SchemaHint struct {
	Required []string
	Optional []string
}

// Structured reports whether the caller expects a JSON object.
func (h SchemaHint) Structured() bool { return len(h.Required) > 0 }

// Describe renders the hint as an instruction for backends without native
// schema support.
func (h SchemaHint) Describe() string {
	if !h.Structured() {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Respond with a single JSON object with keys %s", strings.Join(quote(h.Required), ", "))
	if len(h.Optional) > 0 {
		fmt.Fprintf(&b, " and optionally %s", strings.Join(quote(h.Optional), ", "))
	}
	b.WriteString(". Do not add any text outside the JSON object.")
	return b.String()
}

func quote(keys []string) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = `"` + k + `"`
	}
	return out
}

// Options are sampling parameters shared by the backends.
type Options struct {
	Temperature float64
	MaxTokens   int
	TopK        int
	TopP        float64
	Stop        []string
}

// DefaultOptions are tuned for factual meeting summaries.
func DefaultOptions() Options {
	return Options{
		Temperature: 0.3,
		MaxTokens:   2000,
		TopK:        40,
		TopP:        0.9,
		Stop:        []string{"[INST]", "</s>"},
	}
}
