package summarizer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/model"
)

// ParseResult is the structured content extracted from generation output.
type ParseResult struct {
	Summary      string
	ActionItems  []string
	Decisions    []string
	KeyPoints    []string
	Topics       []string
	Participants []string
	Notes        string
}

// Parse decodes raw model output into a ParseResult. The output must be a
// single JSON object (optionally inside a markdown code fence) containing
// every key in required with a non-null value. Known list fields must be
// arrays of strings and "summary" a non-empty string; anything else is
// reported as model.ErrMalformedOutput.
func Parse(raw string, required []string) (ParseResult, error) {
	body := stripFence(strings.TrimSpace(raw))
	if body == "" {
		return ParseResult{}, malformed("empty output")
	}

	var fields map[string]json.RawMessage
	dec := json.NewDecoder(strings.NewReader(body))
	if err := dec.Decode(&fields); err != nil {
		return ParseResult{}, malformed("not a JSON object: %v", err)
	}
	if dec.More() {
		return ParseResult{}, malformed("trailing data after JSON object")
	}
	for _, k := range required {
		v, ok := fields[k]
		if !ok || isNull(v) {
			return ParseResult{}, malformed("missing required key %q", k)
		}
	}

	var out ParseResult
	if v, ok := fields["summary"]; ok && !isNull(v) {
		if err := json.Unmarshal(v, &out.Summary); err != nil {
			return ParseResult{}, malformed(`"summary" must be a string`)
		}
		out.Summary = strings.TrimSpace(out.Summary)
		if out.Summary == "" {
			return ParseResult{}, malformed(`"summary" is empty`)
		}
	}
	lists := []struct {
		key string
		dst *[]string
	}{
		{"action_items", &out.ActionItems},
		{"decisions", &out.Decisions},
		{"key_points", &out.KeyPoints},
		{"topics", &out.Topics},
		{"participants", &out.Participants},
	}
	for _, l := range lists {
		v, ok := fields[l.key]
		if !ok || isNull(v) {
			*l.dst = []string{}
			continue
		}
		items, err := stringList(v)
		if err != nil {
			return ParseResult{}, malformed("%q: %v", l.key, err)
		}
		*l.dst = items
	}
	if v, ok := fields["notes"]; ok && !isNull(v) {
		notes, err := notesText(v)
		if err != nil {
			return ParseResult{}, malformed(`"notes": %v`, err)
		}
		out.Notes = notes
	}
	return out, nil
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", model.ErrMalformedOutput, fmt.Sprintf(format, args...))
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

// stripFence removes a surrounding ``` or ```json fence.
func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		return ""
	}
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}

func stringList(v json.RawMessage) ([]string, error) {
	var items []string
	if err := json.Unmarshal(v, &items); err != nil {
		return nil, fmt.Errorf("must be an array of strings")
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return out, nil
}

// notesText accepts a string or an array of strings joined by newlines.
func notesText(v json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return strings.TrimSpace(s), nil
	}
	items, err := stringList(v)
	if err != nil {
		return "", fmt.Errorf("must be a string or an array of strings")
	}
	return strings.Join(items, "\n"), nil
}
