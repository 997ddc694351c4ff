package summarizer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/model"
)

var required = []string{"summary", "action_items", "decisions", "key_points"}

func TestParse_Valid(t *testing.T) {
	raw := "```json\n" + `{
  "summary": "  Billing bug triage. ",
  "action_items": ["Bob fixes the billing bug by Friday", "  "],
  "decisions": [],
  "key_points": ["Invoices double-charged"],
  "participants": ["Alice", "Bob"],
  "notes": ["check refunds", "ping finance"]
}` + "\n```"
	got, err := Parse(raw, required)
	require.NoError(t, err)
	assert.Equal(t, "Billing bug triage.", got.Summary)
	assert.Equal(t, []string{"Bob fixes the billing bug by Friday"}, got.ActionItems)
	assert.Equal(t, []string{}, got.Decisions)
	assert.Equal(t, []string{"Alice", "Bob"}, got.Participants)
	assert.Equal(t, []string{}, got.Topics)
	assert.Equal(t, "check refunds\nping finance", got.Notes)
}

func TestParse_NotesAsString(t *testing.T) {
	got, err := Parse(`{"summary":"s","action_items":[],"decisions":[],"key_points":[],"notes":"free text"}`, required)
	require.NoError(t, err)
	assert.Equal(t, "free text", got.Notes)
}

func TestParse_Malformed(t *testing.T) {
	cases := map[string]string{
		"empty":            "   ",
		"prose":            "Here is your summary: the team met.",
		"missing key":      `{"summary":"s","action_items":[],"decisions":[]}`,
		"null required":    `{"summary":"s","action_items":null,"decisions":[],"key_points":[]}`,
		"wrong list type":  `{"summary":"s","action_items":"do it","decisions":[],"key_points":[]}`,
		"non-string item":  `{"summary":"s","action_items":[1],"decisions":[],"key_points":[]}`,
		"empty summary":    `{"summary":" ","action_items":[],"decisions":[],"key_points":[]}`,
		"trailing data":    `{"summary":"s","action_items":[],"decisions":[],"key_points":[]} extra`,
		"array top level":  `[{"summary":"s"}]`,
		"summary not text": `{"summary":["s"],"action_items":[],"decisions":[],"key_points":[]}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(raw, required)
			require.Error(t, err)
			assert.True(t, errors.Is(err, model.ErrMalformedOutput), "got %v", err)
		})
	}
}
