package chunker

import (
	"errors"
	"strings"
	"testing"
	"unicode"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/model"
)

const meeting = `Alice: Good morning everyone. Let's start with the billing migration.

Bob: The new billing system is ready for staging. I will follow up with finance by Friday.
Carol: Do we have a rollback plan? We should document it before the cutover.

Alice: Agreed. Decision: we migrate to the new billing system next sprint. Carol owns the rollback document.
Bob: One more thing, the invoice exporter still uses the legacy schema! We need a ticket for that.`

var corpus = map[string]string{
	"meeting":   meeting,
	"unicode":   strings.Repeat("Café déjà vu, naïve résumé über straße. ", 40),
	"one-line":  strings.Repeat("word ", 300),
	"long-word": "prefix " + strings.Repeat("x", 250) + " suffix and some more words here",
	"spaces":    "a  b   c\t\td\n\n\n e   f. g ?  h!",
}

func TestChunk_ShortTranscriptYieldsSingleChunk(t *testing.T) {
	text := "Alice proposed migrating to the new billing system. Bob will follow up by Friday."
	for _, max := range []int{utf8.RuneCountInString(text), 100, 1000} {
		chunks, err := Chunk("t1", text, max, 0)
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, text, chunks[0].Text)
		assert.Equal(t, 0, chunks[0].Start)
		assert.Equal(t, len(text), chunks[0].End)
		assert.Equal(t, "t1_chunk_0", chunks[0].ID)
		assert.Equal(t, "1", chunks[0].Metadata[model.MetaTotalChunks])
	}
}

func TestChunk_EmptyText(t *testing.T) {
	chunks, err := Chunk("t1", "", 10, 2)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestChunk_RejectsInvalidParameters(t *testing.T) {
	for _, tc := range []struct{ max, overlap int }{{0, 0}, {-1, 0}, {10, 10}, {10, 11}, {10, -1}} {
		_, err := Chunk("t", "text", tc.max, tc.overlap)
		require.Error(t, err, "max=%d overlap=%d", tc.max, tc.overlap)
		assert.True(t, errors.Is(err, model.ErrValidation))
	}
}

func TestChunk_ReconstructsTranscript(t *testing.T) {
	params := []struct{ max, overlap int }{
		{1, 0}, {5, 2}, {17, 0}, {17, 16}, {40, 10}, {64, 63}, {120, 30}, {1000, 200},
	}
	for name, text := range corpus {
		for _, p := range params {
			chunks, err := Chunk("t", text, p.max, p.overlap)
			require.NoError(t, err)
			require.NotEmpty(t, chunks)

			var b strings.Builder
			prevEnd := 0
			for i, c := range chunks {
				assert.Equal(t, text[c.Start:c.End], c.Text, "%s %v chunk %d", name, p, i)
				assert.Equal(t, i, c.Index)
				assert.LessOrEqual(t, utf8.RuneCountInString(c.Text), p.max, "%s %v chunk %d too long", name, p, i)
				if i == 0 {
					assert.Equal(t, 0, c.Start)
				} else {
					assert.LessOrEqual(t, c.Start, prevEnd, "%s %v gap before chunk %d", name, p, i)
					assert.Greater(t, c.Start, chunks[i-1].Start, "%s %v no progress at %d", name, p, i)
					assert.Greater(t, c.End, prevEnd)
				}
				b.WriteString(text[prevEnd:c.End])
				prevEnd = c.End
			}
			assert.Equal(t, len(text), prevEnd)
			assert.Equal(t, text, b.String(), "%s %v", name, p)
		}
	}
}

func TestChunk_DoesNotSplitWords(t *testing.T) {
	// Every word in these texts is shorter than the window.
	for _, name := range []string{"meeting", "unicode", "one-line", "spaces"} {
		text := corpus[name]
		for _, max := range []int{30, 64, 200} {
			chunks, err := Chunk("t", text, max, max/4)
			require.NoError(t, err)
			for _, c := range chunks {
				if c.End < len(text) {
					r, _ := utf8.DecodeLastRuneInString(text[:c.End])
					assert.True(t, unicode.IsSpace(r), "%s max=%d chunk %d ends mid-word: %q", name, max, c.Index, c.Text)
				}
				if c.Start > 0 {
					r, _ := utf8.DecodeLastRuneInString(text[:c.Start])
					assert.True(t, unicode.IsSpace(r), "%s max=%d chunk %d starts mid-word: %q", name, max, c.Index, c.Text)
				}
			}
		}
	}
}

func TestChunk_PrefersParagraphBoundaries(t *testing.T) {
	text := "First paragraph is here.\n\nSecond paragraph follows and is a bit longer than the first."
	chunks, err := Chunk("t", text, 50, 0)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Equal(t, "First paragraph is here.\n\n", chunks[0].Text)
}

func TestChunk_OverlapRepeatsTrailingWords(t *testing.T) {
	text := strings.Repeat("alpha beta gamma delta. ", 10)
	chunks, err := Chunk("t", text, 48, 12)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	for i := 1; i < len(chunks); i++ {
		assert.Less(t, chunks[i].Start, chunks[i-1].End, "chunk %d should overlap its predecessor", i)
	}
}

func TestChunk_HardCutsOversizedWord(t *testing.T) {
	text := corpus["long-word"]
	chunks, err := Chunk("t", text, 100, 10)
	require.NoError(t, err)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c.Text), 100)
	}
}

func TestChunk_Deterministic(t *testing.T) {
	c, err := New(64, 16)
	require.NoError(t, err)
	a := c.Chunk("t", meeting)
	b := c.Chunk("t", meeting)
	assert.Equal(t, a, b)
	assert.Equal(t, 64, c.MaxTokens())
	assert.Equal(t, 16, c.Overlap())
}
