// Package chunker splits transcripts into overlapping, embeddable segments.
//
// Sizes are counted in runes. Chunks are exact substrings of the input and
// carry byte offsets, so the transcript can always be rebuilt from them.
package chunker

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/model"
)

// Chunker holds validated chunking parameters.
type Chunker struct {
	maxTokens int
	overlap   int
}

// New validates maxTokens > 0 and 0 <= overlap < maxTokens.
func New(maxTokens, overlap int) (*Chunker, error) {
	if maxTokens <= 0 {
		return nil, model.NewValidationError("max_tokens", fmt.Sprintf("must be positive, got %d", maxTokens))
	}
	if overlap < 0 || overlap >= maxTokens {
		return nil, model.NewValidationError("overlap", fmt.Sprintf("must be in [0, %d), got %d", maxTokens, overlap))
	}
	return &Chunker{maxTokens: maxTokens, overlap: overlap}, nil
}

func (c *Chunker) MaxTokens() int { return c.maxTokens }
func (c *Chunker) Overlap() int   { return c.overlap }

// Chunk splits text into chunks owned by transcriptID.
func (c *Chunker) Chunk(transcriptID, text string) []model.Chunk {
	spans := split(text, c.maxTokens, c.overlap)
	out := make([]model.Chunk, len(spans))
	total := strconv.Itoa(len(spans))
	for i, s := range spans {
		out[i] = model.Chunk{
			ID:           ChunkID(transcriptID, i),
			TranscriptID: transcriptID,
			Index:        i,
			Start:        s.start,
			End:          s.end,
			Text:         text[s.start:s.end],
			Metadata: map[string]string{
				model.MetaChunkType:   model.ChunkTypeTranscript,
				model.MetaTotalChunks: total,
			},
		}
	}
	return out
}

// Chunk is a one-shot helper around New and (*Chunker).Chunk.
func Chunk(transcriptID, text string, maxTokens, overlap int) ([]model.Chunk, error) {
	c, err := New(maxTokens, overlap)
	if err != nil {
		return nil, err
	}
	return c.Chunk(transcriptID, text), nil
}

// ChunkID is the stable identifier of the index-th chunk of a transcript.
func ChunkID(transcriptID string, index int) string {
	return transcriptID + "_chunk_" + strconv.Itoa(index)
}

type span struct{ start, end int }

// split returns spans covering text contiguously: span[i].start <= span[i-1].end
// and span[i].end > span[i-1].end.
func split(text string, maxTokens, overlap int) []span {
	if text == "" {
		return nil
	}
	var out []span
	start, prevStart, prevEnd := 0, -1, 0
	for {
		limit := advanceRunes(text, start, maxTokens)
		if limit >= len(text) {
			return append(out, span{start, len(text)})
		}
		end := cutPoint(text, prevEnd, limit)
		out = append(out, span{start, end})
		prevStart, prevEnd = start, end
		start = nextStart(text, prevStart, prevEnd, overlap)
	}
}

var sentenceEnds = []string{". ", "? ", "! ", ".\t", "?\t", "!\t"}

// cutPoint picks the end of the chunk in (floor, limit], preferring paragraph,
// line, sentence and word boundaries in that order.
func cutPoint(text string, floor, limit int) int {
	window := text[floor:limit]

	if i := strings.LastIndex(window, "\n\n"); i >= 0 {
		return floor + i + 2
	}
	if i := strings.LastIndex(window, "\n"); i >= 0 {
		return floor + i + 1
	}
	best := -1
	for _, sep := range sentenceEnds {
		if i := strings.LastIndex(window, sep); i >= 0 && i+len(sep) > best {
			best = i + len(sep)
		}
	}
	if best > 0 {
		return floor + best
	}
	if i := strings.LastIndexFunc(window, unicode.IsSpace); i >= 0 {
		_, size := utf8.DecodeRuneInString(window[i:])
		return floor + i + size
	}
	// A single word longer than the window: hard cut on a rune boundary.
	return limit
}

// nextStart returns the first word start at or after `overlap` runes before
// prevEnd, strictly after prevStart. Falls back to prevEnd.
func nextStart(text string, prevStart, prevEnd, overlap int) int {
	if overlap == 0 {
		return prevEnd
	}
	lo := retreatRunes(text, prevEnd, overlap)
	if lo <= prevStart {
		lo = prevStart + 1
	}
	for p := lo; p < prevEnd; p++ {
		if utf8.RuneStart(text[p]) && isWordStart(text, p) {
			return p
		}
	}
	return prevEnd
}

func isWordStart(text string, p int) bool {
	r, _ := utf8.DecodeRuneInString(text[p:])
	if unicode.IsSpace(r) {
		return false
	}
	if p == 0 {
		return true
	}
	prev, _ := utf8.DecodeLastRuneInString(text[:p])
	return unicode.IsSpace(prev)
}

// advanceRunes returns the byte offset n runes after from, capped at len(text).
func advanceRunes(text string, from, n int) int {
	p := from
	for i := 0; i < n && p < len(text); i++ {
		_, size := utf8.DecodeRuneInString(text[p:])
		p += size
	}
	return p
}

// retreatRunes returns the byte offset n runes before from, floored at 0.
func retreatRunes(text string, from, n int) int {
	p := from
	for i := 0; i < n && p > 0; i++ {
		_, size := utf8.DecodeLastRuneInString(text[:p])
		p -= size
	}
	return p
}
