package prompts

import (
	"fmt"
	"sort"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/model"
)

// Prompt is an assembled prompt and the chunks it contains, in transcript order.
type Prompt struct {
	Text   string
	Chunks []model.Chunk
}

// ChunkIDs returns the IDs of the included chunks.
func (p Prompt) ChunkIDs() []string {
	ids := make([]string, len(p.Chunks))
	for i, c := range p.Chunks {
		ids[i] = c.ID
	}
	return ids
}

// Assembler renders prompts from a Set.
type Assembler struct {
	set    *Set
	tmpl   *template.Template
	budget int
}

// NewAssembler compiles set. budget is the maximum total chunk text in runes;
// zero or negative means unlimited.
func NewAssembler(set *Set, budget int) (*Assembler, error) {
	if err := set.validate(); err != nil {
		return nil, err
	}
	t, err := set.compile()
	if err != nil {
		return nil, err
	}
	return &Assembler{set: set, tmpl: t, budget: budget}, nil
}

// Set returns the underlying prompt set.
func (a *Assembler) Set() *Set { return a.set }

type templateData struct {
	Query             string
	Schema            string
	Strict            bool
	StrictInstruction string
	Chunks            []model.Chunk
}

// Assemble selects chunks from records (best first, as returned by
// retrieval) that fit the budget and renders the prompt. strict adds the
// reformatting instruction used on the retry after unparsable output.
func (a *Assembler) Assemble(query string, records []model.RetrievalRecord, strict bool) (Prompt, error) {
	if len(records) == 0 {
		return Prompt{}, fmt.Errorf("no chunks to assemble")
	}
	if strings.TrimSpace(query) == "" {
		query = a.set.DefaultQuery
	}

	kept := SelectWithinBudget(records, a.budget)
	data := templateData{
		Query:             query,
		Schema:            a.set.Hint().Describe(),
		Strict:            strict,
		StrictInstruction: a.set.StrictInstruction,
		Chunks:            kept,
	}
	var b strings.Builder
	if err := a.tmpl.Execute(&b, data); err != nil {
		return Prompt{}, fmt.Errorf("render prompt: %w", err)
	}
	return Prompt{Text: b.String(), Chunks: kept}, nil
}

// SelectWithinBudget drops the lowest-scored records until the total chunk
// text fits budget runes, never dropping the last one. records are ordered
// best first with equal scores in insertion order, so trimming from the tail
// removes the later-inserted of equally scored chunks first. The survivors
// are returned in transcript order.
func SelectWithinBudget(records []model.RetrievalRecord, budget int) []model.Chunk {
	n := len(records)
	if budget > 0 {
		total := 0
		for _, r := range records {
			total += utf8.RuneCountInString(r.Chunk.Text)
		}
		for n > 1 && total > budget {
			n--
			total -= utf8.RuneCountInString(records[n].Chunk.Text)
		}
	}

	kept := make([]model.Chunk, n)
	for i := 0; i < n; i++ {
		kept[i] = records[i].Chunk
	}
	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].TranscriptID != kept[j].TranscriptID {
			return kept[i].TranscriptID < kept[j].TranscriptID
		}
		if kept[i].Index != kept[j].Index {
			return kept[i].Index < kept[j].Index
		}
		return kept[i].Start < kept[j].Start
	})
	return kept
}
