package summarizer

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/chunker"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/embeddings"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/embeddings/hashing"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/generation"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/model"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/prompts"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/retriever"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/store"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/store/sqlite"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/vectorstore"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/vectorstore/memory"
)

const billingMeeting = `Alice: Thanks for joining. The main topic today is the billing bug reported by three customers last week.

Bob: I looked into it. Invoices are charged twice when a card retry happens during the nightly billing run.

Alice: Can you fix the billing bug by Friday?

Bob: Yes, I will fix the billing bug by Friday and add a regression test.

Alice: Good. We also decided to pause the invoice email campaign until the fix ships.`

const validOutput = `{
  "summary": "Alice and Bob discussed the double-charge billing bug.",
  "action_items": ["Bob to fix the billing bug by Friday"],
  "decisions": ["Pause the invoice email campaign until the fix ships"],
  "key_points": ["Card retries during the nightly run charge invoices twice"],
  "participants": ["Alice", "Bob"]
}`

// scriptedGenerator replays outputs in order, repeating the last one.
type scriptedGenerator struct {
	mu      sync.Mutex
	outputs []string
	prompts []string
	hook    func(ctx context.Context) error
}

func (g *scriptedGenerator) Generate(ctx context.Context, prompt string, hint generation.SchemaHint) (string, error) {
	g.mu.Lock()
	n := len(g.prompts)
	g.prompts = append(g.prompts, prompt)
	g.mu.Unlock()
	if g.hook != nil {
		if err := g.hook(ctx); err != nil {
			return "", err
		}
	}
	if n >= len(g.outputs) {
		n = len(g.outputs) - 1
	}
	return g.outputs[n], nil
}

func (g *scriptedGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

type downEmbedder struct{}

func (downEmbedder) Embed(context.Context, string) ([]float32, error) {
	return nil, errors.New("connection refused")
}

type fixture struct {
	history      store.Store
	transcriptID string
	assembler    *prompts.Assembler
	vectors      vectorstore.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	history, err := sqlite.New(ctx, filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = history.Close() })

	tr, err := history.Transcripts().Create(ctx, &model.Transcript{Title: "billing sync", Text: billingMeeting})
	require.NoError(t, err)

	chunks, err := chunker.Chunk(tr.ID, billingMeeting, 120, 20)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	emb := hashing.New(256)
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vecs, err := embeddings.EmbedAll(ctx, emb, texts)
	require.NoError(t, err)

	vectors := vectorstore.NewLocked(memory.New(vectorstore.Options{Metric: vectorstore.Cosine}))
	require.NoError(t, vectors.UpsertAll(ctx, tr.ID, chunks, vecs))

	set, err := prompts.Default()
	require.NoError(t, err)
	asm, err := prompts.NewAssembler(set, 0)
	require.NoError(t, err)

	return &fixture{history: history, transcriptID: tr.ID, assembler: asm, vectors: vectors}
}

func (f *fixture) orchestrator(emb embeddings.Provider, gen generation.Generator, genTimeout time.Duration, opts ...Option) *Orchestrator {
	r := retriever.New(emb, f.vectors, time.Second, zerolog.Nop())
	cfg := Config{TopK: 3, GenerateTimeout: genTimeout, Model: "scripted"}
	return New(r, f.assembler, gen, f.history.Summaries(), cfg, zerolog.Nop(), opts...)
}

func (f *fixture) storedSummaries(t *testing.T) []*model.Summary {
	t.Helper()
	list, err := f.history.Summaries().List(context.Background(), model.SummaryFilter{TranscriptID: f.transcriptID})
	require.NoError(t, err)
	return list
}

func TestRun_BillingMeeting(t *testing.T) {
	f := newFixture(t)
	gen := &scriptedGenerator{outputs: []string{validOutput}}

	var (
		mu     sync.Mutex
		states []State
	)
	o := f.orchestrator(hashing.New(256), gen, time.Second, WithObserver(func(_ string, _, to State) {
		mu.Lock()
		states = append(states, to)
		mu.Unlock()
	}))

	sum, err := o.Run(context.Background(), f.transcriptID, "What was decided about the billing bug?")
	require.NoError(t, err)

	assert.NotEmpty(t, sum.ID)
	assert.Equal(t, f.transcriptID, sum.TranscriptID)
	assert.Equal(t, []string{"Bob to fix the billing bug by Friday"}, sum.ActionItems)
	assert.Equal(t, []string{"Alice", "Bob"}, sum.Participants)
	assert.Equal(t, 1, sum.Attempts)
	assert.Equal(t, "scripted", sum.Model)
	assert.NotEmpty(t, sum.ChunkIDs)
	assert.LessOrEqual(t, len(sum.ChunkIDs), 3)
	for _, id := range sum.ChunkIDs {
		assert.True(t, strings.HasPrefix(id, f.transcriptID+"_chunk_"), id)
	}
	assert.Contains(t, gen.prompts[0], "billing bug")

	stored, err := f.history.Summaries().Get(context.Background(), sum.ID)
	require.NoError(t, err)
	assert.Equal(t, sum.ChunkIDs, stored.ChunkIDs)

	assert.Equal(t, []State{StatePending, StateRetrieving, StateGenerating, StateParsing, StateComplete}, states)
}

func TestRun_DefaultQuery(t *testing.T) {
	f := newFixture(t)
	gen := &scriptedGenerator{outputs: []string{validOutput}}
	sum, err := f.orchestrator(hashing.New(256), gen, 0).Run(context.Background(), f.transcriptID, "")
	require.NoError(t, err)
	assert.Equal(t, f.assembler.Set().DefaultQuery, sum.Query)
}

func TestRun_RetriesOnceWithStrictPrompt(t *testing.T) {
	f := newFixture(t)
	gen := &scriptedGenerator{outputs: []string{"Sure! Here is the summary you asked for.", validOutput}}

	sum, err := f.orchestrator(hashing.New(256), gen, time.Second).Run(context.Background(), f.transcriptID, "")
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Attempts)
	require.Equal(t, 2, gen.calls())
	strict := f.assembler.Set().StrictInstruction
	assert.NotContains(t, gen.prompts[0], strict)
	assert.Contains(t, gen.prompts[1], strict)
}

func TestRun_MalformedTwiceFails(t *testing.T) {
	f := newFixture(t)
	gen := &scriptedGenerator{outputs: []string{"not json", `{"summary": "only this"}`}}

	var last State
	o := f.orchestrator(hashing.New(256), gen, time.Second, WithObserver(func(_ string, _, to State) { last = to }))
	sum, err := o.Run(context.Background(), f.transcriptID, "")
	require.Error(t, err)
	assert.Nil(t, sum)
	assert.True(t, errors.Is(err, model.ErrMalformedOutput), "got %v", err)
	assert.Equal(t, StepParse, model.FailedStep(err))
	assert.Equal(t, 2, gen.calls())
	assert.Equal(t, StateFailed, last)
	assert.Empty(t, f.storedSummaries(t))
}

func TestRun_EmbedderDown(t *testing.T) {
	f := newFixture(t)
	gen := &scriptedGenerator{outputs: []string{validOutput}}

	_, err := f.orchestrator(downEmbedder{}, gen, time.Second).Run(context.Background(), f.transcriptID, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrEmbeddingFailure), "got %v", err)
	assert.Equal(t, StepRetrieve, model.FailedStep(err))
	assert.True(t, model.IsBackendError(err))
	assert.Zero(t, gen.calls())
	assert.Empty(t, f.storedSummaries(t))
}

func TestRun_UnknownTranscript(t *testing.T) {
	f := newFixture(t)
	gen := &scriptedGenerator{outputs: []string{validOutput}}

	_, err := f.orchestrator(hashing.New(256), gen, time.Second).Run(context.Background(), "missing", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrNotFound), "got %v", err)
	assert.Zero(t, gen.calls())
}

func TestRun_GenerationTimeout(t *testing.T) {
	f := newFixture(t)
	gen := &scriptedGenerator{
		outputs: []string{validOutput},
		hook: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	}

	_, err := f.orchestrator(hashing.New(256), gen, 20*time.Millisecond).Run(context.Background(), f.transcriptID, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrBackendTimeout), "got %v", err)
	assert.Equal(t, StepGenerate, model.FailedStep(err))
	assert.Empty(t, f.storedSummaries(t))
}

func TestRun_GenerationFailure(t *testing.T) {
	f := newFixture(t)
	gen := &scriptedGenerator{
		outputs: []string{validOutput},
		hook:    func(context.Context) error { return errors.New("model not loaded") },
	}

	_, err := f.orchestrator(hashing.New(256), gen, time.Second).Run(context.Background(), f.transcriptID, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrGenerationFailure), "got %v", err)
	assert.Equal(t, 1, gen.calls())
}

func TestRun_CanceledBeforePersist(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	gen := &scriptedGenerator{
		outputs: []string{validOutput},
		hook: func(context.Context) error {
			cancel()
			return nil
		},
	}

	sum, err := f.orchestrator(hashing.New(256), gen, time.Second).Run(ctx, f.transcriptID, "")
	require.Error(t, err)
	assert.Nil(t, sum)
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
	assert.Empty(t, f.storedSummaries(t))
}

func TestRun_ConcurrentRunsAreIndependent(t *testing.T) {
	f := newFixture(t)
	gen := &scriptedGenerator{outputs: []string{validOutput}}
	o := f.orchestrator(hashing.New(256), gen, time.Second)

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := o.Run(context.Background(), f.transcriptID, "")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	assert.Len(t, f.storedSummaries(t), 4)
}
