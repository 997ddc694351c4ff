// Package summarizer runs the retrieve, assemble, generate, parse and persist
// pipeline that turns an indexed transcript into a stored Summary.
package summarizer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/generation"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/metrics"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/model"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/prompts"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/retriever"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/store"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/vectorstore"
)

// State is a summarization run state.
type State string

const (
	StatePending    State = "PENDING"
	StateRetrieving State = "RETRIEVING"
	StateGenerating State = "GENERATING"
	StateParsing    State = "PARSING"
	StateComplete   State = "COMPLETE"
	StateFailed     State = "FAILED"
)

// Step names recorded on model.StepError.
const (
	StepRetrieve = "retrieve"
	StepAssemble = "assemble"
	StepGenerate = "generate"
	StepParse    = "parse"
	StepPersist  = "persist"
)

// Observer is notified of every state transition of a run.
type Observer func(runID string, from, to State)

// Config tunes a run.
type Config struct {
	TopK            int
	GenerateTimeout time.Duration
	// Model is recorded on each Summary.
	Model string
}

// Orchestrator executes summarization runs. It is safe for concurrent use;
// each run is independent.
type Orchestrator struct {
	retriever *retriever.Retriever
	assembler *prompts.Assembler
	generator generation.Generator
	summaries store.Summaries
	cfg       Config
	observer  Observer
	log       zerolog.Logger
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithObserver installs a state transition hook.
func WithObserver(o Observer) Option {
	return func(s *Orchestrator) { s.observer = o }
}

func New(r *retriever.Retriever, a *prompts.Assembler, g generation.Generator, summaries store.Summaries, cfg Config, log zerolog.Logger, opts ...Option) *Orchestrator {
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	o := &Orchestrator{retriever: r, assembler: a, generator: g, summaries: summaries, cfg: cfg, log: log}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

type run struct {
	id    string
	state State
	o     *Orchestrator
	log   zerolog.Logger
}

func (r *run) enter(to State) {
	from := r.state
	r.state = to
	metrics.RunStateTotal.WithLabelValues(string(to)).Inc()
	r.log.Debug().Str("from", string(from)).Str("to", string(to)).Msg("run state")
	if r.o.observer != nil {
		r.o.observer(r.id, from, to)
	}
}

func (r *run) fail(step string, err error) error {
	r.enter(StateFailed)
	metrics.RunsTotal.WithLabelValues("failed").Inc()
	r.log.Error().Str("step", step).Err(err).Msg("summarization failed")
	return &model.StepError{Step: step, Err: err}
}

// Run summarizes the transcript. query may be empty to use the default task
// query. On any failure no Summary is persisted and the returned error is a
// *model.StepError wrapping the classified cause.
func (o *Orchestrator) Run(ctx context.Context, transcriptID, query string) (*model.Summary, error) {
	r := &run{id: uuid.NewString(), state: StatePending, o: o}
	r.log = o.log.With().Str("run_id", r.id).Str("transcript_id", transcriptID).Logger()
	if o.observer != nil {
		o.observer(r.id, "", StatePending)
	}
	metrics.RunStateTotal.WithLabelValues(string(StatePending)).Inc()

	if query == "" {
		query = o.assembler.Set().DefaultQuery
	}

	r.enter(StateRetrieving)
	records, err := o.retriever.RetrieveScored(ctx, query, o.cfg.TopK, &vectorstore.Filter{TranscriptID: transcriptID})
	if err != nil {
		return nil, r.fail(StepRetrieve, err)
	}
	if len(records) == 0 {
		return nil, r.fail(StepRetrieve, fmt.Errorf("no indexed chunks for transcript %s: %w", transcriptID, model.ErrNotFound))
	}

	var (
		parsed   ParseResult
		prompt   prompts.Prompt
		attempts int
	)
	for strict := false; ; strict = true {
		prompt, err = o.assembler.Assemble(query, records, strict)
		if err != nil {
			return nil, r.fail(StepAssemble, err)
		}

		r.enter(StateGenerating)
		attempts++
		raw, err := o.generate(ctx, prompt.Text)
		if err != nil {
			return nil, r.fail(StepGenerate, err)
		}

		r.enter(StateParsing)
		parsed, err = Parse(raw, o.assembler.Set().RequiredKeys)
		if err == nil {
			break
		}
		if strict {
			return nil, r.fail(StepParse, err)
		}
		r.log.Warn().Err(err).Msg("unparsable generation output; retrying with strict formatting")
	}

	if err := ctx.Err(); err != nil {
		return nil, r.fail(StepPersist, err)
	}
	summary := &model.Summary{
		TranscriptID: transcriptID,
		Query:        query,
		Summary:      parsed.Summary,
		ActionItems:  parsed.ActionItems,
		Decisions:    parsed.Decisions,
		KeyPoints:    parsed.KeyPoints,
		Topics:       parsed.Topics,
		Participants: parsed.Participants,
		Notes:        parsed.Notes,
		ChunkIDs:     prompt.ChunkIDs(),
		Model:        o.cfg.Model,
		Attempts:     attempts,
	}
	start := time.Now()
	saved, err := o.summaries.Create(ctx, summary)
	metrics.ObserveBackend("history", "create_summary", start)
	if err != nil {
		return nil, r.fail(StepPersist, err)
	}

	r.enter(StateComplete)
	metrics.RunsTotal.WithLabelValues("complete").Inc()
	r.log.Info().Str("summary_id", saved.ID).Int("chunks", len(saved.ChunkIDs)).Int("attempts", attempts).Msg("summary stored")
	return saved, nil
}

func (o *Orchestrator) generate(ctx context.Context, prompt string) (string, error) {
	callCtx := ctx
	if o.cfg.GenerateTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, o.cfg.GenerateTimeout)
		defer cancel()
	}
	start := time.Now()
	out, err := o.generator.Generate(callCtx, prompt, o.assembler.Set().Hint())
	metrics.ObserveBackend("generator", "generate", start)
	if err == nil {
		return out, nil
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if errors.Is(callCtx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return "", fmt.Errorf("%w: generation: %v", model.ErrBackendTimeout, err)
	}
	return "", fmt.Errorf("%w: %v", model.ErrGenerationFailure, err)
}
