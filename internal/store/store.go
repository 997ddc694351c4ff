package store

import (
	"context"

	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/model"
)

// Store exposes the history persistence required by services.
// Implementations live under internal/store/<driver>/ (sqlite, postgres).
type Store interface {
	Transcripts() Transcripts
	Summaries() Summaries
	Close() error
}

type Transcripts interface {
	Create(ctx context.Context, t *model.Transcript) (*model.Transcript, error)
	// Get returns model.ErrNotFound when the transcript does not exist.
	Get(ctx context.Context, transcriptID string) (*model.Transcript, error)
	List(ctx context.Context, req model.ListTranscriptsRequest) ([]*model.Transcript, error)
	// Delete removes the transcript and, by cascade, its summaries.
	Delete(ctx context.Context, transcriptID string) error
}

type Summaries interface {
	// Create persists the summary and its ordered chunk references atomically.
	Create(ctx context.Context, s *model.Summary) (*model.Summary, error)
	Get(ctx context.Context, summaryID string) (*model.Summary, error)
	// List returns matching summaries newest first.
	List(ctx context.Context, f model.SummaryFilter) ([]*model.Summary, error)
}
