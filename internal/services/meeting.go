package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/chunker"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/embeddings"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/metrics"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/model"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/retriever"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/store"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/summarizer"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/transcription"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/vectorstore"
)

// MaxSearchTopK caps ad-hoc search result sizes.
const MaxSearchTopK = 50

// Deps are the collaborators of MeetingService. Transcriber may be nil.
type Deps struct {
	Store       store.Store
	Vectors     *vectorstore.Locked
	Embedder    embeddings.Provider
	Chunker     *chunker.Chunker
	Retriever   *retriever.Retriever
	Summarizer  *summarizer.Orchestrator
	Transcriber transcription.Transcriber

	EmbedTimeout  time.Duration
	TopK          int
	MaxAudioBytes int64
	Log           zerolog.Logger
}

// MeetingService orchestrates transcript ingestion, summarization and history.
type MeetingService struct {
	d Deps
}

func NewMeetingService(d Deps) *MeetingService {
	if d.TopK <= 0 {
		d.TopK = 5
	}
	return &MeetingService{d: d}
}

// IngestRequest carries a transcript to index.
type IngestRequest struct {
	Text        string `json:"text"`
	Title       string `json:"title,omitempty"`
	SourceAudio string `json:"sourceAudio,omitempty"`
}

// Ingest chunks, embeds and indexes a transcript. Embedding happens before
// anything is written; a failed vector write removes the transcript again.
func (s *MeetingService) Ingest(ctx context.Context, req IngestRequest) (*model.Transcript, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, model.NewValidationError("text", "transcript text is required")
	}
	log := s.d.Log.With().Str("op", "ingest").Logger()

	id := uuid.NewString()
	chunks := s.d.Chunker.Chunk(id, req.Text)
	vecs := make([][]float32, len(chunks))
	for i, c := range chunks {
		v, err := retriever.EmbedQuery(ctx, s.d.Embedder, c.Text, s.d.EmbedTimeout)
		if err != nil {
			log.Error().Err(err).Int("chunk", i).Msg("embedding failed")
			return nil, fmt.Errorf("embed chunk %d: %w", i, err)
		}
		vecs[i] = v
	}

	tr, err := s.d.Store.Transcripts().Create(ctx, &model.Transcript{
		ID:          id,
		Title:       strings.TrimSpace(req.Title),
		SourceAudio: req.SourceAudio,
		Text:        req.Text,
		ChunkCount:  len(chunks),
	})
	if err != nil {
		return nil, err
	}

	start := time.Now()
	err = s.d.Vectors.UpsertAll(ctx, id, chunks, vecs)
	metrics.ObserveBackend("vectorstore", "upsert", start)
	if err != nil {
		log.Error().Err(err).Str("transcript_id", id).Msg("vector upsert failed; rolling back transcript")
		cleanup := context.WithoutCancel(ctx)
		if derr := s.d.Vectors.DeleteTranscript(cleanup, id); derr != nil {
			log.Warn().Err(derr).Str("transcript_id", id).Msg("vector cleanup failed")
		}
		if derr := s.d.Store.Transcripts().Delete(cleanup, id); derr != nil {
			log.Warn().Err(derr).Str("transcript_id", id).Msg("transcript cleanup failed")
		}
		return nil, fmt.Errorf("index transcript: %w", err)
	}
	metrics.IngestedChunksTotal.Add(float64(len(chunks)))
	log.Info().Str("transcript_id", id).Int("chunks", len(chunks)).Msg("transcript ingested")
	return tr, nil
}

// IngestAudio transcribes an uploaded recording and ingests the result.
func (s *MeetingService) IngestAudio(ctx context.Context, filename string, size int64, audio io.Reader, title string) (*model.Transcript, error) {
	if s.d.Transcriber == nil {
		return nil, fmt.Errorf("%w: no transcription backend configured", model.ErrTranscription)
	}
	if err := transcription.ValidateAudio(filename, size, s.d.MaxAudioBytes); err != nil {
		return nil, err
	}
	text, err := s.d.Transcriber.Transcribe(ctx, filename, audio)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: transcription returned no speech", model.ErrTranscription)
	}
	if title == "" {
		title = filename
	}
	return s.Ingest(ctx, IngestRequest{Text: text, Title: title, SourceAudio: filename})
}

// Summarize runs the summarization pipeline for an existing transcript.
func (s *MeetingService) Summarize(ctx context.Context, transcriptID, query string) (*model.Summary, error) {
	if strings.TrimSpace(transcriptID) == "" {
		return nil, model.NewValidationError("transcriptId", "is required")
	}
	if _, err := s.d.Store.Transcripts().Get(ctx, transcriptID); err != nil {
		return nil, err
	}
	return s.d.Summarizer.Run(ctx, transcriptID, strings.TrimSpace(query))
}

// QueryHistory lists stored summaries newest first.
func (s *MeetingService) QueryHistory(ctx context.Context, f model.SummaryFilter) ([]*model.Summary, error) {
	if f.Limit < 0 {
		return nil, model.NewValidationError("limit", "must not be negative")
	}
	if !f.Since.IsZero() && !f.Until.IsZero() && f.Until.Before(f.Since) {
		return nil, model.NewValidationError("until", "must not be before since")
	}
	return s.d.Store.Summaries().List(ctx, f)
}

func (s *MeetingService) GetTranscript(ctx context.Context, transcriptID string) (*model.Transcript, error) {
	return s.d.Store.Transcripts().Get(ctx, transcriptID)
}

func (s *MeetingService) ListTranscripts(ctx context.Context, limit int) ([]*model.Transcript, error) {
	if limit < 0 {
		return nil, model.NewValidationError("limit", "must not be negative")
	}
	return s.d.Store.Transcripts().List(ctx, model.ListTranscriptsRequest{Limit: limit})
}

// DeleteTranscript removes the transcript's vectors, then the transcript row
// and its summaries.
func (s *MeetingService) DeleteTranscript(ctx context.Context, transcriptID string) error {
	if _, err := s.d.Store.Transcripts().Get(ctx, transcriptID); err != nil {
		return err
	}
	if err := s.d.Vectors.DeleteTranscript(ctx, transcriptID); err != nil {
		return fmt.Errorf("delete vectors: %w", err)
	}
	if err := s.d.Store.Transcripts().Delete(ctx, transcriptID); err != nil {
		return err
	}
	s.d.Log.Info().Str("transcript_id", transcriptID).Msg("transcript deleted")
	return nil
}

func (s *MeetingService) GetSummary(ctx context.Context, summaryID string) (*model.Summary, error) {
	return s.d.Store.Summaries().Get(ctx, summaryID)
}

// Search returns the chunks most similar to query, optionally within one
// transcript. topK <= 0 uses the configured default.
func (s *MeetingService) Search(ctx context.Context, query string, topK int, transcriptID string) ([]model.RetrievalRecord, error) {
	if strings.TrimSpace(query) == "" {
		return nil, model.NewValidationError("query", "is required")
	}
	if topK <= 0 {
		topK = s.d.TopK
	}
	if topK > MaxSearchTopK {
		return nil, model.NewValidationError("topK", fmt.Sprintf("must be at most %d", MaxSearchTopK))
	}
	var filter *vectorstore.Filter
	if transcriptID != "" {
		filter = &vectorstore.Filter{TranscriptID: transcriptID}
	}
	return s.d.Retriever.RetrieveScored(ctx, query, topK, filter)
}

// Report renders a stored summary and its transcript as a plain-text report.
func (s *MeetingService) Report(ctx context.Context, summaryID string) (string, error) {
	sum, err := s.d.Store.Summaries().Get(ctx, summaryID)
	if err != nil {
		return "", err
	}
	tr, err := s.d.Store.Transcripts().Get(ctx, sum.TranscriptID)
	if err != nil {
		return "", err
	}
	return RenderReport(tr, sum), nil
}
