// Package vectorstore defines the chunk/embedding store contract and the
// ranking rules every backend shares.
package vectorstore

import (
	"context"
	"fmt"

	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/model"
)

// Store persists (chunk, embedding) pairs and answers nearest-neighbor queries.
//
// Implementations must reject embeddings whose length differs from Dimension
// with model.ErrDimensionMismatch, order Query results by descending score
// with ties broken by insertion order, and remove every chunk of a transcript
// on DeleteTranscript.
type Store interface {
	Upsert(ctx context.Context, chunk model.Chunk, embedding []float32) error
	Query(ctx context.Context, vector []float32, topK int, filter *Filter) ([]model.RetrievalRecord, error)
	DeleteTranscript(ctx context.Context, transcriptID string) error

	// Dimension is the configured vector length, or 0 until the first upsert fixes it.
	Dimension() int
	Metric() Metric
	Close() error
}

// Filter restricts a query. A nil *Filter matches every chunk.
type Filter struct {
	TranscriptID string
}

// Match reports whether c satisfies f.
func (f *Filter) Match(c model.Chunk) bool {
	if f == nil {
		return true
	}
	return f.TranscriptID == "" || c.TranscriptID == f.TranscriptID
}

// Metric is the similarity function used for ranking.
type Metric string

const (
	Cosine Metric = "cosine"
	Dot    Metric = "dot"
)

// ParseMetric accepts "cosine" or "dot"; empty defaults to cosine.
func ParseMetric(s string) (Metric, error) {
	switch Metric(s) {
	case "", Cosine:
		return Cosine, nil
	case Dot:
		return Dot, nil
	default:
		return "", fmt.Errorf("unsupported similarity metric: %q", s)
	}
}

// Options are shared by all backend constructors.
type Options struct {
	Dimension int
	Metric    Metric
}
