// Package retriever embeds a query and fetches the nearest transcript chunks.
package retriever

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/embeddings"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/metrics"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/model"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/vectorstore"
)

// Retriever composes an embeddings provider with a vector store.
type Retriever struct {
	embedder     embeddings.Provider
	store        vectorstore.Store
	embedTimeout time.Duration
	log          zerolog.Logger
}

// New builds a Retriever. embedTimeout bounds each embedding call; zero
// disables the per-call deadline.
func New(embedder embeddings.Provider, store vectorstore.Store, embedTimeout time.Duration, log zerolog.Logger) *Retriever {
	return &Retriever{embedder: embedder, store: store, embedTimeout: embedTimeout, log: log}
}

// Retrieve returns up to topK chunks most similar to query. An empty result
// with a nil error means nothing indexed matches.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int, filter *vectorstore.Filter) ([]model.Chunk, error) {
	recs, err := r.RetrieveScored(ctx, query, topK, filter)
	if err != nil {
		return nil, err
	}
	out := make([]model.Chunk, len(recs))
	for i, rec := range recs {
		out[i] = rec.Chunk
	}
	return out, nil
}

// RetrieveScored is Retrieve with similarity scores, best first.
func (r *Retriever) RetrieveScored(ctx context.Context, query string, topK int, filter *vectorstore.Filter) ([]model.RetrievalRecord, error) {
	vec, err := EmbedQuery(ctx, r.embedder, query, r.embedTimeout)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	recs, err := r.store.Query(ctx, vec, topK, filter)
	metrics.ObserveBackend("vectorstore", "query", start)
	if err != nil {
		return nil, fmt.Errorf("vector query: %w", err)
	}
	r.log.Debug().Int("top_k", topK).Int("hits", len(recs)).Msg("retrieved chunks")
	return recs, nil
}

// EmbedQuery embeds text under an optional per-call timeout and classifies
// failures as ErrBackendTimeout or ErrEmbeddingFailure.
func EmbedQuery(ctx context.Context, p embeddings.Provider, text string, timeout time.Duration) ([]float32, error) {
	callCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	vec, err := p.Embed(callCtx, text)
	metrics.ObserveBackend("embedder", "embed", start)
	if err != nil {
		return nil, ClassifyEmbedError(ctx, callCtx, err)
	}
	if len(vec) == 0 {
		return nil, fmt.Errorf("%w: empty embedding", model.ErrEmbeddingFailure)
	}
	return vec, nil
}

// ClassifyEmbedError maps a provider error to the service taxonomy. Caller
// cancellation is passed through untouched.
func ClassifyEmbedError(parent, call context.Context, err error) error {
	if parent.Err() != nil {
		return parent.Err()
	}
	if errors.Is(call.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: embedding: %v", model.ErrBackendTimeout, err)
	}
	return fmt.Errorf("%w: %v", model.ErrEmbeddingFailure, err)
}
