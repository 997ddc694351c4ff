package factory

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/config"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/vectorstore"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/vectorstore/memory"
	vsqlite "github.com/priyanshu10cruzo/ai-meeting-summary/internal/vectorstore/sqlite"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/vectorstore/weaviate"
)

// NewVectorStore builds the backend selected by cfg.VectorStore wrapped in a
// per-transcript write lock.
func NewVectorStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*vectorstore.Locked, error) {
	metric, err := vectorstore.ParseMetric(cfg.SimilarityMetric)
	if err != nil {
		return nil, err
	}
	opts := vectorstore.Options{Dimension: cfg.VectorDimension, Metric: metric}

	var inner vectorstore.Store
	switch cfg.VectorStore {
	case "memory":
		inner = memory.New(opts)
	case "sqlite":
		s, err := vsqlite.Open(ctx, cfg.VectorSQLitePath, opts)
		if err != nil {
			return nil, fmt.Errorf("sqlite vector store: %w", err)
		}
		inner = s
	case "weaviate":
		if cfg.WeaviateURL == "" {
			return nil, fmt.Errorf("weaviate URL not configured - required for VECTOR_STORE=weaviate")
		}
		s, err := weaviate.New(cfg.WeaviateURL, cfg.WeaviateClass, opts, log)
		if err != nil {
			return nil, err
		}
		bootstrapCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.BootstrapTimeoutSeconds)*time.Second)
		defer cancel()
		if err := s.Bootstrap(bootstrapCtx); err != nil {
			return nil, fmt.Errorf("weaviate bootstrap: %w", err)
		}
		inner = s
	default:
		return nil, fmt.Errorf("unknown VECTOR_STORE: %s", cfg.VectorStore)
	}

	log.Debug().Str("backend", cfg.VectorStore).Str("metric", string(metric)).Int("dimension", inner.Dimension()).
		Msg("vector store ready")
	return vectorstore.NewLocked(inner), nil
}
