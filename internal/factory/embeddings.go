package factory

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/config"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/embeddings"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/embeddings/hashing"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/embeddings/ollama"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/embeddings/openai"
)

// NewEmbeddingProvider creates an embedding provider based on config.
// Launches an async warmup; returns the provider immediately for fast startup.
func NewEmbeddingProvider(ctx context.Context, cfg *config.Config, log zerolog.Logger) (embeddings.Provider, error) {
	var provider embeddings.Provider

	switch cfg.EmbedProvider {
	case "", "ollama":
		provider = ollama.New(cfg.OllamaURL, cfg.EmbedModel, cfg.EmbedTimeout())
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("%s_OPENAI_API_KEY is required when EMBED_PROVIDER=openai", config.EnvPrefix)
		}
		provider = openai.New(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.EmbedModel, cfg.EmbedTimeout())
	case "hashing":
		return hashing.New(cfg.HashDimension), nil
	default:
		return nil, fmt.Errorf("unknown EMBED_PROVIDER: %s", cfg.EmbedProvider)
	}

	go func() {
		warmupCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.BootstrapTimeoutSeconds)*time.Second)
		defer cancel()

		if vec, err := provider.Embed(warmupCtx, "factory-warmup-check"); err != nil || len(vec) == 0 {
			log.Warn().Err(err).Int("vec_len", len(vec)).
				Str("provider", cfg.EmbedProvider).Str("model", cfg.EmbedModel).
				Msg("embedding provider warmup failed")
		} else {
			log.Debug().Str("provider", cfg.EmbedProvider).Str("model", cfg.EmbedModel).Int("dimension", len(vec)).
				Msg("embedding provider warmup completed")
		}
	}()

	return provider, nil
}
