package factory

import (
	"fmt"

	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/config"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/generation"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/generation/ollama"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/generation/openai"
)

// NewGenerator returns the generation backend selected by cfg.GenProvider.
// Model availability is checked by the health loop, not here.
func NewGenerator(cfg *config.Config) (generation.Generator, error) {
	opts := generation.DefaultOptions()
	opts.Temperature = cfg.Temperature
	if cfg.MaxOutputTokens > 0 {
		opts.MaxTokens = cfg.MaxOutputTokens
	}

	switch cfg.GenProvider {
	case "", "ollama":
		return ollama.New(cfg.OllamaURL, cfg.GenModel, opts, cfg.GenerateTimeout()), nil
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("%s_OPENAI_API_KEY is required when GEN_PROVIDER=openai", config.EnvPrefix)
		}
		return openai.New(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.GenModel, opts, cfg.GenerateTimeout()), nil
	default:
		return nil, fmt.Errorf("unknown GEN_PROVIDER: %s", cfg.GenProvider)
	}
}
