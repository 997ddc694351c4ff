package factory

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/config"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/transcription"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/transcription/assemblyai"
)

// NewTranscriber returns the AssemblyAI client, or nil when no API key is
// configured; audio ingestion is then rejected at request time.
func NewTranscriber(cfg *config.Config, log zerolog.Logger) (transcription.Transcriber, error) {
	if cfg.AssemblyAIKey == "" {
		log.Info().Msg("ASSEMBLYAI_API_KEY not set; audio ingestion disabled")
		return nil, nil
	}
	c, err := assemblyai.New(assemblyai.Config{
		APIKey:  cfg.AssemblyAIKey,
		BaseURL: cfg.AssemblyAIURL,
		Timeout: time.Duration(cfg.TranscribeTimeout) * time.Second,
	}, log)
	if err != nil {
		return nil, err
	}
	return c, nil
}
