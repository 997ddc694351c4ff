package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// EnvPrefix is prepended to every variable, e.g. MEETING_SUMMARY_HTTP_PORT.
const EnvPrefix = "MEETING_SUMMARY"

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the summary service.
type Config struct {
	// BuildTarget selects defaults for the drivers below: local or cloud.
	BuildTarget string      `envconfig:"BUILD_TARGET" default:"local"`
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`
	HTTPPort    int         `envconfig:"HTTP_PORT" default:"8080"`
	LogLevel    string      `envconfig:"LOG_LEVEL" default:"info"`

	// History store
	DBDriver    string `envconfig:"DB_DRIVER" default:"auto"`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"./meeting_data/history.db"`
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`

	// Vector store
	VectorStore      string `envconfig:"VECTOR_STORE" default:"auto"`
	VectorSQLitePath string `envconfig:"VECTOR_SQLITE_PATH" default:"./meeting_data/vectors.db"`
	WeaviateURL      string `envconfig:"WEAVIATE_URL" default:"localhost:8082"`
	WeaviateClass    string `envconfig:"WEAVIATE_CLASS" default:"TranscriptChunk"`
	VectorDimension  int    `envconfig:"VECTOR_DIMENSION" default:"0"`
	SimilarityMetric string `envconfig:"SIMILARITY_METRIC" default:"cosine"`

	// Embeddings
	EmbedProvider  string `envconfig:"EMBED_PROVIDER" default:"ollama"`
	EmbedModel     string `envconfig:"EMBED_MODEL" default:"nomic-embed-text"`
	HashDimension  int    `envconfig:"HASH_DIMENSION" default:"384"`
	OllamaURL      string `envconfig:"OLLAMA_URL" default:"http://localhost:11434"`
	OpenAIBaseURL  string `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com/v1"`
	OpenAIAPIKey   string `envconfig:"OPENAI_API_KEY" default:""`

	// Per-call backend timeouts
	EmbedTimeoutS    int `envconfig:"EMBED_TIMEOUT_SECONDS" default:"30"`
	GenerateTimeoutS int `envconfig:"GENERATE_TIMEOUT_SECONDS" default:"180"`

	// Generation
	GenProvider     string  `envconfig:"GEN_PROVIDER" default:"ollama"`
	GenModel        string  `envconfig:"GEN_MODEL" default:"llama2"`
	Temperature     float64 `envconfig:"TEMPERATURE" default:"0.3"`
	MaxOutputTokens int     `envconfig:"MAX_OUTPUT_TOKENS" default:"2000"`

	// Retrieval and prompting
	ChunkSize     int    `envconfig:"CHUNK_SIZE" default:"1000"`
	ChunkOverlap  int    `envconfig:"CHUNK_OVERLAP" default:"200"`
	TopK          int    `envconfig:"TOP_K" default:"5"`
	ContextBudget int    `envconfig:"CONTEXT_BUDGET" default:"6000"`
	PromptsFile   string `envconfig:"PROMPTS_FILE" default:""`

	// Transcription
	AssemblyAIKey     string `envconfig:"ASSEMBLYAI_API_KEY" default:""`
	AssemblyAIURL     string `envconfig:"ASSEMBLYAI_URL" default:"https://api.assemblyai.com"`
	MaxAudioBytes     int64  `envconfig:"MAX_AUDIO_BYTES" default:"262144000"`
	TranscribeTimeout int    `envconfig:"TRANSCRIBE_TIMEOUT_SECONDS" default:"900"`

	// Health and startup
	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"30"`
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"2"`
	BootstrapTimeoutSeconds   int `envconfig:"BOOTSTRAP_TIMEOUT_SECONDS" default:"15"`
	StartupHealthTimeoutS     int `envconfig:"STARTUP_HEALTH_TIMEOUT_SECONDS" default:"60"`
}

// ResolveDefaults validates BuildTarget and derives DBDriver and VectorStore when set to "auto" or empty.
func (c *Config) ResolveDefaults() error {
	var defaultDB, defaultVector string

	switch c.BuildTarget {
	case "local":
		defaultDB, defaultVector = "sqlite", "sqlite"
	case "cloud":
		defaultDB, defaultVector = "postgres", "weaviate"
	default:
		return fmt.Errorf("unsupported BUILD_TARGET: %s", c.BuildTarget)
	}

	if c.DBDriver == "" || c.DBDriver == "auto" {
		c.DBDriver = defaultDB
	}
	if c.VectorStore == "" || c.VectorStore == "auto" {
		c.VectorStore = defaultVector
	}

	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	switch c.VectorStore {
	case "memory", "sqlite", "weaviate":
	default:
		return fmt.Errorf("unsupported VECTOR_STORE: %s", c.VectorStore)
	}
	switch c.SimilarityMetric {
	case "cosine", "dot":
	default:
		return fmt.Errorf("unsupported SIMILARITY_METRIC: %s", c.SimilarityMetric)
	}
	if c.ChunkSize <= 0 || c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("invalid chunking: CHUNK_SIZE=%d CHUNK_OVERLAP=%d", c.ChunkSize, c.ChunkOverlap)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("TOP_K must be positive, got %d", c.TopK)
	}
	if c.DBDriver == "postgres" && c.PostgresDSN == "" {
		return fmt.Errorf("%s_POSTGRES_DSN is required when DB_DRIVER=postgres", EnvPrefix)
	}
	return nil
}

// New loads .env (if present), then parses MEETING_SUMMARY_* environment variables.
func New() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("build_target", cfg.BuildTarget).
		Str("db_driver", cfg.DBDriver).
		Str("vector_store", cfg.VectorStore).
		Str("environment", string(cfg.Environment)).
		Int("port", cfg.HTTPPort).
		Str("embed_provider", cfg.EmbedProvider).
		Str("embed_model", cfg.EmbedModel).
		Str("gen_provider", cfg.GenProvider).
		Str("gen_model", cfg.GenModel).
		Str("metric", cfg.SimilarityMetric).
		Int("chunk_size", cfg.ChunkSize).
		Int("chunk_overlap", cfg.ChunkOverlap).
		Int("top_k", cfg.TopK).
		Bool("postgres_dsn_present", cfg.PostgresDSN != "").
		Bool("assemblyai_key_present", cfg.AssemblyAIKey != "").
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting returns an in-process configuration: memory vectors, hashing
// embedder, no external services.
func NewForTesting() *Config {
	cfg := &Config{
		BuildTarget:      "local",
		Environment:      EnvTesting,
		HTTPPort:         8080,
		DBDriver:         "sqlite",
		VectorStore:      "memory",
		SimilarityMetric: "cosine",
		EmbedProvider:    "hashing",
		EmbedModel:       "hashing",
		HashDimension:    256,
		GenProvider:      "ollama",
		GenModel:         "llama2",
		Temperature:      0.3,
		MaxOutputTokens:  2000,
		ChunkSize:        1000,
		ChunkOverlap:     200,
		TopK:             5,
		ContextBudget:    6000,
		EmbedTimeoutS:    5,
		GenerateTimeoutS: 5,
		MaxAudioBytes:    250 << 20,

		HealthIntervalSeconds:     1,
		HealthProbeTimeoutSeconds: 1,
		BootstrapTimeoutSeconds:   1,
		StartupHealthTimeoutS:     5,
	}
	return cfg
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func (c *Config) EmbedTimeout() time.Duration {
	return time.Duration(c.EmbedTimeoutS) * time.Second
}

func (c *Config) GenerateTimeout() time.Duration {
	return time.Duration(c.GenerateTimeoutS) * time.Second
}
