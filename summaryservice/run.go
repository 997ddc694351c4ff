// Package summaryservice wires the meeting summary HTTP service.
package summaryservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/api"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/chunker"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/config"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/embeddings"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/factory"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/generation"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/health"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/logger"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/prompts"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/retriever"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/services"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/store"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/summarizer"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/vectorstore"
)

// Run starts the summary service HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New("summary-service")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}
	zerolog.SetGlobalLevel(logger.ParseLevel(cfg.LogLevel))

	log.Info().
		Str("build_target", cfg.BuildTarget).
		Str("db_driver", cfg.DBDriver).
		Str("vector_store", cfg.VectorStore).
		Int("http_port", cfg.HTTPPort).
		Str("embed_provider", cfg.EmbedProvider).
		Str("gen_provider", cfg.GenProvider).
		Msg("Summary service starting")

	// Create cancellable root context bound to SIGINT/SIGTERM
	ctx, stop := newServerContext()
	defer stop()

	deps, err := initDependencies(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer deps.close(log)

	svc, err := buildService(cfg, deps, log)
	if err != nil {
		return err
	}

	svcHealth := startHealthCheckers(ctx, cfg, log, deps)
	router := buildRouter(svc, svcHealth, cfg, log)

	// Block startup until dependencies report healthy; fail fast otherwise
	if err := waitUntilHealthy(ctx, cfg, svcHealth); err != nil {
		log.Error().Stack().Err(err).Interface("components", svcHealth.Components()).Msg("startup health check failed")
		return err
	}

	server := newHTTPServer(ctx, cfg, router)
	errCh := serveHTTP(server, log, cfg)

	// Graceful shutdown on context cancel or server error
	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

type dependencies struct {
	history   store.Store
	vectors   *vectorstore.Locked
	embedder  embeddings.Provider
	generator generation.Generator
}

func (d *dependencies) close(log zerolog.Logger) {
	if err := d.vectors.Close(); err != nil {
		log.Warn().Err(err).Msg("closing vector store")
	}
	if err := d.history.Close(); err != nil {
		log.Warn().Err(err).Msg("closing history store")
	}
}

// initDependencies constructs required components and enforces fail-fast on missing deps.
func initDependencies(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*dependencies, error) {
	history, err := factory.NewHistoryStore(ctx, cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("History store unavailable")
		return nil, err
	}
	vectors, err := factory.NewVectorStore(ctx, cfg, log)
	if err != nil {
		_ = history.Close()
		log.Error().Stack().Err(err).Msg("Vector store unavailable")
		return nil, err
	}
	embedder, err := factory.NewEmbeddingProvider(ctx, cfg, log)
	if err == nil && embedder == nil {
		err = fmt.Errorf("embedding provider not configured")
	}
	if err != nil {
		_ = vectors.Close()
		_ = history.Close()
		return nil, err
	}
	generator, err := factory.NewGenerator(cfg)
	if err != nil {
		_ = vectors.Close()
		_ = history.Close()
		return nil, err
	}
	return &dependencies{history: history, vectors: vectors, embedder: embedder, generator: generator}, nil
}

// buildService assembles the pipeline behind the HTTP handlers.
func buildService(cfg *config.Config, d *dependencies, log zerolog.Logger) (*services.MeetingService, error) {
	ch, err := chunker.New(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, err
	}
	set, err := prompts.Default()
	if cfg.PromptsFile != "" {
		set, err = prompts.Load(cfg.PromptsFile)
	}
	if err != nil {
		return nil, fmt.Errorf("prompts: %w", err)
	}
	asm, err := prompts.NewAssembler(set, cfg.ContextBudget)
	if err != nil {
		return nil, fmt.Errorf("prompts: %w", err)
	}
	transcriber, err := factory.NewTranscriber(cfg, log)
	if err != nil {
		return nil, err
	}

	r := retriever.New(d.embedder, d.vectors, cfg.EmbedTimeout(), log.With().Str("component", "retriever").Logger())
	orch := summarizer.New(r, asm, d.generator, d.history.Summaries(), summarizer.Config{
		TopK:            cfg.TopK,
		GenerateTimeout: cfg.GenerateTimeout(),
		Model:           cfg.GenModel,
	}, log.With().Str("component", "summarizer").Logger())

	return services.NewMeetingService(services.Deps{
		Store:         d.history,
		Vectors:       d.vectors,
		Embedder:      d.embedder,
		Chunker:       ch,
		Retriever:     r,
		Summarizer:    orch,
		Transcriber:   transcriber,
		EmbedTimeout:  cfg.EmbedTimeout(),
		TopK:          cfg.TopK,
		MaxAudioBytes: cfg.MaxAudioBytes,
		Log:           log,
	}), nil
}

// buildRouter wires HTTP routes to handlers.
func buildRouter(svc *services.MeetingService, svcHealth *health.ServiceHealthChecker, cfg *config.Config, log zerolog.Logger) *mux.Router {
	return api.NewRouter(svc, svcHealth, cfg.MaxAudioBytes, log)
}

// startHealthCheckers starts component checkers and the service-level aggregator.
func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, d *dependencies) *health.ServiceHealthChecker {
	var checkers []health.HealthChecker
	probeTimeout := time.Duration(cfg.HealthProbeTimeoutSeconds) * time.Second
	interval := time.Duration(cfg.HealthIntervalSeconds) * time.Second

	if p, ok := d.history.(health.HealthPinger); ok {
		c := health.NewPingChecker("history", p, log, probeTimeout)
		go c.Start(ctx, interval)
		checkers = append(checkers, c)
	}

	vc := health.NewPingChecker("vectorstore", d.vectors, log, probeTimeout)
	go vc.Start(ctx, interval)
	checkers = append(checkers, vc)

	ec := embeddings.NewProviderHealthChecker(d.embedder, log, probeTimeout)
	go ec.Start(ctx, interval)
	checkers = append(checkers, ec)

	if p, ok := d.generator.(health.HealthPinger); ok {
		gc := health.NewPingChecker("generator", p, log, probeTimeout)
		go gc.Start(ctx, interval)
		checkers = append(checkers, gc)
	}

	svcHealth := health.NewServiceHealthChecker(log, checkers...)
	go svcHealth.Start(ctx, interval)
	return svcHealth
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	// Summarization waits on the generator, so writes get the generation
	// budget plus headroom.
	writeTimeout := cfg.GenerateTimeout()*2 + cfg.EmbedTimeout() + 15*time.Second
	return &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           handler,
		ReadTimeout:       5 * time.Minute,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// startupHealthTimeout is the configured window, but never less than two
// health intervals.
func startupHealthTimeout(cfg *config.Config) time.Duration {
	window := time.Duration(cfg.StartupHealthTimeoutS) * time.Second
	if floor := 2 * time.Duration(cfg.HealthIntervalSeconds) * time.Second; window < floor {
		return floor
	}
	return window
}

// waitUntilHealthy blocks until service health is healthy or the startup window expires.
func waitUntilHealthy(ctx context.Context, cfg *config.Config, svcHealth *health.ServiceHealthChecker) error {
	timeout := startupHealthTimeout(cfg)
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		if svcHealth.IsHealthy() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("startup aborted: dependencies not healthy within %s", timeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// newServerContext returns a cancellable context that is cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
