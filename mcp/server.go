// Package mcp exposes the meeting summary service as Model Context Protocol
// tools over stdio or streamable HTTP.
package mcp

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/priyanshu10cruzo/ai-meeting-summary/client"
	"github.com/priyanshu10cruzo/ai-meeting-summary/mcp/internal/handlers"
)

type config struct {
	ServiceURL      string
	HTTPAddr        string
	LogLevel        zerolog.Level
	ServerName      string
	ServerVersion   string
	ShutdownTimeout time.Duration
	ClientTimeout   time.Duration
	HTTPReadTimeout time.Duration
	HTTPIdleTimeout time.Duration
}

// loadConfig reads environment variables; command line flags override them.
func loadConfig(args []string) (*config, error) {
	cfg := &config{
		ServiceURL:      getEnvOrDefault("SUMMARY_SERVICE_URL", "http://localhost:8080"),
		HTTPAddr:        getEnvOrDefault("MCP_HTTP_ADDR", ":8091"),
		ServerName:      getEnvOrDefault("MCP_SERVER_NAME", "meeting-summary-mcp-server"),
		ServerVersion:   getEnvOrDefault("MCP_SERVER_VERSION", "0.1.0"),
		ShutdownTimeout: parseDurationOrDefault("SHUTDOWN_TIMEOUT", 10*time.Second),
		ClientTimeout:   parseDurationOrDefault("CLIENT_TIMEOUT", 3*time.Minute),
		HTTPReadTimeout: parseDurationOrDefault("HTTP_READ_TIMEOUT", 5*time.Second),
		HTTPIdleTimeout: parseDurationOrDefault("HTTP_IDLE_TIMEOUT", 120*time.Second),
	}
	rawLogLevel := getEnvOrDefault("LOG_LEVEL", "info")

	fs := flag.NewFlagSet("summary-mcp-server", flag.ContinueOnError)
	fs.StringVar(&cfg.ServiceURL, "service-url", cfg.ServiceURL, "Base URL of the meeting summary service")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "Listen address for the streamable HTTP transport")
	fs.StringVar(&rawLogLevel, "log-level", rawLogLevel, "Log level: debug|info|warn|error")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg.LogLevel = parseLogLevel(rawLogLevel)
	return cfg, nil
}

func (c *config) initLogger() {
	zerolog.SetGlobalLevel(c.LogLevel)
	log.Logger = log.With().Caller().Logger()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(envKey string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(envKey); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func parseLogLevel(levelStr string) zerolog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

type toolRegisterer interface {
	RegisterTools(s *server.MCPServer) error
}

// NewServer builds the MCP server with every tool registered against sdk.
func NewServer(name, version string, sdk *client.Client) (*server.MCPServer, error) {
	s := server.NewMCPServer(
		name,
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)
	for _, h := range []toolRegisterer{
		handlers.NewTranscriptHandler(sdk),
		handlers.NewSummaryHandler(sdk),
		handlers.NewSearchHandler(sdk),
	} {
		if err := h.RegisterTools(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// RunMCPServer starts the MCP server, choosing stdio when launched by
// another process and streamable HTTP otherwise.
func RunMCPServer() error {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		return err
	}
	cfg.initLogger()

	log.Info().Str("service_url", cfg.ServiceURL).Msg("Creating meeting summary client")
	sdk := client.New(cfg.ServiceURL, client.WithHTTPTimeout(cfg.ClientTimeout))

	s, err := NewServer(cfg.ServerName, cfg.ServerVersion, sdk)
	if err != nil {
		log.Error().Err(err).Msg("Failed to register tools")
		return err
	}

	if shouldUseStdio() {
		log.Info().Msg("Starting meeting summary MCP server (stdio transport)")
		return server.ServeStdio(s)
	}
	return serveHTTP(cfg, s)
}

func serveHTTP(cfg *config, s *server.MCPServer) error {
	log.Info().Str("addr", cfg.HTTPAddr).Msg("Starting meeting summary MCP server (Streamable HTTP)")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	streamSrv := server.NewStreamableHTTPServer(
		s,
		server.WithEndpointPath("/mcp"),
		server.WithHeartbeatInterval(30*time.Second),
	)
	srv := &http.Server{
		Addr:        cfg.HTTPAddr,
		Handler:     streamSrv,
		ReadTimeout: cfg.HTTPReadTimeout,
		// no write deadline: streamed responses stay open
		WriteTimeout: 0,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info().Msg("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during HTTP server shutdown")
	}
	if err := streamSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during MCP server shutdown")
	}
	log.Info().Msg("MCP server shutdown complete")
	return nil
}

// shouldUseStdio honours MCP_STDIO / MCP_HTTP, then falls back to checking
// whether stdin is a terminal.
func shouldUseStdio() bool {
	if os.Getenv("MCP_STDIO") == "true" {
		return true
	}
	if os.Getenv("MCP_HTTP") == "true" {
		return false
	}
	if fileInfo, err := os.Stdin.Stat(); err == nil {
		return (fileInfo.Mode() & os.ModeCharDevice) == 0
	}
	return false
}
