package summaryservice

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/config"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/health"
)

func TestStartupHealthTimeout(t *testing.T) {
	cfg := config.NewForTesting()
	cfg.StartupHealthTimeoutS = 60
	cfg.HealthIntervalSeconds = 10
	assert.Equal(t, 60*time.Second, startupHealthTimeout(cfg))

	cfg.HealthIntervalSeconds = 45
	assert.Equal(t, 90*time.Second, startupHealthTimeout(cfg))
}

func TestInitDependenciesAndBuildService(t *testing.T) {
	cfg := config.NewForTesting()
	cfg.SQLitePath = t.TempDir() + "/history.db"
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps, err := initDependencies(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	defer deps.close(zerolog.Nop())

	svc, err := buildService(cfg, deps, zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, svc)

	svcHealth := startHealthCheckers(ctx, cfg, zerolog.Nop(), deps)
	components := svcHealth.Components()
	assert.Contains(t, components, "history")
	assert.Contains(t, components, "vectorstore")
	assert.Contains(t, components, "embedder")
	assert.Contains(t, components, "generator")
}

func TestWaitUntilHealthy_Timeout(t *testing.T) {
	cfg := config.NewForTesting()
	cfg.StartupHealthTimeoutS = 0
	cfg.HealthIntervalSeconds = 0
	never := health.NewServiceHealthChecker(zerolog.Nop())
	err := waitUntilHealthy(context.Background(), cfg, never)
	assert.ErrorContains(t, err, "not healthy")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg.StartupHealthTimeoutS = 30
	assert.ErrorIs(t, waitUntilHealthy(ctx, cfg, never), context.Canceled)
}
