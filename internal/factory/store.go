package factory

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/config"
	storepkg "github.com/priyanshu10cruzo/ai-meeting-summary/internal/store"
	storepg "github.com/priyanshu10cruzo/ai-meeting-summary/internal/store/postgres"
	storesqlite "github.com/priyanshu10cruzo/ai-meeting-summary/internal/store/sqlite"
)

// NewHistoryStore opens the transcript and summary store selected by cfg.DBDriver.
// The schema is ensured before returning; the caller owns Close.
func NewHistoryStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (storepkg.Store, error) {
	bootstrapCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.BootstrapTimeoutSeconds)*time.Second)
	defer cancel()

	switch cfg.DBDriver {
	case "sqlite":
		st, err := storesqlite.New(bootstrapCtx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("sqlite history store: %w", err)
		}
		log.Debug().Str("path", cfg.SQLitePath).Msg("history store ready")
		return st, nil
	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("%s_POSTGRES_DSN is required when DB_DRIVER=postgres", config.EnvPrefix)
		}
		db, err := storepg.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := storepg.Bootstrap(bootstrapCtx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("postgres bootstrap: %w", err)
		}
		log.Debug().Str("driver", cfg.DBDriver).Msg("history store ready")
		return storepg.NewWithDB(db), nil
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER: %s", cfg.DBDriver)
	}
}
