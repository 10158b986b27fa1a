// Package factory builds service dependencies from configuration.
package factory

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/nutrigenie/nutrigenie/internal/config"
	storepkg "github.com/nutrigenie/nutrigenie/internal/store"
	storepg "github.com/nutrigenie/nutrigenie/internal/store/postgres"
	storesq "github.com/nutrigenie/nutrigenie/internal/store/sqlite"
)

// NewStore opens the structured store selected by cfg.DBDriver. The sqlite
// driver applies its schema on open; postgres bootstraps asynchronously so
// startup is not blocked on migrations.
func NewStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (storepkg.Store, error) {
	switch cfg.DBDriver {
	case "sqlite":
		db, err := storesq.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return storesq.NewWithDB(db), nil

	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("NUTRIGENIE_POSTGRES_DSN is required when DB_DRIVER=postgres")
		}
		db, err := storepg.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		go func() {
			bootstrapCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.StartupTimeoutSeconds)*time.Second)
			defer cancel()
			if err := storepg.Bootstrap(bootstrapCtx, db); err != nil {
				log.Warn().Err(err).Msg("store bootstrap failed")
			} else {
				log.Debug().Msg("store bootstrap completed")
			}
		}()
		return storepg.NewWithDB(db), nil

	default:
		return nil, fmt.Errorf("unknown DB_DRIVER: %s", cfg.DBDriver)
	}
}
