// Package factory constructs the configured docstore driver.
package factory

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/worklens/worklens-backend/internal/config"
	"github.com/worklens/worklens-backend/internal/docstore"
	"github.com/worklens/worklens-backend/internal/docstore/memstore"
	"github.com/worklens/worklens-backend/internal/docstore/postgres"
	"github.com/worklens/worklens-backend/internal/docstore/sqlite"
)

// NewStore creates the docstore driver selected by DB_DRIVER.
func NewStore(cfg *config.Config, log zerolog.Logger) (docstore.Store, error) {
	switch cfg.DBDriver {
	case "memory":
		log.Warn().Msg("using in-memory docstore, data will not survive a restart")
		return memstore.New(), nil
	case "sqlite":
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite docstore: %w", err)
		}
		s, err := sqlite.NewWithDB(db)
		if err != nil {
			return nil, fmt.Errorf("init sqlite schema: %w", err)
		}
		return s, nil
	case "postgres":
		db, err := postgres.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres docstore: %w", err)
		}
		s, err := postgres.NewWithDB(db)
		if err != nil {
			return nil, fmt.Errorf("init postgres schema: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER: %s", cfg.DBDriver)
	}
}
