// Package storage selects the store backend named by the configuration.
package storage

import (
	"context"
	"fmt"

	"grupy/internal/config"
	"grupy/internal/infrastructure/database"
	"grupy/internal/infrastructure/memory"
	"grupy/internal/infrastructure/sqlite"
	"grupy/internal/logger"
	"grupy/internal/ports/output"
)

// Open returns the configured store with its schema migrated.
//
//	memory:   in-process only (tests / demos)
//	sqlite:   embedded file at cfg.SQLitePath
//	postgres: server at cfg.DatabaseURL
func Open(ctx context.Context, cfg *config.Config) (output.Store, error) {
	ctx = logger.WithKV(ctx, "driver", cfg.StoreDriver)
	switch cfg.StoreDriver {
	case config.DriverMemory:
		logger.WarnKV(ctx, "Using the in-memory store; state is lost on exit")
		return memory.NewStore(), nil
	case config.DriverSQLite:
		s, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return s, nil
	case config.DriverPostgres:
		if err := database.RunMigrations(ctx, cfg.DatabaseURL); err != nil {
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		pool, err := database.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return database.NewStore(pool), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StoreDriver)
	}
}

// Migrate applies the schema without keeping a store open.
func Migrate(ctx context.Context, cfg *config.Config) error {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		return nil
	case config.DriverPostgres:
		return database.RunMigrations(ctx, cfg.DatabaseURL)
	default:
		s, err := Open(ctx, cfg)
		if err != nil {
			return err
		}
		return s.Close()
	}
}
