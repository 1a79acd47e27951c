// Package backend opens the save store selected by configuration.
package backend

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/gregoftheweb/nightland/internal/config"
	"github.com/gregoftheweb/nightland/internal/storage"
	"github.com/gregoftheweb/nightland/internal/storage/postgres"
	"github.com/gregoftheweb/nightland/internal/storage/redis"
	"github.com/gregoftheweb/nightland/internal/storage/sqlite"
)

// Open returns the KV named by cfg.Backend.
//
// Precondition: cfg must have passed config validation.
// Postcondition: Returns a reachable KV or a non-nil error.
func Open(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (storage.KV, error) {
	switch cfg.Backend {
	case config.BackendMemory, "":
		logger.Warn("using in-memory save storage; saves are lost on exit")
		return storage.NewMemory(), nil
	case config.BackendPostgres:
		kv, err := postgres.Open(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, fmt.Errorf("opening postgres storage: %w", err)
		}
		return kv, nil
	case config.BackendRedis:
		kv, err := redis.Open(ctx, cfg.Redis, logger)
		if err != nil {
			return nil, fmt.Errorf("opening redis storage: %w", err)
		}
		return kv, nil
	case config.BackendSQLite:
		kv, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite storage: %w", err)
		}
		logger.Info("using sqlite save storage", zap.String("path", cfg.SQLite.Path))
		return kv, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
