// Package postgres stores save entries in PostgreSQL using pgx v5.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/gregoftheweb/nightland/internal/config"
	"github.com/gregoftheweb/nightland/internal/storage"
)

const healthTimeout = 2 * time.Second

// KV stores save entries in the save_entries table.
type KV struct {
	pool *pgxpool.Pool
}

// Open connects a pool sized by cfg and returns a KV over it.
//
// Precondition: cfg must contain valid database connection parameters.
// Postcondition: Returns a KV whose database answered a ping, or a non-nil
// error. The schema is not created here; run cmd/migrate first.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*KV, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	logger.Info("connected to postgres",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Name),
		zap.Int32("max_conns", cfg.MaxConns),
	)
	return New(pool), nil
}

// New wraps an existing pool. The save_entries table must exist; see
// migrations/000001_create_save_entries.up.sql.
func New(pool *pgxpool.Pool) *KV {
	return &KV{pool: pool}
}

// Get implements storage.KV.
func (k *KV) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := k.pool.QueryRow(ctx,
		`SELECT value FROM save_entries WHERE key = $1`, key,
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading save entry %q: %w", key, err)
	}
	return value, nil
}

// Set implements storage.KV.
func (k *KV) Set(ctx context.Context, key string, value []byte) error {
	_, err := k.pool.Exec(ctx, `
		INSERT INTO save_entries (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("writing save entry %q: %w", key, err)
	}
	return nil
}

// Delete implements storage.KV.
func (k *KV) Delete(ctx context.Context, key string) error {
	if _, err := k.pool.Exec(ctx, `DELETE FROM save_entries WHERE key = $1`, key); err != nil {
		return fmt.Errorf("deleting save entry %q: %w", key, err)
	}
	return nil
}

// Keys implements storage.KV.
func (k *KV) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := k.pool.Query(ctx,
		`SELECT key FROM save_entries WHERE starts_with(key, $1) ORDER BY key COLLATE "C"`, prefix,
	)
	if err != nil {
		return nil, fmt.Errorf("listing save entries %q: %w", prefix, err)
	}
	keys, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning save entry keys: %w", err)
	}
	if keys == nil {
		keys = []string{}
	}
	return keys, nil
}

// Ping implements storage.KV.
func (k *KV) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()
	return k.pool.Ping(ctx)
}

// Close implements storage.KV.
func (k *KV) Close() error {
	k.pool.Close()
	return nil
}
