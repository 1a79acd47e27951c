// Package redis stores save entries in Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/gregoftheweb/nightland/internal/config"
	"github.com/gregoftheweb/nightland/internal/storage"
)

const scanBatch = 100

// KV implements storage.KV over a Redis client. Every key is namespaced
// with the configured prefix; Keys strips it again.
type KV struct {
	rdb    *goredis.Client
	prefix string
	logger *zap.Logger
}

var _ storage.KV = (*KV)(nil)

// Open parses cfg.URL, connects and pings the server.
//
// Precondition: cfg.URL must be a redis:// URL.
// Postcondition: Returns a connected KV or a non-nil error.
func Open(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (*KV, error) {
	opt, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}
	rdb := goredis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	logger.Info("connected to redis", zap.String("addr", opt.Addr), zap.String("key_prefix", cfg.KeyPrefix))
	return New(rdb, cfg.KeyPrefix, logger), nil
}

// New wraps an existing client.
func New(rdb *goredis.Client, prefix string, logger *zap.Logger) *KV {
	return &KV{rdb: rdb, prefix: prefix, logger: logger}
}

// Get implements storage.KV.
func (k *KV) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := k.rdb.Get(ctx, k.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %q: %w", key, err)
	}
	return value, nil
}

// Set implements storage.KV. Entries never expire.
func (k *KV) Set(ctx context.Context, key string, value []byte) error {
	if err := k.rdb.Set(ctx, k.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	k.logger.Debug("redis set", zap.String("key", key), zap.Int("bytes", len(value)))
	return nil
}

// Delete implements storage.KV.
func (k *KV) Delete(ctx context.Context, key string) error {
	if err := k.rdb.Del(ctx, k.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %q: %w", key, err)
	}
	return nil
}

// Keys implements storage.KV using SCAN so large keyspaces never block the server.
func (k *KV) Keys(ctx context.Context, prefix string) ([]string, error) {
	keys := []string{}
	iter := k.rdb.Scan(ctx, 0, escapeGlob(k.prefix+prefix)+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), k.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan %q: %w", prefix, err)
	}
	slices.Sort(keys)
	return slices.Compact(keys), nil
}

// Ping implements storage.KV.
func (k *KV) Ping(ctx context.Context) error {
	if err := k.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Close implements storage.KV.
func (k *KV) Close() error {
	return k.rdb.Close()
}

// escapeGlob quotes the characters SCAN MATCH treats specially.
func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
