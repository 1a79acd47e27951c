package savegame

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gregoftheweb/nightland/internal/storage"
)

const (
	subGameKeyPrefix = "@nightland:subgame:"
	subGameVersion   = 1
)

type subGameSave struct {
	Version   int             `json:"version"`
	Timestamp int64           `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// SubGames persists minigame state (dial positions, solved sequences)
// outside GameState, one key per sub-game.
type SubGames struct {
	kv     storage.KV
	logger *zap.Logger
	now    func() time.Time
}

func newSubGames(kv storage.KV, logger *zap.Logger, now func() time.Time) *SubGames {
	return &SubGames{kv: kv, logger: logger, now: now}
}

func subGameKey(key string) string { return subGameKeyPrefix + key }

// Get decodes the save for key into v and reports whether one existed. A
// corrupt or incompatible save is deleted and reported as absent.
func (g *SubGames) Get(ctx context.Context, key string, v any) (bool, error) {
	data, err := g.kv.Get(ctx, subGameKey(key))
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading sub-game save %q: %w", key, err)
	}

	var save subGameSave
	if err := json.Unmarshal(data, &save); err != nil {
		g.discard(ctx, key, err)
		return false, nil
	}
	if save.Version != subGameVersion {
		g.discard(ctx, key, fmt.Errorf("%w: %d", ErrUnsupportedVersion, save.Version))
		return false, nil
	}
	if err := json.Unmarshal(save.Data, v); err != nil {
		g.discard(ctx, key, err)
		return false, nil
	}
	return true, nil
}

// Set stores v as the save for key.
func (g *SubGames) Set(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding sub-game save %q: %w", key, err)
	}
	envelope, err := json.Marshal(subGameSave{
		Version:   subGameVersion,
		Timestamp: g.now().UnixMilli(),
		Data:      data,
	})
	if err != nil {
		return fmt.Errorf("encoding sub-game save %q: %w", key, err)
	}
	if err := g.kv.Set(ctx, subGameKey(key), envelope); err != nil {
		return fmt.Errorf("writing sub-game save %q: %w", key, err)
	}
	return nil
}

// Has reports whether a save exists for key.
func (g *SubGames) Has(ctx context.Context, key string) (bool, error) {
	_, err := g.kv.Get(ctx, subGameKey(key))
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading sub-game save %q: %w", key, err)
	}
	return true, nil
}

// Clear removes the save for key.
func (g *SubGames) Clear(ctx context.Context, key string) error {
	if err := g.kv.Delete(ctx, subGameKey(key)); err != nil {
		return fmt.Errorf("clearing sub-game save %q: %w", key, err)
	}
	return nil
}

// ClearAll removes every sub-game save.
func (g *SubGames) ClearAll(ctx context.Context) error {
	keys, err := g.kv.Keys(ctx, subGameKeyPrefix)
	if err != nil {
		return fmt.Errorf("listing sub-game saves: %w", err)
	}
	var errs []error
	for _, key := range keys {
		if err := g.kv.Delete(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("deleting %s: %w", key, err))
		}
	}
	if len(errs) == 0 && len(keys) > 0 {
		g.logger.Info("sub-game saves cleared", zap.Int("count", len(keys)))
	}
	return errors.Join(errs...)
}

func (g *SubGames) discard(ctx context.Context, key string, cause error) {
	g.logger.Warn("discarding sub-game save", zap.String("key", key), zap.Error(cause))
	if err := g.kv.Delete(ctx, subGameKey(key)); err != nil {
		g.logger.Error("deleting discarded sub-game save", zap.String("key", key), zap.Error(err))
	}
}
