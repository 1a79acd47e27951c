package savegame

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gregoftheweb/nightland/internal/game/catalog"
	"github.com/gregoftheweb/nightland/internal/game/state"
	"github.com/gregoftheweb/nightland/internal/storage"
)

// WaypointMeta describes a waypoint save without its snapshot.
type WaypointMeta struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	CreatedAt      time.Time        `json:"createdAt"`
	LevelID        string           `json:"levelId"`
	PlayerPosition catalog.Position `json:"playerPosition"`
	PlayerHP       int              `json:"playerHP"`
	PlayerMaxHP    int              `json:"playerMaxHP"`
}

type waypointRecord struct {
	WaypointMeta
	Version  string         `json:"version"`
	Snapshot state.Snapshot `json:"snapshot"`
}

func waypointKey(id string) string { return waypointKeyPrefix + id }

// SaveWaypoint writes a checkpoint of s named name and returns its id. Any
// earlier checkpoint with the same name is replaced.
//
// Precondition: name must be non-empty.
// Postcondition: Exactly one waypoint save carries name.
func (m *Manager) SaveWaypoint(ctx context.Context, s *state.GameState, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("waypoint name is required")
	}
	m.wpMu.Lock()
	defer m.wpMu.Unlock()

	index, err := m.readIndex(ctx)
	if err != nil {
		return "", err
	}

	createdAt := m.now().UTC()
	snap, err := m.snapshot(s, createdAt)
	if err != nil {
		return "", err
	}
	rec := waypointRecord{
		WaypointMeta: WaypointMeta{
			ID:             m.newID(),
			Name:           name,
			CreatedAt:      createdAt,
			LevelID:        s.CurrentLevelID,
			PlayerPosition: s.Player.Position,
			PlayerHP:       s.Player.CurrentHP,
			PlayerMaxHP:    s.Player.MaxHP,
		},
		Version:  SaveVersion,
		Snapshot: snap,
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encoding waypoint %q: %w", name, err)
	}
	if err := m.kv.Set(ctx, waypointKey(rec.ID), data); err != nil {
		return "", fmt.Errorf("writing waypoint %q: %w", name, err)
	}

	kept := make([]WaypointMeta, 0, len(index)+1)
	var replaced []string
	for _, meta := range index {
		if meta.Name == name {
			replaced = append(replaced, meta.ID)
			continue
		}
		kept = append(kept, meta)
	}
	kept = append(kept, rec.WaypointMeta)
	if err := m.writeIndex(ctx, kept); err != nil {
		return "", err
	}
	for _, id := range replaced {
		if err := m.kv.Delete(ctx, waypointKey(id)); err != nil {
			m.logger.Warn("deleting replaced waypoint", zap.String("id", id), zap.Error(err))
		}
	}

	m.logger.Info("waypoint saved",
		zap.String("id", rec.ID),
		zap.String("name", name),
		zap.String("level", rec.LevelID),
	)
	return rec.ID, nil
}

// LoadWaypoint restores the waypoint save with the given id.
func (m *Manager) LoadWaypoint(ctx context.Context, id string) (*state.GameState, error) {
	rec, err := m.readRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.factory.FromSnapshot(rec.Snapshot), nil
}

// LoadWaypointByName restores the newest waypoint save named name.
func (m *Manager) LoadWaypointByName(ctx context.Context, name string) (*state.GameState, error) {
	metas, err := m.ListWaypointSaves(ctx)
	if err != nil {
		return nil, err
	}
	for _, meta := range metas {
		if meta.Name == name {
			return m.LoadWaypoint(ctx, meta.ID)
		}
	}
	return nil, fmt.Errorf("%w: name %q", ErrWaypointNotFound, name)
}

// ListWaypointSaves returns every waypoint, newest first.
func (m *Manager) ListWaypointSaves(ctx context.Context) ([]WaypointMeta, error) {
	m.wpMu.Lock()
	index, err := m.readIndex(ctx)
	m.wpMu.Unlock()
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(index, func(a, b WaypointMeta) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return index, nil
}

// DeleteWaypoint removes one waypoint save.
func (m *Manager) DeleteWaypoint(ctx context.Context, id string) error {
	m.wpMu.Lock()
	defer m.wpMu.Unlock()

	index, err := m.readIndex(ctx)
	if err != nil {
		return err
	}
	at := slices.IndexFunc(index, func(meta WaypointMeta) bool { return meta.ID == id })
	if at < 0 {
		return fmt.Errorf("%w: id %q", ErrWaypointNotFound, id)
	}
	if err := m.kv.Delete(ctx, waypointKey(id)); err != nil {
		return fmt.Errorf("deleting waypoint %q: %w", id, err)
	}
	return m.writeIndex(ctx, slices.Delete(index, at, at+1))
}

// DeleteAllWaypointSaves removes every waypoint save and the index. The
// autosave is untouched.
func (m *Manager) DeleteAllWaypointSaves(ctx context.Context) error {
	m.wpMu.Lock()
	defer m.wpMu.Unlock()

	keys, err := m.kv.Keys(ctx, waypointKeyPrefix)
	if err != nil {
		return fmt.Errorf("listing waypoints: %w", err)
	}
	var errs []error
	for _, key := range keys {
		if err := m.kv.Delete(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("deleting %s: %w", key, err))
		}
	}
	if err := m.kv.Delete(ctx, WaypointIndexKey); err != nil {
		errs = append(errs, fmt.Errorf("deleting waypoint index: %w", err))
	}
	if len(errs) == 0 {
		m.logger.Info("all waypoints deleted", zap.Int("count", len(keys)))
	}
	return errors.Join(errs...)
}

func (m *Manager) readRecord(ctx context.Context, id string) (waypointRecord, error) {
	var rec waypointRecord
	data, err := m.kv.Get(ctx, waypointKey(id))
	if errors.Is(err, storage.ErrNotFound) {
		return rec, fmt.Errorf("%w: id %q", ErrWaypointNotFound, id)
	}
	if err != nil {
		return rec, fmt.Errorf("reading waypoint %q: %w", id, err)
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("decoding waypoint %q: %w", id, err)
	}
	if rec.Version != SaveVersion {
		return rec, fmt.Errorf("waypoint %q: %w: %q", id, ErrUnsupportedVersion, rec.Version)
	}
	return rec, nil
}

// readIndex loads the waypoint index, rebuilding it from the stored records
// when it is unreadable.
//
// Precondition: wpMu must be held.
func (m *Manager) readIndex(ctx context.Context) ([]WaypointMeta, error) {
	data, err := m.kv.Get(ctx, WaypointIndexKey)
	if errors.Is(err, storage.ErrNotFound) {
		return []WaypointMeta{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading waypoint index: %w", err)
	}
	var index []WaypointMeta
	err = json.Unmarshal(data, &index)
	if err == nil {
		return index, nil
	}
	m.logger.Warn("rebuilding corrupt waypoint index", zap.Error(err))
	return m.rebuildIndex(ctx)
}

func (m *Manager) rebuildIndex(ctx context.Context) ([]WaypointMeta, error) {
	keys, err := m.kv.Keys(ctx, waypointKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("listing waypoints: %w", err)
	}
	index := make([]WaypointMeta, 0, len(keys))
	for _, key := range keys {
		rec, err := m.readRecord(ctx, strings.TrimPrefix(key, waypointKeyPrefix))
		if err != nil {
			m.logger.Warn("skipping unreadable waypoint", zap.String("key", key), zap.Error(err))
			continue
		}
		index = append(index, rec.WaypointMeta)
	}
	slices.SortFunc(index, func(a, b WaypointMeta) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), strings.Compare(a.ID, b.ID))
	})
	return index, m.writeIndex(ctx, index)
}

func (m *Manager) writeIndex(ctx context.Context, index []WaypointMeta) error {
	data, err := json.Marshal(index)
	if err != nil {
		return fmt.Errorf("encoding waypoint index: %w", err)
	}
	if err := m.kv.Set(ctx, WaypointIndexKey, data); err != nil {
		return fmt.Errorf("writing waypoint index: %w", err)
	}
	return nil
}
