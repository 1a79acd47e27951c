// Package savegame orchestrates persistence of the game: the single-slot
// autosave, named waypoint checkpoints and per-sub-game state. Every
// namespace lives under its own key prefix in a storage.KV.
package savegame

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gregoftheweb/nightland/internal/game/state"
	"github.com/gregoftheweb/nightland/internal/storage"
)

const (
	// CurrentGameKey holds the autosave.
	CurrentGameKey = "nightland:save:current:v1"
	// WaypointIndexKey holds the metadata of every waypoint save.
	WaypointIndexKey = "nightland:save:waypoints:index:v1"

	waypointKeyPrefix = "nightland:save:waypoint:v1:"

	// SaveVersion tags autosave and waypoint records.
	SaveVersion = "v1"
)

var (
	// ErrWaypointNotFound is returned when no waypoint save matches.
	ErrWaypointNotFound = errors.New("waypoint save not found")
	// ErrUnsupportedVersion is returned for records written by an
	// incompatible build.
	ErrUnsupportedVersion = errors.New("unsupported save version")
)

type currentSave struct {
	Version  string         `json:"version"`
	Snapshot state.Snapshot `json:"snapshot"`
	SavedAt  time.Time      `json:"savedAt"`
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the save timestamp source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithIDGenerator overrides the waypoint id source.
func WithIDGenerator(fn func() string) Option {
	return func(m *Manager) { m.newID = fn }
}

// Manager reads and writes saves.
type Manager struct {
	kv       storage.KV
	factory  *state.Factory
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
	subGames *SubGames

	// wpMu serializes read-modify-write cycles on the waypoint index.
	wpMu sync.Mutex
}

// New creates a Manager over kv.
//
// Precondition: kv, factory, and logger must be non-nil.
func New(kv storage.KV, factory *state.Factory, logger *zap.Logger, opts ...Option) *Manager {
	m := &Manager{
		kv:      kv,
		factory: factory,
		logger:  logger,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.subGames = newSubGames(kv, logger, m.now)
	return m
}

// SubGames returns the sub-game save namespace.
func (m *Manager) SubGames() *SubGames { return m.subGames }

// SaveCurrentGame overwrites the autosave with s. s is not modified.
//
// Postcondition: On success the autosave holds s stamped with the save time.
func (m *Manager) SaveCurrentGame(ctx context.Context, s *state.GameState) error {
	savedAt := m.now().UTC()
	snap, err := m.snapshot(s, savedAt)
	if err != nil {
		return err
	}
	data, err := json.Marshal(currentSave{Version: SaveVersion, Snapshot: snap, SavedAt: savedAt})
	if err != nil {
		return fmt.Errorf("encoding autosave: %w", err)
	}
	if err := m.kv.Set(ctx, CurrentGameKey, data); err != nil {
		return fmt.Errorf("writing autosave: %w", err)
	}
	m.logger.Debug("autosave written",
		zap.String("level", s.CurrentLevelID),
		zap.Int("move_count", s.MoveCount),
	)
	return nil
}

// LoadCurrentGame restores the autosave. It never fails: a missing slot
// yields a fresh state, and a corrupt or incompatible slot is deleted and
// replaced by a fresh state.
func (m *Manager) LoadCurrentGame(ctx context.Context) *state.GameState {
	fresh := func() *state.GameState {
		return m.factory.Build(m.factory.Catalog().Game().DefaultLevelID)
	}
	data, err := m.kv.Get(ctx, CurrentGameKey)
	if errors.Is(err, storage.ErrNotFound) {
		return fresh()
	}
	if err != nil {
		m.logger.Error("reading autosave", zap.String("key", CurrentGameKey), zap.Error(err))
		return fresh()
	}

	var save currentSave
	if err := json.Unmarshal(data, &save); err != nil {
		m.discardCurrent(ctx, "corrupt autosave", err)
		return fresh()
	}
	if save.Version != SaveVersion {
		m.discardCurrent(ctx, "incompatible autosave",
			fmt.Errorf("%w: %q", ErrUnsupportedVersion, save.Version))
		return fresh()
	}
	return m.factory.FromSnapshot(save.Snapshot)
}

// HasCurrentGame reports whether an autosave exists.
func (m *Manager) HasCurrentGame(ctx context.Context) (bool, error) {
	_, err := m.kv.Get(ctx, CurrentGameKey)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading autosave: %w", err)
	}
	return true, nil
}

// DeleteCurrentGame removes the autosave. Waypoints are untouched.
func (m *Manager) DeleteCurrentGame(ctx context.Context) error {
	if err := m.kv.Delete(ctx, CurrentGameKey); err != nil {
		return fmt.Errorf("deleting autosave: %w", err)
	}
	m.logger.Info("autosave deleted")
	return nil
}

// ClearAllSubGameSaves removes every sub-game save.
func (m *Manager) ClearAllSubGameSaves(ctx context.Context) error {
	return m.subGames.ClearAll(ctx)
}

func (m *Manager) snapshot(s *state.GameState, savedAt time.Time) (state.Snapshot, error) {
	stamped := *s
	stamped.LastSaved = savedAt
	snap, err := state.ToSnapshot(&stamped)
	if err != nil {
		return nil, fmt.Errorf("snapshotting game state: %w", err)
	}
	return snap, nil
}

func (m *Manager) discardCurrent(ctx context.Context, reason string, cause error) {
	m.logger.Warn("discarding autosave",
		zap.String("reason", reason),
		zap.String("key", CurrentGameKey),
		zap.Error(cause),
	)
	if err := m.kv.Delete(ctx, CurrentGameKey); err != nil {
		m.logger.Error("deleting discarded autosave", zap.Error(err))
	}
}
