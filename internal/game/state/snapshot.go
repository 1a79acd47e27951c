package state

import (
	"encoding/json"
	"fmt"
	"maps"
	"reflect"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gregoftheweb/nightland/internal/game/catalog"
)

const lastSavedKey = "lastSaved"

// Snapshot is the persisted form of a GameState: a JSON object keyed by the
// GameState's top-level field names. Keys unknown to this build survive a
// load/save cycle unchanged.
type Snapshot map[string]json.RawMessage

// levelScopedKeys describe the loaded level. They are discarded when a
// snapshot names a level this build does not know.
var levelScopedKeys = map[string]bool{
	"level":               true,
	"currentLevelId":      true,
	"items":               true,
	"objects":             true,
	"greatPowers":         true,
	"nonCollisionObjects": true,
	"monsters":            true,
}

// knownFields maps each top-level JSON key of GameState to its struct field
// index.
var knownFields = sync.OnceValue(func() map[string]int {
	t := reflect.TypeFor[GameState]()
	out := make(map[string]int, t.NumField())
	for i := range t.NumField() {
		tag := t.Field(i).Tag.Get("json")
		name, _, _ := strings.Cut(tag, ",")
		if name == "" || name == "-" {
			continue
		}
		out[name] = i
	}
	return out
})

// ToSnapshot projects s into its persisted form. LastSaved is written as an
// RFC 3339 timestamp and Extra keys are re-emitted verbatim.
func ToSnapshot(s *GameState) (Snapshot, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding game state: %w", err)
	}
	snap := make(Snapshot, len(knownFields())+len(s.Extra)+1)
	for k, v := range s.Extra {
		snap[k] = v
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("splitting game state: %w", err)
	}
	ts, err := json.Marshal(s.LastSaved.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("encoding lastSaved: %w", err)
	}
	snap[lastSavedKey] = ts
	return snap, nil
}

// FromSnapshot restores a GameState from snap.
//
// The snapshot is overlaid key by key onto a fresh state for the snapshot's
// level, so keys missing from older saves keep their defaults. A key whose
// value cannot be decoded logs a warning and keeps the default. Transient UI
// and animation fields are always reset. A nil snapshot yields a fresh state
// for the default level.
func (f *Factory) FromSnapshot(snap Snapshot) *GameState {
	defaultLevel := f.catalog.Game().DefaultLevelID
	if snap == nil {
		return f.Build(defaultLevel)
	}

	levelID := defaultLevel
	if raw, ok := snap["currentLevelId"]; ok {
		var id string
		if err := json.Unmarshal(raw, &id); err == nil && id != "" {
			levelID = id
		}
	}
	fellBack := !f.catalog.HasLevel(levelID)
	if fellBack {
		f.logger.Warn("snapshot references unknown level, restoring on default level",
			zap.String("level_id", levelID),
			zap.String("default_level_id", defaultLevel),
		)
		levelID = defaultLevel
	}

	st := f.Build(levelID)
	base := *st
	rv := reflect.ValueOf(st).Elem()
	fields := knownFields()
	var extra map[string]json.RawMessage

	for key, raw := range snap {
		if key == lastSavedKey {
			var ts string
			if err := json.Unmarshal(raw, &ts); err != nil {
				f.logger.Warn("ignoring malformed lastSaved", zap.Error(err))
				continue
			}
			t, err := time.Parse(time.RFC3339Nano, ts)
			if err != nil {
				f.logger.Warn("ignoring malformed lastSaved", zap.String("value", ts), zap.Error(err))
				continue
			}
			st.LastSaved = t.UTC()
			continue
		}
		if fellBack && levelScopedKeys[key] {
			continue
		}
		idx, ok := fields[key]
		if !ok {
			if extra == nil {
				extra = make(map[string]json.RawMessage)
			}
			extra[key] = raw
			continue
		}
		field := rv.Field(idx)
		target := reflect.New(field.Type())
		if err := json.Unmarshal(raw, target.Interface()); err != nil {
			f.logger.Warn("ignoring undecodable snapshot field",
				zap.String("field", key),
				zap.Error(err),
			)
			continue
		}
		field.Set(target.Elem())
	}

	st.CurrentLevelID = levelID
	if _, ok := st.Levels[st.CurrentLevelID]; !ok {
		levels := maps.Clone(st.Levels)
		if levels == nil {
			levels = map[string]catalog.Level{}
		}
		levels[st.CurrentLevelID] = base.Levels[levelID]
		st.Levels = levels
	}
	if st.GridWidth <= 0 || st.GridHeight <= 0 {
		st.GridWidth, st.GridHeight = base.GridWidth, base.GridHeight
	}
	if st.MaxAttackers < 1 {
		st.MaxAttackers = base.MaxAttackers
	}

	normalize(st)
	clearTransient(st)
	st.Extra = extra
	return st
}

// normalize replaces nil collections left by null or empty snapshot values.
func normalize(s *GameState) {
	if s.Levels == nil {
		s.Levels = map[string]catalog.Level{}
	}
	s.Items = nonNil(s.Items)
	s.Objects = nonNil(s.Objects)
	s.GreatPowers = nonNil(s.GreatPowers)
	s.NonCollisionObjects = nonNil(s.NonCollisionObjects)
	s.Monsters = nonNil(s.Monsters)
	s.ActiveMonsters = nonNil(s.ActiveMonsters)
	s.AttackSlots = nonNil(s.AttackSlots)
	s.WaitingMonsters = nonNil(s.WaitingMonsters)
	s.TurnOrder = nonNil(s.TurnOrder)
	s.Weapons = nonNil(s.Weapons)
	s.Player.Inventory = nonNil(s.Player.Inventory)
	s.Player.Weapons = nonNil(s.Player.Weapons)
	s.Player.RangedWeaponInventoryIDs = nonNil(s.Player.RangedWeaponInventoryIDs)
	if s.SubGamesCompleted == nil {
		s.SubGamesCompleted = map[string]bool{}
	}
	if s.WaypointSavesCreated == nil {
		s.WaypointSavesCreated = map[string]bool{}
	}
}

func clearTransient(s *GameState) {
	s.ShowInventory = false
	s.ShowWeaponsInventory = false
	s.DropSuccess = false
	s.DialogData = nil
	s.CombatLog = []CombatLogEntry{}
	s.ActiveProjectiles = []Projectile{}
	s.ActiveTeleportFlashes = []TeleportFlash{}
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
