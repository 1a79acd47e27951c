package state_test

import (
	"encoding/json"
	"maps"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/gregoftheweb/nightland/internal/game/catalog"
	"github.com/gregoftheweb/nightland/internal/game/state"
)

var fixedNow = time.Date(2026, 3, 14, 9, 26, 53, 589000000, time.UTC)

func newFactory(t testing.TB) (*state.Factory, *observer.ObservedLogs) {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	core, logs := observer.New(zap.WarnLevel)
	return state.NewFactory(cat, zap.New(core), state.WithClock(func() time.Time { return fixedNow })), logs
}

// roundTrip pushes s through ToSnapshot, JSON bytes and FromSnapshot.
func roundTrip(t *testing.T, f *state.Factory, s *state.GameState) *state.GameState {
	t.Helper()
	snap, err := state.ToSnapshot(s)
	require.NoError(t, err)
	data, err := json.Marshal(snap)
	require.NoError(t, err)
	var decoded state.Snapshot
	require.NoError(t, json.Unmarshal(data, &decoded))
	return f.FromSnapshot(decoded)
}

// TestBuild_InitialState verifies a fresh state starts out of combat at full
// health on level 1.
func TestBuild_InitialState(t *testing.T) {
	f, _ := newFactory(t)
	s := f.Build("1")

	assert.Equal(t, "1", s.CurrentLevelID)
	assert.Equal(t, "1", s.Level.ID)
	assert.Contains(t, s.Levels, "1")
	assert.False(t, s.InCombat)
	assert.False(t, s.GameOver)
	assert.Nil(t, s.CombatTurn)
	assert.Empty(t, s.ActiveMonsters)
	assert.Empty(t, s.AttackSlots)
	assert.Equal(t, s.Player.MaxHP, s.Player.CurrentHP)
	assert.Equal(t, catalog.Position{Row: 395, Col: 200}, s.Player.Position)
	assert.Equal(t, 4, s.MaxAttackers)
	assert.Equal(t, 400, s.GridWidth)
	assert.NotNil(t, s.SubGamesCompleted)
	assert.NotNil(t, s.WaypointSavesCreated)
	assert.Equal(t, fixedNow, s.LastSaved)
	require.NoError(t, state.Validate(s))
}

// TestBuild_Idempotent verifies two builds of the same level are equal and
// share no mutable containers.
func TestBuild_Idempotent(t *testing.T) {
	f, _ := newFactory(t)
	a := f.Build("1")
	b := f.Build("1")
	require.Equal(t, a, b)

	require.NotEmpty(t, a.Items)
	a.Items[0].Name = "tampered"
	a.Player.Weapons[0].Equipped = false
	a.SubGamesCompleted["x"] = true
	a.Monsters[0].CurrentHP = -1

	assert.NotEqual(t, "tampered", b.Items[0].Name)
	assert.NotEqual(t, "tampered", a.Level.Items[0].Name)
	assert.NotEqual(t, "tampered", a.Levels["1"].Items[0].Name)
	assert.True(t, b.Player.Weapons[0].Equipped)
	assert.Empty(t, b.SubGamesCompleted)
	assert.Equal(t, f.Build("1"), b)
}

// TestBuild_UnknownLevelFallsBack verifies an unknown level id falls back to
// the default level with a warning.
func TestBuild_UnknownLevelFallsBack(t *testing.T) {
	f, logs := newFactory(t)
	s := f.Build("404")
	assert.Equal(t, "1", s.CurrentLevelID)
	assert.Equal(t, 1, logs.FilterMessage("unknown level, falling back to default").Len())
}

// TestSnapshot_RoundTrip verifies persistent fields survive a snapshot
// round trip exactly.
func TestSnapshot_RoundTrip(t *testing.T) {
	f, _ := newFactory(t)
	s := f.Build("2")
	s.MoveCount = 42
	s.DistanceTraveled = 17
	s.MonstersKilled = 3
	s.Player.CurrentHP = 61
	s.Player.Position = catalog.Position{Row: 12, Col: 34}
	s.SubGamesCompleted = map[string]bool{"hermit-riddle": true}
	s.WaypointSavesCreated = map[string]bool{"ruins": true}
	s.Player.EquippedRangedWeaponID = state.Ptr("weapon-shurikens-001")
	s.Player.RangedWeaponInventoryIDs = []string{"weapon-shurikens-001"}
	s.GameOver = true
	s.GameOverMessage = state.Ptr("gone")

	got := roundTrip(t, f, s)
	assert.Equal(t, s, got)
}

// TestSnapshot_UnknownSubGameKeysSurvive verifies sub-game flags this build
// has never heard of round-trip unchanged.
func TestSnapshot_UnknownSubGameKeysSurvive(t *testing.T) {
	f, _ := newFactory(t)
	rapid.Check(t, func(rt *rapid.T) {
		flags := rapid.MapOf(rapid.StringMatching(`[a-z][a-z0-9-]{0,15}`), rapid.Bool()).Draw(rt, "flags")
		s := f.Build("1")
		s.SubGamesCompleted = flags

		snap, err := state.ToSnapshot(s)
		require.NoError(rt, err)
		data, err := json.Marshal(snap)
		require.NoError(rt, err)
		var decoded state.Snapshot
		require.NoError(rt, json.Unmarshal(data, &decoded))
		got := f.FromSnapshot(decoded)

		assert.True(rt, maps.Equal(flags, got.SubGamesCompleted), "got %v", got.SubGamesCompleted)
	})
}

// TestSnapshot_ClearsTransientFields verifies UI and animation state is
// dropped on restore.
func TestSnapshot_ClearsTransientFields(t *testing.T) {
	f, _ := newFactory(t)
	s := f.Build("1")
	s.ShowInventory = true
	s.ShowWeaponsInventory = true
	s.DropSuccess = true
	s.DialogData = &state.Dialog{Message: "hello"}
	s.CombatLog = []state.CombatLogEntry{{ID: "a", Message: "hit", Turn: 1}}
	s.ActiveProjectiles = []state.Projectile{{ID: "p"}}

	got := roundTrip(t, f, s)
	assert.False(t, got.ShowInventory)
	assert.False(t, got.ShowWeaponsInventory)
	assert.False(t, got.DropSuccess)
	assert.Nil(t, got.DialogData)
	assert.Empty(t, got.CombatLog)
	assert.Empty(t, got.ActiveProjectiles)
}

// TestFromSnapshot_LegacyDefaults verifies keys absent from older saves take
// their fresh-state defaults.
func TestFromSnapshot_LegacyDefaults(t *testing.T) {
	f, _ := newFactory(t)
	snap := state.Snapshot{
		"currentLevelId": json.RawMessage(`"1"`),
		"moveCount":      json.RawMessage(`7`),
	}
	got := f.FromSnapshot(snap)
	assert.Equal(t, 7, got.MoveCount)
	assert.False(t, got.GameOver)
	assert.False(t, got.InCombat)
	assert.Equal(t, map[string]bool{}, got.SubGamesCompleted)
	assert.Equal(t, map[string]bool{}, got.WaypointSavesCreated)
	assert.Equal(t, 100, got.Player.CurrentHP)
}

// TestFromSnapshot_NullCollectionsNormalized verifies explicit nulls become
// empty collections.
func TestFromSnapshot_NullCollectionsNormalized(t *testing.T) {
	f, _ := newFactory(t)
	got := f.FromSnapshot(state.Snapshot{
		"subGamesCompleted": json.RawMessage(`null`),
		"activeMonsters":    json.RawMessage(`null`),
		"gameOver":          json.RawMessage(`null`),
	})
	assert.NotNil(t, got.SubGamesCompleted)
	assert.NotNil(t, got.ActiveMonsters)
	assert.False(t, got.GameOver)
}

// TestFromSnapshot_PreservesUnknownKeys verifies fields from newer builds are
// carried through a load and save.
func TestFromSnapshot_PreservesUnknownKeys(t *testing.T) {
	f, _ := newFactory(t)
	got := f.FromSnapshot(state.Snapshot{
		"futureFeature": json.RawMessage(`{"enabled":true}`),
	})
	require.Contains(t, got.Extra, "futureFeature")

	snap, err := state.ToSnapshot(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{"enabled":true}`, string(snap["futureFeature"]))
}

// TestFromSnapshot_UnknownLevel verifies a snapshot on an unknown level is
// restored on the default level.
func TestFromSnapshot_UnknownLevel(t *testing.T) {
	f, logs := newFactory(t)
	got := f.FromSnapshot(state.Snapshot{
		"currentLevelId": json.RawMessage(`"99"`),
		"level":          json.RawMessage(`{"id":"99","name":"Nowhere"}`),
		"moveCount":      json.RawMessage(`5`),
	})
	assert.Equal(t, "1", got.CurrentLevelID)
	assert.Equal(t, "1", got.Level.ID)
	assert.Equal(t, 5, got.MoveCount)
	assert.Equal(t, 1, logs.FilterMessage("snapshot references unknown level, restoring on default level").Len())
	require.NoError(t, state.Validate(got))
}

// TestFromSnapshot_BadFieldKeepsDefault verifies a wrongly typed value does
// not poison the rest of the restore.
func TestFromSnapshot_BadFieldKeepsDefault(t *testing.T) {
	f, logs := newFactory(t)
	got := f.FromSnapshot(state.Snapshot{
		"moveCount":      json.RawMessage(`"many"`),
		"monstersKilled": json.RawMessage(`2`),
	})
	assert.Equal(t, 0, got.MoveCount)
	assert.Equal(t, 2, got.MonstersKilled)
	assert.Equal(t, 1, logs.FilterMessage("ignoring undecodable snapshot field").Len())
}

// TestFromSnapshot_Nil verifies a nil snapshot yields a fresh default state.
func TestFromSnapshot_Nil(t *testing.T) {
	f, _ := newFactory(t)
	assert.Equal(t, f.Build("1"), f.FromSnapshot(nil))
}

// TestToSnapshot_LastSavedIsTimestamp verifies lastSaved is written as an
// RFC 3339 string.
func TestToSnapshot_LastSavedIsTimestamp(t *testing.T) {
	f, _ := newFactory(t)
	snap, err := state.ToSnapshot(f.Build("1"))
	require.NoError(t, err)
	assert.JSONEq(t, `"2026-03-14T09:26:53.589Z"`, string(snap["lastSaved"]))
}

// TestValidate_ReportsViolations verifies the diagnostic catches broken
// combat bookkeeping.
func TestValidate_ReportsViolations(t *testing.T) {
	f, _ := newFactory(t)
	s := f.Build("1")
	s.InCombat = true
	s.TurnOrder = []string{state.PlayerTurnID, "ghost"}
	s.CombatTurn = state.Ptr("nobody")
	s.Player.CurrentHP = 500

	err := state.Validate(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inCombat with no attackers")
	assert.Contains(t, err.Error(), `"ghost"`)
	assert.Contains(t, err.Error(), `combatTurn "nobody"`)
	assert.Contains(t, err.Error(), "player hp 500")
}
