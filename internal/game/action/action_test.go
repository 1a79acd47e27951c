package action_test

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gregoftheweb/nightland/internal/game/action"
	"github.com/gregoftheweb/nightland/internal/game/catalog"
	"github.com/gregoftheweb/nightland/internal/game/state"
)

func newDecoder(t *testing.T) (*action.Decoder, *state.Factory) {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	f := state.NewFactory(cat, zap.NewNop(), state.WithClock(func() time.Time {
		return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	}))
	return action.NewDecoder(f), f
}

// TestDecode_KnownTypes verifies payloads decode into their typed actions.
func TestDecode_KnownTypes(t *testing.T) {
	d, _ := newDecoder(t)
	cases := []struct {
		in   string
		want action.Action
	}{
		{`{"type":"SET_LEVEL","payload":{"levelId":"2"}}`, action.SetLevel{LevelID: "2"}},
		{`{"type":"MOVE_PLAYER","payload":{"direction":"up"}}`, action.MovePlayer{Direction: action.Up}},
		{`{"type":"MOVE_PLAYER","payload":{"position":{"row":3,"col":4}}}`,
			action.MovePlayer{Position: &catalog.Position{Row: 3, Col: 4}}},
		{`{"type":"REMOVE_MONSTER","payload":{"id":"m1"}}`, action.RemoveMonster{ID: "m1"}},
		{`{"type":"UPDATE_MONSTER_HP","payload":{"id":"m1","hp":3}}`, action.UpdateMonsterHP{ID: "m1", HP: 3}},
		{`{"type":"RESET_GAME"}`, action.ResetGame{}},
		{`{"type":"GAME_OVER","payload":{"message":"X","killerName":"Y"}}`,
			action.GameOver{Message: state.Ptr("X"), KillerName: state.Ptr("Y")}},
		{`{"type":"SET_SUB_GAME_COMPLETED","payload":{"subGameName":"tesseract:sigil","completed":true}}`,
			action.SetSubGameCompleted{SubGameName: "tesseract:sigil", Completed: true}},
		{`{"type":"TOGGLE_RANGED_MODE","payload":{"active":true,"targetId":"m2"}}`,
			action.ToggleRangedMode{Active: true, TargetID: state.Ptr("m2")}},
		{`{"type":"SET_COMBAT","payload":{"inCombat":false,"attackSlots":[],"turnOrder":[],"combatTurn":null}}`,
			action.SetCombat{AttackSlots: []catalog.Monster{}, TurnOrder: []string{}}},
	}
	for _, tc := range cases {
		t.Run(string(tc.want.Type()), func(t *testing.T) {
			got, err := d.Decode([]byte(tc.in))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

// TestDecode_SetLevelTopLevelID verifies the legacy top-level levelId form.
func TestDecode_SetLevelTopLevelID(t *testing.T) {
	d, _ := newDecoder(t)
	got, err := d.Decode([]byte(`{"type":"SET_LEVEL","levelId":"2"}`))
	require.NoError(t, err)
	assert.Equal(t, action.SetLevel{LevelID: "2"}, got)
}

// TestDecode_SetAudioStartedBareBool verifies the boolean payload form.
func TestDecode_SetAudioStartedBareBool(t *testing.T) {
	d, _ := newDecoder(t)
	got, err := d.Decode([]byte(`{"type":"SET_AUDIO_STARTED","payload":true}`))
	require.NoError(t, err)
	assert.Equal(t, action.SetAudioStarted{Started: true}, got)
}

// TestDecode_UnknownType verifies unknown types still produce a dispatchable
// action alongside the sentinel error.
func TestDecode_UnknownType(t *testing.T) {
	d, _ := newDecoder(t)
	got, err := d.Decode([]byte(`{"type":"SUMMON_GREAT_POWER","payload":{"x":1}}`))
	require.ErrorIs(t, err, action.ErrUnknownType)
	require.IsType(t, action.Unknown{}, got)
	assert.Equal(t, action.Type("SUMMON_GREAT_POWER"), got.Type())
}

// TestDecode_Malformed verifies broken envelopes and payloads are errors.
func TestDecode_Malformed(t *testing.T) {
	d, _ := newDecoder(t)
	for _, in := range []string{
		`not json`,
		`{"payload":{}}`,
		`{"type":"REMOVE_MONSTER","payload":{"id":7}}`,
		`{"type":"SET_AUDIO_STARTED","payload":"yes"}`,
	} {
		got, err := d.Decode([]byte(in))
		assert.Error(t, err, in)
		assert.Nil(t, got, in)
	}
}

// TestEncode_RoundTrip verifies encoded actions decode to the same value.
func TestEncode_RoundTrip(t *testing.T) {
	d, _ := newDecoder(t)
	for _, a := range []action.Action{
		action.SetLevel{LevelID: "2"},
		action.AddRangedWeapon{ID: "weapon-valkyries-bow-001"},
		action.SetAudioStarted{Started: true},
		action.UpdatePlayer{Updates: action.PlayerUpdate{CurrentHP: state.Ptr(12)}},
		action.PassTurn{},
	} {
		data, err := action.Encode(a)
		require.NoError(t, err)
		got, err := d.Decode(data)
		require.NoError(t, err)
		assert.Equal(t, a, got)
	}
}

// TestHydrate_RestoresThroughFactory verifies HYDRATE_GAME_STATE carries a
// restored state across the wire.
func TestHydrate_RestoresThroughFactory(t *testing.T) {
	d, f := newDecoder(t)
	s := f.Build("2")
	s.MoveCount = 9
	s.SubGamesCompleted = map[string]bool{"tesseract": true}

	data, err := action.Encode(action.HydrateGameState{State: s})
	require.NoError(t, err)

	var env map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &env))
	assert.JSONEq(t, `"HYDRATE_GAME_STATE"`, string(env["type"]))

	got, err := d.Decode(data)
	require.NoError(t, err)
	h, ok := got.(action.HydrateGameState)
	require.True(t, ok)
	assert.Equal(t, s, h.State)
}

// TestUpdates_ApplyOnlySetFields verifies partial updates leave nil fields
// untouched.
func TestUpdates_ApplyOnlySetFields(t *testing.T) {
	p := catalog.Player{Name: "Christos", CurrentHP: 50, MaxHP: 100}
	got := action.PlayerUpdate{CurrentHP: state.Ptr(80), CanJaunt: state.Ptr(true)}.Apply(p)
	assert.Equal(t, "Christos", got.Name)
	assert.Equal(t, 80, got.CurrentHP)
	assert.Equal(t, 100, got.MaxHP)
	assert.True(t, got.CanJaunt)

	m := catalog.Monster{ID: "m1", CurrentHP: 10}
	gotM := action.MonsterUpdate{Active: state.Ptr(false)}.Apply(m)
	assert.Equal(t, 10, gotM.CurrentHP)
	assert.False(t, gotM.IsActive())
	assert.Nil(t, m.Active)

	o := catalog.Object{ShortName: "pool", Active: true}
	gotO := action.ObjectUpdate{LastTrigger: state.Ptr(int64(99))}.Apply(o)
	assert.Equal(t, int64(99), gotO.LastTrigger)
	assert.True(t, gotO.Active)
}

type foreignAction struct{}

func (foreignAction) Type() action.Type { return "FOREIGN" }

// TestAction_Closed verifies only this package's types satisfy Action.
func TestAction_Closed(t *testing.T) {
	iface := reflect.TypeFor[action.Action]()
	assert.False(t, reflect.TypeFor[foreignAction]().Implements(iface))
	assert.True(t, reflect.TypeFor[action.MovePlayer]().Implements(iface))
	assert.True(t, reflect.TypeFor[action.Unknown]().Implements(iface))
}
