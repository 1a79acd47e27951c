package reducer_test

import (
	"encoding/json"
	"maps"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/gregoftheweb/nightland/internal/game/action"
	"github.com/gregoftheweb/nightland/internal/game/catalog"
	"github.com/gregoftheweb/nightland/internal/game/state"
)

// TestScenario_FreshLevelOne verifies the starting state.
func TestScenario_FreshLevelOne(t *testing.T) {
	fx := newFixture(t)
	s := fx.factory.Build("1")
	assert.Equal(t, catalog.Position{Row: 395, Col: 200}, s.Player.Position)
	assert.False(t, s.InCombat)
	assert.Equal(t, []catalog.Monster{}, s.ActiveMonsters)
}

// TestScenario_KillLastMonster verifies ranged state and kill count after a
// fight ends with the last attacker removed.
func TestScenario_KillLastMonster(t *testing.T) {
	fx := newFixture(t)
	m1 := monster("m1", 10, catalog.Position{Row: 394, Col: 200})
	got := fx.run(
		action.SetCombat{
			InCombat:    true,
			AttackSlots: []catalog.Monster{m1},
			TurnOrder:   []string{state.PlayerTurnID, "m1"},
			CombatTurn:  state.Ptr(state.PlayerTurnID),
		},
		action.RemoveMonster{ID: "m1"},
		action.SetCombat{InCombat: false, AttackSlots: []catalog.Monster{}, TurnOrder: []string{}, CombatTurn: nil},
	)
	assert.False(t, got.RangedAttackMode)
	assert.Nil(t, got.TargetedMonsterID)
	assert.Equal(t, 1, got.MonstersKilled)
	assert.False(t, got.InCombat)
}

// TestScenario_GameOver verifies death clears combat.
func TestScenario_GameOver(t *testing.T) {
	fx := newFixture(t)
	m1 := monster("m1", 10, catalog.Position{Row: 394, Col: 200})
	got := fx.run(
		action.SpawnMonster{Monster: m1},
		enterCombat(m1),
		action.GameOver{Message: state.Ptr("X"), KillerName: state.Ptr("Y")},
	)
	assert.True(t, got.GameOver)
	assert.False(t, got.InCombat)
	assert.Equal(t, []catalog.Monster{}, got.ActiveMonsters)
	assert.Equal(t, "X", *got.GameOverMessage)
	assert.Equal(t, "Y", *got.KillerName)
}

// TestScenario_SubGameFlagSurvivesReload verifies a completed sub-game is
// still completed after a save and a load in a new factory.
func TestScenario_SubGameFlagSurvivesReload(t *testing.T) {
	fx := newFixture(t)
	s := fx.run(action.SetSubGameCompleted{SubGameName: "tesseract", Completed: true})
	snap, err := state.ToSnapshot(s)
	require.NoError(t, err)
	data, err := json.Marshal(snap)
	require.NoError(t, err)

	fresh := newFixture(t)
	var decoded state.Snapshot
	require.NoError(t, json.Unmarshal(data, &decoded))
	loaded := fresh.factory.FromSnapshot(decoded)
	assert.True(t, loaded.SubGamesCompleted["tesseract"])
}

// TestScenario_SnapshotRoundTripReachable verifies every state reachable by
// play restores from its snapshot with the same persistent fields.
func TestScenario_SnapshotRoundTripReachable(t *testing.T) {
	fx := newFixture(t)
	ids := func(ms []catalog.Monster) []string {
		out := make([]string, 0, len(ms))
		for _, m := range ms {
			out = append(out, m.ID)
		}
		return out
	}
	hps := func(ms []catalog.Monster) []int {
		out := make([]int, 0, len(ms))
		for _, m := range ms {
			out = append(out, m.CurrentHP)
		}
		return out
	}
	rapid.Check(t, func(rt *rapid.T) {
		s := fx.factory.Build("1")
		for _, a := range rapid.SliceOfN(actionGen(), 0, 30).Draw(rt, "actions") {
			s = fx.reducer.Reduce(s, a)
		}
		snap, err := state.ToSnapshot(s)
		require.NoError(rt, err)
		data, err := json.Marshal(snap)
		require.NoError(rt, err)
		var decoded state.Snapshot
		require.NoError(rt, json.Unmarshal(data, &decoded))
		got := fx.factory.FromSnapshot(decoded)

		assert.Equal(rt, s.CurrentLevelID, got.CurrentLevelID)
		assert.Equal(rt, s.Level.ID, got.Level.ID)
		assert.Equal(rt, s.MoveCount, got.MoveCount)
		assert.Equal(rt, s.DistanceTraveled, got.DistanceTraveled)
		assert.Equal(rt, s.MonstersKilled, got.MonstersKilled)
		assert.Equal(rt, s.Player.Position, got.Player.Position)
		assert.Equal(rt, s.Player.CurrentHP, got.Player.CurrentHP)
		assert.Equal(rt, s.Player.EquippedRangedWeaponID, got.Player.EquippedRangedWeaponID)
		assert.ElementsMatch(rt, s.Player.RangedWeaponInventoryIDs, got.Player.RangedWeaponInventoryIDs)
		assert.Equal(rt, s.GameOver, got.GameOver)
		assert.Equal(rt, s.GameOverMessage, got.GameOverMessage)
		assert.Equal(rt, s.KillerName, got.KillerName)
		assert.Equal(rt, s.InCombat, got.InCombat)
		assert.Equal(rt, s.CombatTurn, got.CombatTurn)
		assert.ElementsMatch(rt, s.TurnOrder, got.TurnOrder)
		assert.Equal(rt, s.RangedAttackMode, got.RangedAttackMode)
		assert.Equal(rt, s.TargetedMonsterID, got.TargetedMonsterID)
		assert.ElementsMatch(rt, ids(s.ActiveMonsters), ids(got.ActiveMonsters))
		assert.ElementsMatch(rt, hps(s.ActiveMonsters), hps(got.ActiveMonsters))
		assert.ElementsMatch(rt, ids(s.AttackSlots), ids(got.AttackSlots))
		assert.ElementsMatch(rt, ids(s.WaitingMonsters), ids(got.WaitingMonsters))
		assert.True(rt, maps.Equal(s.SubGamesCompleted, got.SubGamesCompleted))
		assert.True(rt, maps.Equal(s.WaypointSavesCreated, got.WaypointSavesCreated))
		assert.Empty(rt, got.CombatLog)
	})
}

// TestScenario_ResetAfterAnything verifies RESET_GAME always lands on the
// fresh level-1 state.
func TestScenario_ResetAfterAnything(t *testing.T) {
	fx := newFixture(t)
	rapid.Check(t, func(rt *rapid.T) {
		s := fx.factory.Build("1")
		for _, a := range rapid.SliceOfN(actionGen(), 0, 25).Draw(rt, "actions") {
			s = fx.reducer.Reduce(s, a)
		}
		s = fx.reducer.Reduce(s, action.ResetGame{})
		assert.Equal(rt, fx.factory.Build("1"), s)
	})
}

// TestReduce_NeverMutatesInput verifies prior states are untouched by any
// transition.
func TestReduce_NeverMutatesInput(t *testing.T) {
	fx := newFixture(t)
	rapid.Check(t, func(rt *rapid.T) {
		s := fx.factory.Build("1")
		for _, a := range rapid.SliceOfN(actionGen(), 1, 30).Draw(rt, "actions") {
			before, err := json.Marshal(s)
			require.NoError(rt, err)
			next := fx.reducer.Reduce(s, a)
			after, err := json.Marshal(s)
			require.NoError(rt, err)
			require.JSONEq(rt, string(before), string(after), "input mutated by %s", a.Type())
			s = next
		}
	})
}

// TestReduce_CombatInvariant verifies a state in combat always has someone
// to fight and never more attackers than slots.
func TestReduce_CombatInvariant(t *testing.T) {
	fx := newFixture(t)
	rapid.Check(t, func(rt *rapid.T) {
		s := fx.factory.Build("1")
		for _, a := range rapid.SliceOfN(actionGen(), 1, 40).Draw(rt, "actions") {
			s = fx.reducer.Reduce(s, a)
			if s.InCombat {
				require.Positive(rt, len(s.AttackSlots)+s.LivingActiveMonsters(), "after %s", a.Type())
			}
			require.LessOrEqual(rt, len(s.AttackSlots), s.MaxAttackers)
		}
	})
}

// TestReduce_MoveDuringCombatIsNoop verifies movement never changes a state
// that is in combat.
func TestReduce_MoveDuringCombatIsNoop(t *testing.T) {
	fx := newFixture(t)
	rapid.Check(t, func(rt *rapid.T) {
		s := fx.factory.Build("1")
		for _, a := range rapid.SliceOfN(actionGen(), 0, 20).Draw(rt, "actions") {
			s = fx.reducer.Reduce(s, a)
		}
		if !s.InCombat {
			return
		}
		move := moveGen().Draw(rt, "move")
		assert.Same(rt, s, fx.reducer.Reduce(s, move))
	})
}

var monsterIDs = []string{"m1", "m2", "m3", "m4", "m5", "m6"}

func monsterGen() *rapid.Generator[catalog.Monster] {
	return rapid.Custom(func(t *rapid.T) catalog.Monster {
		id := rapid.SampledFrom(monsterIDs).Draw(t, "id")
		row := rapid.IntRange(380, 399).Draw(t, "row")
		col := rapid.IntRange(190, 210).Draw(t, "col")
		return monster(id, rapid.IntRange(1, 20).Draw(t, "hp"), catalog.Position{Row: row, Col: col})
	})
}

func moveGen() *rapid.Generator[action.Action] {
	return rapid.Custom(func(t *rapid.T) action.Action {
		if rapid.Bool().Draw(t, "absolute") {
			return action.MovePlayer{Position: &catalog.Position{
				Row: rapid.IntRange(-5, 405).Draw(t, "row"),
				Col: rapid.IntRange(-5, 405).Draw(t, "col"),
			}}
		}
		dir := rapid.SampledFrom([]action.Direction{action.Up, action.Down, action.Left, action.Right}).Draw(t, "dir")
		return action.MovePlayer{Direction: dir}
	})
}

// actionGen draws from actions reachable during normal play.
func actionGen() *rapid.Generator[action.Action] {
	id := rapid.SampledFrom(monsterIDs)
	return rapid.OneOf(
		moveGen(),
		rapid.Custom(func(t *rapid.T) action.Action {
			return action.SpawnMonster{Monster: monsterGen().Draw(t, "monster")}
		}),
		rapid.Custom(func(t *rapid.T) action.Action {
			slots := rapid.SliceOfNDistinct(monsterGen(), 1, 6, func(m catalog.Monster) string { return m.ID }).Draw(t, "slots")
			order := []string{state.PlayerTurnID}
			for _, m := range slots {
				order = append(order, m.ID)
			}
			return action.SetCombat{InCombat: true, AttackSlots: slots, TurnOrder: order, CombatTurn: state.Ptr(state.PlayerTurnID)}
		}),
		rapid.Just[action.Action](exitCombat()),
		rapid.Custom(func(t *rapid.T) action.Action {
			return action.RemoveMonster{ID: id.Draw(t, "id")}
		}),
		rapid.Custom(func(t *rapid.T) action.Action {
			return action.UpdateMonsterHP{ID: id.Draw(t, "id"), HP: rapid.IntRange(-3, 20).Draw(t, "hp")}
		}),
		rapid.Custom(func(t *rapid.T) action.Action {
			return action.ToggleRangedMode{Active: rapid.Bool().Draw(t, "active"), TargetID: state.Ptr(id.Draw(t, "id"))}
		}),
		rapid.Just[action.Action](action.AddCombatLog{ID: "log", Message: "strike"}),
		rapid.Custom(func(t *rapid.T) action.Action {
			return action.UpdatePlayerHP{HP: rapid.IntRange(-10, 120).Draw(t, "hp")}
		}),
		rapid.Just[action.Action](action.AddRangedWeapon{ID: "weapon-valkyries-bow-001"}),
		rapid.Custom(func(t *rapid.T) action.Action {
			return action.SetSubGameCompleted{SubGameName: "tesseract", Completed: rapid.Bool().Draw(t, "done")}
		}),
		rapid.Just[action.Action](action.PassTurn{}),
		rapid.Just[action.Action](action.GameOver{}),
		rapid.Just[action.Action](action.SetLevel{LevelID: "2"}),
		rapid.Just[action.Action](action.ResetGame{}),
		rapid.Just[action.Action](action.DropWeapon{ID: "weapon-discos-001"}),
		rapid.Just[action.Action](action.TriggerEffect{Effect: catalog.Effect{Type: catalog.EffectHeal, Value: 10}}),
	)
}
