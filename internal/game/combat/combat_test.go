package combat_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/gregoftheweb/nightland/internal/game/action"
	"github.com/gregoftheweb/nightland/internal/game/catalog"
	"github.com/gregoftheweb/nightland/internal/game/combat"
	"github.com/gregoftheweb/nightland/internal/game/dice"
	"github.com/gregoftheweb/nightland/internal/game/reducer"
	"github.com/gregoftheweb/nightland/internal/game/state"
)

// scripted returns queued values in order, then zeros.
type scripted struct{ vals []int }

func (s *scripted) Intn(n int) int {
	if len(s.vals) == 0 {
		return 0
	}
	v := s.vals[0]
	s.vals = s.vals[1:]
	return min(v, n-1)
}

type fixture struct {
	factory *state.Factory
	reducer *reducer.Reducer
	logger  *zap.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	logger := zaptest.NewLogger(t)
	f := state.NewFactory(cat, logger, state.WithClock(func() time.Time {
		return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	}))
	return &fixture{factory: f, reducer: reducer.New(f, logger), logger: logger}
}

func (fx *fixture) apply(s *state.GameState, actions ...action.Action) *state.GameState {
	for _, a := range actions {
		s = fx.reducer.Reduce(s, a)
	}
	return s
}

// resolver rolls d20 naturals and damage dice from rolls, each given as
// the face value.
func (fx *fixture) resolver(rolls ...int) *combat.Resolver {
	src := &scripted{}
	for _, r := range rolls {
		src.vals = append(src.vals, r-1)
	}
	return combat.NewResolver(dice.NewRoller(src, fx.logger), fx.logger)
}

func monster(id string, hp, initiative int, pos catalog.Position) catalog.Monster {
	return catalog.Monster{
		ID:         id,
		ShortName:  "abhuman",
		Name:       "Abhuman",
		Position:   pos,
		CurrentHP:  hp,
		MaxHP:      hp,
		Attack:     5,
		AC:         12,
		Initiative: initiative,
	}
}

var spawn = catalog.Position{Row: 395, Col: 200}

func adjacent(dr, dc int) catalog.Position {
	return catalog.Position{Row: spawn.Row + dr, Col: spawn.Col + dc}
}

// fight spawns ms next to the player and runs the engagement.
func (fx *fixture) fight(t *testing.T, ms ...catalog.Monster) *state.GameState {
	t.Helper()
	s := fx.factory.Build("1")
	for _, m := range ms {
		s = fx.apply(s, action.SpawnMonster{Monster: m})
	}
	s = fx.apply(s, combat.Engage(s)...)
	require.True(t, s.InCombat)
	return s
}

// TestEngage_OrdersByInitiativeAndQueuesOverflow verifies slots fill by
// initiative and the surplus waits.
func TestEngage_OrdersByInitiativeAndQueuesOverflow(t *testing.T) {
	fx := newFixture(t)
	s := fx.fight(t,
		monster("m1", 10, 3, adjacent(-1, 0)),
		monster("m2", 10, 9, adjacent(0, 1)),
		monster("m3", 10, 5, adjacent(0, -1)),
		monster("m4", 10, 5, adjacent(-1, 1)),
		monster("m5", 10, 1, adjacent(-1, -1)),
		monster("far", 10, 20, adjacent(-5, 0)),
	)

	ids := func(ms []catalog.Monster) []string {
		out := make([]string, 0, len(ms))
		for _, m := range ms {
			out = append(out, m.ID)
		}
		return out
	}
	assert.Equal(t, []string{"m2", "m3", "m4", "m1"}, ids(s.AttackSlots))
	assert.Equal(t, []string{"m5"}, ids(s.WaitingMonsters))
	assert.Equal(t, []string{state.PlayerTurnID, "m2", "m3", "m4", "m1"}, s.TurnOrder)
	assert.Equal(t, state.PlayerTurnID, state.Deref(s.CombatTurn))
	require.NoError(t, state.Validate(s))
}

// TestEngage_HiddenPlayerIgnored verifies a hidden player is not engaged.
func TestEngage_HiddenPlayerIgnored(t *testing.T) {
	fx := newFixture(t)
	s := fx.factory.Build("1")
	s = fx.apply(s,
		action.SpawnMonster{Monster: monster("m1", 10, 3, adjacent(-1, 0))},
		action.UpdatePlayer{Updates: action.PlayerUpdate{IsHidden: state.Ptr(true)}},
	)
	assert.Nil(t, combat.Engage(s))
}

// TestEngage_NobodyAdjacent verifies Engage is a no-op with no neighbours.
func TestEngage_NobodyAdjacent(t *testing.T) {
	fx := newFixture(t)
	s := fx.apply(fx.factory.Build("1"), action.SpawnMonster{Monster: monster("m1", 10, 3, adjacent(-3, 0))})
	assert.Nil(t, combat.Engage(s))
}

// TestPromoteWaiting_FillsFreedSlot verifies a waiting monster steps up when
// a slot holder dies.
func TestPromoteWaiting_FillsFreedSlot(t *testing.T) {
	fx := newFixture(t)
	s := fx.fight(t,
		monster("m1", 10, 9, adjacent(-1, 0)),
		monster("m2", 10, 8, adjacent(0, 1)),
		monster("m3", 10, 7, adjacent(0, -1)),
		monster("m4", 10, 6, adjacent(-1, 1)),
		monster("m5", 10, 5, adjacent(-1, -1)),
	)
	s = fx.apply(s, action.RemoveMonster{ID: "m1"})
	require.Len(t, s.AttackSlots, 3)

	s = fx.apply(s, combat.PromoteWaiting(s)...)
	require.Len(t, s.AttackSlots, 4)
	assert.Equal(t, "m5", s.AttackSlots[3].ID)
	assert.Empty(t, s.WaitingMonsters)
	assert.Contains(t, s.TurnOrder, "m5")
	require.NoError(t, state.Validate(s))

	assert.Nil(t, combat.PromoteWaiting(s))
}

// TestAdvanceTurn_Wraps verifies the turn cycles back to the player.
func TestAdvanceTurn_Wraps(t *testing.T) {
	fx := newFixture(t)
	s := fx.fight(t,
		monster("m1", 10, 9, adjacent(-1, 0)),
		monster("m2", 10, 8, adjacent(0, 1)),
	)
	var seen []string
	for range 4 {
		s = fx.apply(s, combat.AdvanceTurn(s))
		seen = append(seen, state.Deref(s.CombatTurn))
	}
	assert.Equal(t, []string{"m1", "m2", state.PlayerTurnID, "m1"}, seen)

	assert.Nil(t, combat.AdvanceTurn(fx.factory.Build("1")))
}

// TestPlayerAttack_Hit verifies a hit lowers the target's hit points.
func TestPlayerAttack_Hit(t *testing.T) {
	fx := newFixture(t)
	s := fx.fight(t, monster("m1", 10, 5, adjacent(-1, 0)))

	res, acts, err := fx.resolver(15, 6).PlayerAttack(s, "m1")
	require.NoError(t, err)
	assert.Equal(t, combat.Hit, res.Outcome)
	assert.Equal(t, 15+4+2, res.Total)
	assert.Equal(t, 6, res.Damage)
	assert.False(t, res.Killed)

	s = fx.apply(s, acts...)
	require.Len(t, s.AttackSlots, 1)
	assert.Equal(t, 4, s.AttackSlots[0].CurrentHP)
	assert.True(t, s.InCombat)
	require.NotEmpty(t, s.CombatLog)
	assert.Equal(t, "Christos strikes the Abhuman for 6 damage.", s.CombatLog[len(s.CombatLog)-1].Message)
}

// TestPlayerAttack_MissOnLowRoll verifies a low roll misses.
func TestPlayerAttack_MissOnLowRoll(t *testing.T) {
	fx := newFixture(t)
	s := fx.fight(t, monster("m1", 10, 5, adjacent(-1, 0)))

	res, acts, err := fx.resolver(1).PlayerAttack(s, "m1")
	require.NoError(t, err)
	assert.Equal(t, combat.Miss, res.Outcome)
	assert.Zero(t, res.Damage)
	require.Len(t, acts, 1)
	assert.IsType(t, action.AddCombatLog{}, acts[0])
}

// TestPlayerAttack_CriticalKillEndsCombat verifies a natural 20 doubles
// damage and the last kill ends combat.
func TestPlayerAttack_CriticalKillEndsCombat(t *testing.T) {
	fx := newFixture(t)
	s := fx.fight(t, monster("m1", 15, 5, adjacent(-1, 0)))

	res, acts, err := fx.resolver(20, 10).PlayerAttack(s, "m1")
	require.NoError(t, err)
	assert.Equal(t, combat.CriticalHit, res.Outcome)
	assert.Equal(t, 20, res.Damage)
	assert.True(t, res.Killed)

	s = fx.apply(s, acts...)
	assert.False(t, s.InCombat)
	assert.Nil(t, s.CombatTurn)
	assert.Empty(t, s.AttackSlots)
	assert.Empty(t, s.ActiveMonsters)
	assert.Equal(t, 1, s.MonstersKilled)
	require.NoError(t, state.Validate(s))
}

// TestPlayerAttack_Errors verifies the preconditions of a melee strike.
func TestPlayerAttack_Errors(t *testing.T) {
	fx := newFixture(t)
	r := fx.resolver()

	_, _, err := r.PlayerAttack(fx.factory.Build("1"), "m1")
	assert.ErrorIs(t, err, combat.ErrNotInCombat)

	s := fx.fight(t, monster("m1", 10, 5, adjacent(-1, 0)))
	_, _, err = r.PlayerAttack(s, "ghost")
	assert.ErrorIs(t, err, combat.ErrUnknownTarget)

	s = fx.apply(s, combat.AdvanceTurn(s))
	_, _, err = r.PlayerAttack(s, "m1")
	assert.ErrorIs(t, err, combat.ErrOutOfTurn)
}

// TestMonsterAttack_HitAndKill verifies monster damage and the game over it
// causes.
func TestMonsterAttack_HitAndKill(t *testing.T) {
	fx := newFixture(t)
	s := fx.fight(t, monster("m1", 10, 5, adjacent(-1, 0)))
	s = fx.apply(s, combat.AdvanceTurn(s))
	require.Equal(t, "m1", state.Deref(s.CombatTurn))

	res, acts, err := fx.resolver(10, 3).MonsterAttack(s, "m1")
	require.NoError(t, err)
	assert.Equal(t, combat.Hit, res.Outcome)
	assert.Equal(t, 3, res.Damage)
	hit := fx.apply(s, acts...)
	assert.Equal(t, 97, hit.Player.CurrentHP)
	assert.False(t, hit.GameOver)

	dying := fx.apply(s, action.UpdatePlayerHP{HP: 2})
	res, acts, err = fx.resolver(10, 3).MonsterAttack(dying, "m1")
	require.NoError(t, err)
	assert.True(t, res.Killed)
	dead := fx.apply(dying, acts...)
	assert.True(t, dead.GameOver)
	assert.Equal(t, "Abhuman", state.Deref(dead.KillerName))
	assert.False(t, dead.InCombat)
}

// TestMonsterAttack_OutOfTurn verifies a monster cannot act on the
// player's turn.
func TestMonsterAttack_OutOfTurn(t *testing.T) {
	fx := newFixture(t)
	s := fx.fight(t, monster("m1", 10, 5, adjacent(-1, 0)))
	_, _, err := fx.resolver().MonsterAttack(s, "m1")
	assert.ErrorIs(t, err, combat.ErrOutOfTurn)
}

// TestRangedAttack verifies range checks and an out-of-combat kill.
func TestRangedAttack(t *testing.T) {
	fx := newFixture(t)
	s := fx.factory.Build("1")

	_, _, err := fx.resolver().RangedAttack(s)
	assert.ErrorIs(t, err, combat.ErrNoRangedWeapon)

	s = fx.apply(s,
		action.AddRangedWeapon{ID: "weapon-shurikens-001"},
		action.EquipRangedWeapon{ID: "weapon-shurikens-001"},
		action.SpawnMonster{Monster: monster("near", 4, 5, adjacent(-5, 0))},
		action.SpawnMonster{Monster: monster("far", 4, 5, adjacent(-20, 0))},
	)

	_, _, err = fx.resolver().RangedAttack(s)
	assert.ErrorIs(t, err, combat.ErrUnknownTarget)

	far := fx.apply(s, action.ToggleRangedMode{Active: true, TargetID: state.Ptr("far")})
	_, _, err = fx.resolver().RangedAttack(far)
	assert.ErrorIs(t, err, combat.ErrOutOfRange)

	near := fx.apply(s, action.ToggleRangedMode{Active: true, TargetID: state.Ptr("near")})
	res, acts, err := fx.resolver(15, 6).RangedAttack(near)
	require.NoError(t, err)
	assert.Equal(t, 15+4+1, res.Total)
	assert.True(t, res.Killed)

	after := fx.apply(near, acts...)
	_, ok := after.ActiveMonster("near")
	assert.False(t, ok)
	assert.False(t, after.InCombat)
}

// TestValidate_EngagementViolations verifies corrupt layouts are reported.
func TestValidate_EngagementViolations(t *testing.T) {
	fx := newFixture(t)
	s := fx.fight(t, monster("m1", 10, 5, adjacent(-1, 0)))
	require.NoError(t, state.Validate(s))

	bad := *s
	bad.WaitingMonsters = []catalog.Monster{s.AttackSlots[0]}
	bad.TurnOrder = append([]string{"ghost"}, s.TurnOrder...)
	bad.MaxAttackers = 0
	bad.ActiveMonsters = []catalog.Monster{s.AttackSlots[0]}
	bad.ActiveMonsters[0].InCombatSlot = false
	err := state.Validate(&bad)
	require.Error(t, err)
	assert.ErrorContains(t, err, "both slotted and waiting")
	assert.ErrorContains(t, err, `turn order entry "ghost" is neither the player nor an attacker`)
	assert.ErrorContains(t, err, `monster "m1" inCombatSlot=false disagrees with attack slots`)
	assert.ErrorContains(t, err, "exceed maxAttackers")
}

// TestOutcomeFor verifies the outcome tiers.
func TestOutcomeFor(t *testing.T) {
	assert.Equal(t, combat.CriticalHit, combat.OutcomeFor(20, 5, 30))
	assert.Equal(t, combat.Hit, combat.OutcomeFor(10, 12, 12))
	assert.Equal(t, combat.Miss, combat.OutcomeFor(10, 11, 12))
	assert.Equal(t, "critical hit", combat.CriticalHit.String())
}
