// Package effects turns object and item effects into actions. Deterministic
// effects pass through as TRIGGER_EFFECT; swarm and spawn effects are
// placed here with dice so the reducer never draws random numbers.
package effects

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gregoftheweb/nightland/internal/game/action"
	"github.com/gregoftheweb/nightland/internal/game/catalog"
	"github.com/gregoftheweb/nightland/internal/game/dice"
	"github.com/gregoftheweb/nightland/internal/game/state"
)

const (
	// spawnVariance is the extra scatter, in tiles, applied on each axis.
	spawnVariance     = 5
	defaultSpawnRange = 3
)

var (
	// ErrMisconfigured is returned for a spawning effect missing its monster
	// type, count or range.
	ErrMisconfigured = errors.New("effect misconfigured")
	// ErrUnknownMonster is returned when a spawning effect names a monster
	// kind the catalog does not define.
	ErrUnknownMonster = errors.New("unknown monster type")
)

// Resolver resolves effects against a game state.
type Resolver struct {
	catalog *catalog.Catalog
	roller  *dice.Roller
	logger  *zap.Logger
	newID   func() string
}

// New creates a Resolver.
//
// Precondition: cat, roller and logger must be non-nil.
func New(cat *catalog.Catalog, roller *dice.Roller, logger *zap.Logger) *Resolver {
	return &Resolver{catalog: cat, roller: roller, logger: logger, newID: uuid.NewString}
}

// Resolve returns the actions that apply e, triggered at pos. A nil pos
// means the player's position.
func (r *Resolver) Resolve(s *state.GameState, e catalog.Effect, pos *catalog.Position) ([]action.Action, error) {
	origin := s.Player.Position
	if pos != nil {
		origin = *pos
	}
	switch e.Type {
	case catalog.EffectSwarm:
		if e.MonsterType == "" || e.Count <= 0 || e.Range <= 0 {
			return nil, fmt.Errorf("%w: swarm needs monster_type, count and range", ErrMisconfigured)
		}
		return r.spawn(s, e.MonsterType, e.Count, e.Range, origin, fmt.Sprintf("A swarm of %ss emerges!", e.MonsterType))

	case catalog.EffectSpawn:
		if e.MonsterType == "" {
			return nil, fmt.Errorf("%w: spawn needs monster_type", ErrMisconfigured)
		}
		count, rng := max(e.Count, 1), e.Range
		if rng <= 0 {
			rng = defaultSpawnRange
		}
		return r.spawn(s, e.MonsterType, count, rng, origin, "")
	}
	return []action.Action{action.TriggerEffect{Effect: e, Position: &origin}}, nil
}

// ResolveAll resolves effects in order and concatenates their actions. It
// stops at the first failing effect.
func (r *Resolver) ResolveAll(s *state.GameState, es []catalog.Effect, pos *catalog.Position) ([]action.Action, error) {
	var out []action.Action
	for _, e := range es {
		acts, err := r.Resolve(s, e, pos)
		if err != nil {
			return nil, fmt.Errorf("resolving %s effect: %w", e.Type, err)
		}
		out = append(out, acts...)
	}
	return out, nil
}

func (r *Resolver) spawn(s *state.GameState, kind string, count, rng int, origin catalog.Position, message string) ([]action.Action, error) {
	t, ok := r.catalog.MonsterTemplate(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMonster, kind)
	}
	out := make([]action.Action, 0, count+1)
	for range count {
		at := r.place(s, origin, rng)
		m := t.Instantiate(fmt.Sprintf("%s-%s", t.ShortName, r.newID()), at)
		out = append(out, action.SpawnMonster{Monster: m})
		r.logger.Debug("monster spawned",
			zap.String("monster_id", m.ID),
			zap.Int("row", at.Row),
			zap.Int("col", at.Col),
		)
	}
	if message != "" {
		out = append(out, action.AddCombatLog{Message: message})
	}
	r.logger.Info("spawn effect resolved",
		zap.String("monster_type", kind),
		zap.Int("count", count),
	)
	return out, nil
}

// place picks a point up to rng tiles from origin at a random bearing,
// scatters it by up to spawnVariance on each axis and clamps it to the
// grid.
func (r *Resolver) place(s *state.GameState, origin catalog.Position, rng int) catalog.Position {
	angle := float64(r.roller.Intn(360)) * math.Pi / 180
	dist := float64(r.roller.Intn(rng + 1))
	row := origin.Row + int(math.Round(math.Sin(angle)*dist)) + r.roller.Intn(2*spawnVariance) - spawnVariance
	col := origin.Col + int(math.Round(math.Cos(angle)*dist)) + r.roller.Intn(2*spawnVariance) - spawnVariance
	return catalog.Position{
		Row: min(max(row, 0), s.GridHeight-1),
		Col: min(max(col, 0), s.GridWidth-1),
	}
}
