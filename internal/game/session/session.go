package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gregoftheweb/nightland/internal/game/action"
	"github.com/gregoftheweb/nightland/internal/game/combat"
	"github.com/gregoftheweb/nightland/internal/game/state"
	"github.com/gregoftheweb/nightland/internal/game/world"
	"github.com/gregoftheweb/nightland/internal/store"
)

var (
	// ErrGameOver is returned for any intent after the player has died.
	ErrGameOver = errors.New("game is over")
	// ErrInCombat is returned when the player tries to walk away from a fight.
	ErrInCombat = errors.New("cannot move during combat")
	// ErrBlocked is returned when a move leaves the player where they stood.
	ErrBlocked = errors.New("move blocked")
)

// Option configures a Session.
type Option func(*Session)

// WithClock overrides the clock used for object cooldowns.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// Session turns player intents into turns. Each intent is one player turn
// followed by the world's answer: object triggers, great powers, wandering
// spawns, monster movement, engagement and monster attacks until the turn
// comes back to the player.
type Session struct {
	store  *store.Store
	combat *combat.Resolver
	world  *world.Interactions
	logger *zap.Logger
	now    func() time.Time

	// mu serializes intents so a turn is never interleaved with another.
	mu sync.Mutex
}

// New creates a Session.
//
// Precondition: every argument must be non-nil.
func New(st *store.Store, resolver *combat.Resolver, interactions *world.Interactions, logger *zap.Logger, opts ...Option) *Session {
	s := &Session{
		store:  st,
		combat: resolver,
		world:  interactions,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current game state.
func (s *Session) State() *state.GameState { return s.store.State() }

// Move steps the player one tile and plays out the turn.
func (s *Session) Move(ctx context.Context, dir action.Direction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.store.State()
	if cur.GameOver {
		return ErrGameOver
	}
	if cur.InCombat {
		return ErrInCombat
	}
	next := s.store.Dispatch(ctx, action.MovePlayer{Direction: dir})
	if next.Player.Position == cur.Player.Position {
		return ErrBlocked
	}
	if cur.Player.IsHidden && cur.Player.HideTurns == 0 {
		next = s.store.Dispatch(ctx, action.ClearHide{})
	}
	s.store.DispatchAll(ctx, s.world.Pickup(next)...)
	s.afterPlayerTurn(ctx, true)
	return nil
}

// Attack strikes an engaged monster in melee.
func (s *Session) Attack(ctx context.Context, targetID string) (combat.AttackResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.store.State()
	if cur.GameOver {
		return combat.AttackResult{}, ErrGameOver
	}
	res, actions, err := s.combat.PlayerAttack(cur, targetID)
	if err != nil {
		return res, err
	}
	s.store.DispatchAll(ctx, actions...)
	s.afterPlayerTurn(ctx, true)
	return res, nil
}

// RangedAttack fires the equipped ranged weapon at the targeted monster.
func (s *Session) RangedAttack(ctx context.Context) (combat.AttackResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.store.State()
	if cur.GameOver {
		return combat.AttackResult{}, ErrGameOver
	}
	res, actions, err := s.combat.RangedAttack(cur)
	if err != nil {
		return res, err
	}
	s.store.DispatchAll(ctx, actions...)
	s.afterPlayerTurn(ctx, true)
	return res, nil
}

// Pass spends the player's turn without acting.
func (s *Session) Pass(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.store.State()
	if cur.GameOver {
		return ErrGameOver
	}
	if cur.InCombat && (cur.CombatTurn == nil || *cur.CombatTurn != state.PlayerTurnID) {
		return combat.ErrOutOfTurn
	}
	s.store.Dispatch(ctx, action.PassTurn{})
	s.afterPlayerTurn(ctx, false)
	return nil
}

// afterPlayerTurn advances the clock and lets the world respond.
//
// Precondition: s.mu must be held.
func (s *Session) afterPlayerTurn(ctx context.Context, countMove bool) {
	s.tick(ctx, countMove)

	st := s.store.State()
	if st.GameOver {
		return
	}
	if st.InCombat {
		s.store.DispatchAll(ctx, combat.PromoteWaiting(st)...)
		if a := combat.AdvanceTurn(s.store.State()); a != nil {
			s.store.Dispatch(ctx, a)
		}
	} else {
		s.worldTurn(ctx)
	}
	s.monsterTurns(ctx)
}

func (s *Session) tick(ctx context.Context, countMove bool) {
	if countMove {
		s.store.Dispatch(ctx, action.UpdateMoveCount{MoveCount: s.store.State().MoveCount + 1})
	}
	p := s.store.State().Player
	if p.HideTurns > 0 {
		s.store.Dispatch(ctx, action.DecrementCloakingTurns{})
	}
	if p.HideUnlocked {
		s.store.Dispatch(ctx, action.UpdateHideState{})
	}
}

func (s *Session) worldTurn(ctx context.Context) {
	triggered, err := s.world.TriggerObjects(s.store.State(), s.now())
	if err != nil {
		s.logger.Warn("object trigger failed", zap.Error(err))
	}
	s.store.DispatchAll(ctx, triggered...)
	s.store.DispatchAll(ctx, s.world.AwakenGreatPowers(s.store.State())...)
	s.store.DispatchAll(ctx, s.world.SpawnWanderers(s.store.State())...)
	s.store.DispatchAll(ctx, s.world.MoveMonsters(s.store.State())...)
	s.store.DispatchAll(ctx, combat.Engage(s.store.State())...)
}

// monsterTurns lets each slot holder attack in turn order until the turn
// returns to the player, combat ends or the player dies.
func (s *Session) monsterTurns(ctx context.Context) {
	limit := len(s.store.State().TurnOrder) + 1
	for range limit {
		st := s.store.State()
		if st.GameOver || !st.InCombat || st.CombatTurn == nil || *st.CombatTurn == state.PlayerTurnID {
			return
		}
		id := *st.CombatTurn
		if _, actions, err := s.combat.MonsterAttack(st, id); err != nil {
			s.logger.Debug("monster turn skipped", zap.String("monster_id", id), zap.Error(err))
		} else {
			s.store.DispatchAll(ctx, actions...)
		}
		st = s.store.State()
		if st.GameOver {
			return
		}
		if a := combat.AdvanceTurn(st); a != nil {
			s.store.Dispatch(ctx, a)
		}
	}
}
