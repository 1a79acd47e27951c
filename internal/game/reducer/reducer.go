// Package reducer implements the pure game-state transition function.
//
// Reduce never mutates its input and never performs I/O. An invalid or
// guarded action returns the input state unchanged and is reported through
// the logger; side effects that a transition implies (autosave deletion on
// death, for example) belong to the caller.
package reducer

import (
	"go.uber.org/zap"

	"github.com/gregoftheweb/nightland/internal/game/action"
	"github.com/gregoftheweb/nightland/internal/game/catalog"
	"github.com/gregoftheweb/nightland/internal/game/state"
)

// slice handles one domain of actions. It reports whether it recognised the
// action; a recognised but rejected action returns the input state.
type slice func(r *Reducer, s *state.GameState, a action.Action) (*state.GameState, bool)

// sliceReducers run in this order and the first to recognise an action wins.
var sliceReducers = []slice{
	reduceLevel,
	reduceMovement,
	reduceMonsters,
	reduceCombat,
	reduceCombatLog,
	reducePlayer,
	reduceInventory,
	reduceWeapons,
	reduceItems,
	reduceEffects,
	reduceHide,
	reduceUI,
	reduceSave,
}

// Reducer applies actions to game states.
type Reducer struct {
	factory *state.Factory
	catalog *catalog.Catalog
	logger  *zap.Logger
}

// New creates a Reducer. The factory supplies fresh states for RESET_GAME and
// level content for SET_LEVEL.
//
// Precondition: factory and logger must be non-nil.
func New(factory *state.Factory, logger *zap.Logger) *Reducer {
	return &Reducer{
		factory: factory,
		catalog: factory.Catalog(),
		logger:  logger,
	}
}

// Reduce returns the state that results from applying a to s.
//
// Postcondition: s is not modified. When a is rejected or unrecognised the
// returned pointer is s itself.
func (r *Reducer) Reduce(s *state.GameState, a action.Action) *state.GameState {
	for _, reduce := range sliceReducers {
		if next, ok := reduce(r, s, a); ok {
			return next
		}
	}
	r.logger.Warn("unhandled action", zap.String("action", string(a.Type())))
	return s
}

// reject logs a refused transition and returns s unchanged.
func (r *Reducer) reject(s *state.GameState, a action.Action, reason string, fields ...zap.Field) (*state.GameState, bool) {
	r.logger.Debug("action rejected",
		append([]zap.Field{zap.String("action", string(a.Type())), zap.String("reason", reason)}, fields...)...,
	)
	return s, true
}

// with returns a shallow copy of s after applying mutate. mutate may only
// assign fields of the copy; it must never write into a container reachable
// from s.
func with(s *state.GameState, mutate func(n *state.GameState)) (*state.GameState, bool) {
	next := *s
	mutate(&next)
	return &next, true
}
