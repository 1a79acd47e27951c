package reducer

import (
	"github.com/gregoftheweb/nightland/internal/game/action"
	"github.com/gregoftheweb/nightland/internal/game/state"
)

func reduceCombatLog(_ *Reducer, s *state.GameState, a action.Action) (*state.GameState, bool) {
	switch act := a.(type) {
	case action.AddCombatLog:
		entry := state.CombatLogEntry{ID: act.ID, Message: act.Message, Turn: s.MoveCount}
		return with(s, func(n *state.GameState) {
			n.CombatLog = append(append([]state.CombatLogEntry{}, s.CombatLog...), entry)
		})
	case action.ClearCombatLog:
		return with(s, func(n *state.GameState) { n.CombatLog = []state.CombatLogEntry{} })
	}
	return s, false
}
