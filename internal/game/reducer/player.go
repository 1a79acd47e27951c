package reducer

import (
	"go.uber.org/zap"

	"github.com/gregoftheweb/nightland/internal/game/action"
	"github.com/gregoftheweb/nightland/internal/game/state"
)

func reducePlayer(r *Reducer, s *state.GameState, a action.Action) (*state.GameState, bool) {
	switch act := a.(type) {
	case action.UpdatePlayer:
		p := act.Updates.Apply(s.Player)
		if act.Updates.Position != nil {
			if s.InCombat {
				r.logger.Debug("ignoring player position during combat", zap.String("action", string(a.Type())))
				p.Position = s.Player.Position
			} else {
				p.Position.Row = clamp(p.Position.Row, 0, s.GridHeight-1)
				p.Position.Col = clamp(p.Position.Col, 0, s.GridWidth-1)
			}
		}
		p.CurrentHP = clamp(p.CurrentHP, 0, p.MaxHP)
		return with(s, func(n *state.GameState) { n.Player = p })

	case action.UpdatePlayerHP:
		return with(s, func(n *state.GameState) { n.Player.CurrentHP = clamp(act.HP, 0, s.Player.MaxHP) })

	case action.ResetHP:
		return with(s, func(n *state.GameState) { n.Player.CurrentHP = clamp(act.HP, 0, s.Player.MaxHP) })

	case action.UpdateSelfHealCounter:
		return with(s, func(n *state.GameState) { n.SelfHealTurnCounter = act.Counter })
	}
	return s, false
}
