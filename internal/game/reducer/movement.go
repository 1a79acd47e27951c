package reducer

import (
	"go.uber.org/zap"

	"github.com/gregoftheweb/nightland/internal/game/action"
	"github.com/gregoftheweb/nightland/internal/game/catalog"
	"github.com/gregoftheweb/nightland/internal/game/state"
)

func reduceMovement(r *Reducer, s *state.GameState, a action.Action) (*state.GameState, bool) {
	switch act := a.(type) {
	case action.MovePlayer:
		if s.InCombat {
			return r.reject(s, a, "player cannot move during combat")
		}
		from := s.Player.Position
		var to catalog.Position
		switch {
		case act.Position != nil:
			to = *act.Position
		case act.Direction != "":
			var ok bool
			if to, ok = step(from, act.Direction); !ok {
				return r.reject(s, a, "unknown direction", zap.String("direction", string(act.Direction)))
			}
		default:
			return r.reject(s, a, "neither position nor direction given")
		}
		to.Row = clamp(to.Row, 0, s.GridHeight-1)
		to.Col = clamp(to.Col, 0, s.GridWidth-1)

		return with(s, func(n *state.GameState) {
			n.Player.Position = to
			if d := from.Manhattan(to); d > 0 {
				n.DistanceTraveled = s.DistanceTraveled + d
			}
		})

	case action.UpdateMoveCount:
		return with(s, func(n *state.GameState) { n.MoveCount = act.MoveCount })

	case action.PassTurn:
		return with(s, func(n *state.GameState) {
			n.MoveCount = s.MoveCount + 1
			n.LastAction = string(action.TypePassTurn)
		})
	}
	return s, false
}

func step(p catalog.Position, d action.Direction) (catalog.Position, bool) {
	switch d {
	case action.Up:
		p.Row--
	case action.Down:
		p.Row++
	case action.Left:
		p.Col--
	case action.Right:
		p.Col++
	default:
		return p, false
	}
	return p, true
}
