package reducer

import (
	"github.com/gregoftheweb/nightland/internal/game/action"
	"github.com/gregoftheweb/nightland/internal/game/state"
)

const (
	maxHideCharge     = 10
	hideRechargeTurns = 5
)

func reduceHide(r *Reducer, s *state.GameState, a action.Action) (*state.GameState, bool) {
	p := s.Player
	switch a.(type) {
	case action.ClearHide:
		return with(s, func(n *state.GameState) { n.Player.IsHidden = false })

	case action.DecrementCloakingTurns:
		turns := max(0, p.HideTurns-1)
		return with(s, func(n *state.GameState) {
			n.Player.HideTurns = turns
			n.Player.IsHidden = turns > 0
		})

	case action.ToggleHide:
		if !p.HideUnlocked {
			return r.reject(s, a, "hide ability locked")
		}
		if p.HideActive {
			return with(s, func(n *state.GameState) { n.Player.HideActive = false })
		}
		if p.HideChargeTurns <= 0 {
			return r.reject(s, a, "hide ability has no charge")
		}
		return with(s, func(n *state.GameState) { n.Player.HideActive = true })

	case action.UpdateHideState:
		if !p.HideUnlocked {
			return r.reject(s, a, "hide ability locked")
		}
		return with(s, func(n *state.GameState) {
			switch {
			case p.HideActive:
				charge := max(0, p.HideChargeTurns-1)
				n.Player.HideChargeTurns = charge
				n.Player.HideActive = charge > 0
			case p.HideChargeTurns < maxHideCharge:
				progress := p.HideRechargeProgressTurns + 1
				if progress >= hideRechargeTurns {
					n.Player.HideChargeTurns = p.HideChargeTurns + 1
					progress = 0
				}
				n.Player.HideRechargeProgressTurns = progress
			default:
				n.Player.HideRechargeProgressTurns = 0
			}
		})

	case action.PlayerJauntRequested:
		if !p.CanJaunt {
			return r.reject(s, a, "jaunt ability locked")
		}
		// The jaunt itself is resolved by the caller through MOVE_PLAYER and
		// ADD_TELEPORT_FLASH.
		return s, true
	}
	return s, false
}
