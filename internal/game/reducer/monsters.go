package reducer

import (
	"go.uber.org/zap"

	"github.com/gregoftheweb/nightland/internal/game/action"
	"github.com/gregoftheweb/nightland/internal/game/catalog"
	"github.com/gregoftheweb/nightland/internal/game/state"
)

func reduceMonsters(r *Reducer, s *state.GameState, a action.Action) (*state.GameState, bool) {
	switch act := a.(type) {
	case action.MoveMonster:
		active, found := mapMonsters(s.ActiveMonsters, act.ID, func(m catalog.Monster) catalog.Monster {
			m.Position = act.Position
			return m
		})
		if !found {
			return r.reject(s, a, "monster is not active", zap.String("monster_id", act.ID))
		}
		return with(s, func(n *state.GameState) { n.ActiveMonsters = active })

	case action.SpawnMonster:
		if act.Monster.ID == "" {
			return r.reject(s, a, "monster has no id")
		}
		if hasMonster(s.ActiveMonsters, act.Monster.ID) {
			return r.reject(s, a, "monster id already active", zap.String("monster_id", act.Monster.ID))
		}
		return with(s, func(n *state.GameState) {
			n.ActiveMonsters = append(append(emptyMonsters(), s.ActiveMonsters...), act.Monster.Clone())
		})

	case action.RemoveMonster:
		active, inActive := withoutMonster(s.ActiveMonsters, act.ID)
		slots, inSlots := withoutMonster(s.AttackSlots, act.ID)
		waiting, inWaiting := withoutMonster(s.WaitingMonsters, act.ID)
		if !inActive && !inSlots && !inWaiting {
			return r.reject(s, a, "unknown monster", zap.String("monster_id", act.ID))
		}
		return with(s, func(n *state.GameState) {
			n.ActiveMonsters = active
			n.AttackSlots = slots
			n.WaitingMonsters = waiting
			n.MonstersKilled = s.MonstersKilled + 1

			order := make([]string, 0, len(s.TurnOrder))
			for _, id := range s.TurnOrder {
				if id != act.ID {
					order = append(order, id)
				}
			}
			n.TurnOrder = order
			if s.CombatTurn != nil && *s.CombatTurn == act.ID {
				n.CombatTurn = nil
				if len(order) > 0 {
					n.CombatTurn = state.Ptr(state.PlayerTurnID)
				}
			}
			// Ranged mode survives so the player can pick the next target.
			if s.TargetedMonsterID != nil && *s.TargetedMonsterID == act.ID {
				n.TargetedMonsterID = nil
			}
			endCombatIfEmpty(n)
		})

	case action.UpdateActiveMonsters:
		return with(s, func(n *state.GameState) {
			n.ActiveMonsters = nonNil(act.ActiveMonsters)
			if n.TargetedMonsterID != nil && !hasMonster(n.ActiveMonsters, *n.TargetedMonsterID) {
				n.TargetedMonsterID = nil
			}
			endCombatIfEmpty(n)
		})

	case action.UpdateWaitingMonsters:
		return with(s, func(n *state.GameState) { n.WaitingMonsters = nonNil(act.WaitingMonsters) })

	case action.AwakenGreatPower:
		awaken := func(in []catalog.GreatPower) ([]catalog.GreatPower, bool) {
			out := make([]catalog.GreatPower, len(in))
			found := false
			for i, g := range in {
				if g.ID == act.GreatPowerID {
					g.Awakened = true
					found = true
				}
				out[i] = g
			}
			return out, found
		}
		levelPowers, inLevel := awaken(s.Level.GreatPowers)
		powers, inState := awaken(s.GreatPowers)
		if !inLevel && !inState {
			return r.reject(s, a, "unknown great power", zap.String("great_power_id", act.GreatPowerID))
		}
		return with(s, func(n *state.GameState) {
			n.Level.GreatPowers = levelPowers
			n.GreatPowers = powers
		})
	}
	return s, false
}
