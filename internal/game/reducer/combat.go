package reducer

import (
	"slices"

	"go.uber.org/zap"

	"github.com/gregoftheweb/nightland/internal/game/action"
	"github.com/gregoftheweb/nightland/internal/game/catalog"
	"github.com/gregoftheweb/nightland/internal/game/state"
)

const (
	defaultDeathMessage = "You have been defeated."
	defaultKillerName   = "unknown horror"
)

func reduceCombat(r *Reducer, s *state.GameState, a action.Action) (*state.GameState, bool) {
	switch act := a.(type) {
	case action.SetCombat:
		return r.setCombat(s, act)

	case action.StartCombat:
		if len(s.AttackSlots) == 0 && s.LivingActiveMonsters() == 0 {
			return r.reject(s, a, "no combatants to engage")
		}
		return with(s, func(n *state.GameState) {
			n.InCombat = true
			n.ActiveMonsters, _ = mapMonsters(s.ActiveMonsters, act.Monster.ID, markSlotted(true))
		})

	case action.UpdateTurn:
		order := trimTurnOrder(act.TurnOrder, s.AttackSlots)
		return with(s, func(n *state.GameState) {
			n.TurnOrder = order
			n.CombatTurn = turnWithin(act.CombatTurn, order)
		})

	case action.UpdateMonsterHP:
		hp := max(0, act.HP)
		setHP := func(m catalog.Monster) catalog.Monster {
			m.CurrentHP = hp
			return m
		}
		active, inActive := mapMonsters(s.ActiveMonsters, act.ID, setHP)
		slots, inSlots := mapMonsters(s.AttackSlots, act.ID, setHP)
		if !inActive && !inSlots {
			return r.reject(s, a, "unknown monster", zap.String("monster_id", act.ID))
		}
		return with(s, func(n *state.GameState) {
			n.ActiveMonsters = active
			n.AttackSlots = slots
			endCombatIfEmpty(n)
		})

	case action.UpdateMonster:
		active, inActive := mapMonsters(s.ActiveMonsters, act.ID, act.Updates.Apply)
		slots, inSlots := mapMonsters(s.AttackSlots, act.ID, act.Updates.Apply)
		if !inActive && !inSlots {
			return r.reject(s, a, "unknown monster", zap.String("monster_id", act.ID))
		}
		return with(s, func(n *state.GameState) {
			n.ActiveMonsters = active
			n.AttackSlots = slots
			endCombatIfEmpty(n)
		})

	case action.GameOver:
		return with(s, func(n *state.GameState) {
			n.GameOver = true
			n.GameOverMessage = state.Ptr(orDefault(act.Message, defaultDeathMessage))
			n.KillerName = state.Ptr(orDefault(act.KillerName, defaultKillerName))
			n.SuppressDeathDialog = act.SuppressDeathDialog != nil && *act.SuppressDeathDialog
			clearCombat(n)
		})

	case action.ResetGame:
		return r.factory.Build(r.catalog.Game().DefaultLevelID), true
	}
	return s, false
}

// setCombat installs an engagement layout or ends combat.
//
// Ranged mode and its target are cleared on entry, and on exit when no
// monster remains; on exit with survivors (the player fled) they are kept.
// Turn order entries without a slot are dropped and a combatTurn outside
// the trimmed order falls back to the player.
func (r *Reducer) setCombat(s *state.GameState, act action.SetCombat) (*state.GameState, bool) {
	living := s.LivingActiveMonsters()
	if act.InCombat && len(act.AttackSlots) == 0 && living == 0 {
		return r.reject(s, act, "cannot enter combat without combatants")
	}

	slots := append(emptyMonsters(), act.AttackSlots...)
	waiting := nonNil(act.WaitingMonsters)
	if len(slots) > s.MaxAttackers {
		r.logger.Debug("attack slots exceed maxAttackers, queueing overflow",
			zap.Int("slots", len(slots)),
			zap.Int("max_attackers", s.MaxAttackers),
		)
		overflow := slots[s.MaxAttackers:]
		slots = slots[:s.MaxAttackers:s.MaxAttackers]
		waiting = append(append(emptyMonsters(), overflow...), waiting...)
	}

	hasRemaining := len(act.AttackSlots) > 0 || living > 0
	clearRanged := act.InCombat || !hasRemaining
	order := trimTurnOrder(act.TurnOrder, slots)

	return with(s, func(n *state.GameState) {
		n.InCombat = act.InCombat
		n.AttackSlots = slots
		n.WaitingMonsters = waiting
		n.TurnOrder = order
		n.CombatTurn = turnWithin(act.CombatTurn, order)
		if act.InCombat {
			n.CombatLog = nonNil(s.CombatLog)
		} else {
			n.CombatLog = []state.CombatLogEntry{}
		}
		if clearRanged {
			n.RangedAttackMode = false
			n.TargetedMonsterID = nil
		}

		active := make([]catalog.Monster, len(s.ActiveMonsters))
		for i, m := range s.ActiveMonsters {
			m.InCombatSlot = act.InCombat && hasMonster(slots, m.ID)
			active[i] = m
		}
		n.ActiveMonsters = active
	})
}

// trimTurnOrder drops ids of monsters that did not get a slot.
func trimTurnOrder(order []string, slots []catalog.Monster) []string {
	out := make([]string, 0, len(order))
	for _, id := range order {
		if id == state.PlayerTurnID || hasMonster(slots, id) {
			out = append(out, id)
		}
	}
	return out
}

// turnWithin returns turn when it names an entry of order. Otherwise the
// turn falls back to the player, or to nil when the player is not in order.
func turnWithin(turn *string, order []string) *string {
	if turn == nil {
		return nil
	}
	if slices.Contains(order, *turn) {
		return state.Ptr(*turn)
	}
	if slices.Contains(order, state.PlayerTurnID) {
		return state.Ptr(state.PlayerTurnID)
	}
	return nil
}

func clearCombat(n *state.GameState) {
	n.InCombat = false
	n.CombatTurn = nil
	n.ActiveMonsters = emptyMonsters()
	n.AttackSlots = emptyMonsters()
	n.WaitingMonsters = emptyMonsters()
	n.TurnOrder = []string{}
	n.CombatLog = []state.CombatLogEntry{}
	n.RangedAttackMode = false
	n.TargetedMonsterID = nil
}

// endCombatIfEmpty ends combat once no attacker holds a slot and no active
// monster is alive. The exit matches SET_COMBAT's except for ranged mode,
// which the caller owns.
func endCombatIfEmpty(n *state.GameState) {
	if !n.InCombat || len(n.AttackSlots) > 0 || n.LivingActiveMonsters() > 0 {
		return
	}
	n.InCombat = false
	n.CombatTurn = nil
	n.TurnOrder = []string{}
	n.AttackSlots = emptyMonsters()
	n.WaitingMonsters = emptyMonsters()
	n.CombatLog = []state.CombatLogEntry{}
	active := make([]catalog.Monster, len(n.ActiveMonsters))
	for i, m := range n.ActiveMonsters {
		m.InCombatSlot = false
		active[i] = m
	}
	n.ActiveMonsters = active
}

func markSlotted(v bool) func(catalog.Monster) catalog.Monster {
	return func(m catalog.Monster) catalog.Monster {
		m.InCombatSlot = v
		return m
	}
}

func orDefault(p *string, def string) string {
	if p == nil || *p == "" {
		return def
	}
	return *p
}
