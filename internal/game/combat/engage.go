package combat

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/gregoftheweb/nightland/internal/game/action"
	"github.com/gregoftheweb/nightland/internal/game/catalog"
	"github.com/gregoftheweb/nightland/internal/game/state"
)

// Engage pulls living active monsters adjacent to the player into combat.
//
// Newcomers are ordered by initiative (highest first, ties by id) and fill
// free attack slots; the rest join the waiting queue. A hidden player is
// never engaged. Returns nil when nobody new engages.
//
// Postcondition: the SET_COMBAT layout never exceeds s.MaxAttackers slots.
func Engage(s *state.GameState) []action.Action {
	if s.GameOver || s.Player.IsHidden || s.Player.HideActive {
		return nil
	}

	engaged := make(map[string]bool, len(s.AttackSlots)+len(s.WaitingMonsters))
	for _, m := range s.AttackSlots {
		engaged[m.ID] = true
	}
	for _, m := range s.WaitingMonsters {
		engaged[m.ID] = true
	}

	var newcomers []catalog.Monster
	for _, m := range s.ActiveMonsters {
		if engaged[m.ID] || !m.IsAlive() {
			continue
		}
		if m.Position.Chebyshev(s.Player.Position) <= 1 {
			newcomers = append(newcomers, m)
		}
	}
	if len(newcomers) == 0 {
		return nil
	}
	slices.SortFunc(newcomers, func(a, b catalog.Monster) int {
		if c := cmp.Compare(b.Initiative, a.Initiative); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	slots := slices.Clone(s.AttackSlots)
	waiting := slices.Clone(s.WaitingMonsters)
	var slotted []catalog.Monster
	for _, m := range newcomers {
		if len(slots) < s.MaxAttackers {
			m.InCombatSlot = true
			slots = append(slots, m)
			slotted = append(slotted, m)
			continue
		}
		waiting = append(waiting, m)
	}

	turn := state.Ptr(state.PlayerTurnID)
	if s.InCombat && s.CombatTurn != nil {
		turn = state.Ptr(*s.CombatTurn)
	}
	out := []action.Action{action.SetCombat{
		InCombat:        true,
		AttackSlots:     slots,
		WaitingMonsters: nonNil(waiting),
		TurnOrder:       TurnOrder(slots),
		CombatTurn:      turn,
	}}
	for _, m := range slotted {
		out = append(out,
			action.StartCombat{Monster: m},
			action.AddCombatLog{Message: fmt.Sprintf("%s attacks!", m.Name)},
		)
	}
	return out
}

// PromoteWaiting moves living waiting monsters into free attack slots in
// queue order. Returns nil when nothing changes.
func PromoteWaiting(s *state.GameState) []action.Action {
	if !s.InCombat {
		return nil
	}
	free := s.MaxAttackers - len(s.AttackSlots)
	if free <= 0 || len(s.WaitingMonsters) == 0 {
		return nil
	}

	slots := slices.Clone(s.AttackSlots)
	waiting := make([]catalog.Monster, 0, len(s.WaitingMonsters))
	var promoted []catalog.Monster
	for _, m := range s.WaitingMonsters {
		if !m.IsAlive() {
			continue
		}
		if len(slots) < s.MaxAttackers {
			m.InCombatSlot = true
			slots = append(slots, m)
			promoted = append(promoted, m)
			continue
		}
		waiting = append(waiting, m)
	}
	if len(promoted) == 0 && len(waiting) == len(s.WaitingMonsters) {
		return nil
	}
	if len(slots) == 0 {
		return nil
	}

	out := []action.Action{action.SetCombat{
		InCombat:        true,
		AttackSlots:     slots,
		WaitingMonsters: waiting,
		TurnOrder:       TurnOrder(slots),
		CombatTurn:      s.CombatTurn,
	}}
	for _, m := range promoted {
		out = append(out, action.AddCombatLog{Message: fmt.Sprintf("%s steps forward.", m.Name)})
	}
	return out
}

// TurnOrder returns the player followed by the slot holders.
func TurnOrder(slots []catalog.Monster) []string {
	order := make([]string, 0, len(slots)+1)
	order = append(order, state.PlayerTurnID)
	for _, m := range slots {
		order = append(order, m.ID)
	}
	return order
}

// AdvanceTurn passes the turn to the next id in the turn order, wrapping at
// the end. Returns nil outside combat.
func AdvanceTurn(s *state.GameState) action.Action {
	if !s.InCombat || len(s.TurnOrder) == 0 {
		return nil
	}
	next := s.TurnOrder[0]
	if s.CombatTurn != nil {
		if i := slices.Index(s.TurnOrder, *s.CombatTurn); i >= 0 {
			next = s.TurnOrder[(i+1)%len(s.TurnOrder)]
		}
	}
	return action.UpdateTurn{TurnOrder: slices.Clone(s.TurnOrder), CombatTurn: state.Ptr(next)}
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
