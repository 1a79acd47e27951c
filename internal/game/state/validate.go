package state

import (
	"errors"
	"fmt"
)

// Validate checks the cross-field invariants a well-formed GameState holds
// between transitions. It is a diagnostic: callers log the result rather
// than reject the state.
func Validate(s *GameState) error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if _, ok := s.Levels[s.CurrentLevelID]; !ok {
		add("currentLevelId %q missing from levels", s.CurrentLevelID)
	}
	if s.Level.ID != s.CurrentLevelID {
		add("level.id %q does not match currentLevelId %q", s.Level.ID, s.CurrentLevelID)
	}

	p := s.Player.Position
	if p.Row < 0 || p.Row >= s.GridHeight || p.Col < 0 || p.Col >= s.GridWidth {
		add("player position (%d,%d) outside %dx%d grid", p.Row, p.Col, s.GridWidth, s.GridHeight)
	}
	if s.Player.CurrentHP < 0 || s.Player.CurrentHP > s.Player.MaxHP {
		add("player hp %d outside [0,%d]", s.Player.CurrentHP, s.Player.MaxHP)
	}
	if s.Player.EquippedRangedWeaponID != nil && !s.Player.OwnsRangedWeapon(*s.Player.EquippedRangedWeaponID) {
		add("equipped ranged weapon %q is not owned", *s.Player.EquippedRangedWeaponID)
	}
	seen := make(map[string]bool, len(s.Player.Inventory))
	for _, it := range s.Player.Inventory {
		if seen[it.ID] {
			add("duplicate inventory item %q", it.ID)
		}
		seen[it.ID] = true
	}

	if s.InCombat && len(s.AttackSlots) == 0 && s.LivingActiveMonsters() == 0 {
		add("inCombat with no attackers and no living active monsters")
	}
	if len(s.AttackSlots) > s.MaxAttackers {
		add("%d attack slots exceed maxAttackers %d", len(s.AttackSlots), s.MaxAttackers)
	}
	slotted := make(map[string]bool, len(s.AttackSlots))
	for _, m := range s.AttackSlots {
		if slotted[m.ID] {
			add("monster %q holds two slots", m.ID)
		}
		slotted[m.ID] = true
	}
	for _, m := range s.WaitingMonsters {
		if slotted[m.ID] {
			add("monster %q is both slotted and waiting", m.ID)
		}
	}
	if s.InCombat {
		for _, m := range s.ActiveMonsters {
			if m.InCombatSlot != slotted[m.ID] {
				add("monster %q inCombatSlot=%t disagrees with attack slots", m.ID, m.InCombatSlot)
			}
		}
	}
	inOrder := make(map[string]bool, len(s.TurnOrder))
	for _, id := range s.TurnOrder {
		if id != PlayerTurnID && !slotted[id] {
			add("turn order entry %q is neither the player nor an attacker", id)
		}
		inOrder[id] = true
	}
	if s.CombatTurn != nil && !inOrder[*s.CombatTurn] {
		add("combatTurn %q not in turn order", *s.CombatTurn)
	}
	if s.TargetedMonsterID != nil {
		if _, ok := s.ActiveMonster(*s.TargetedMonsterID); !ok {
			add("targeted monster %q is not active", *s.TargetedMonsterID)
		}
	}
	return errors.Join(errs...)
}
