package reducer

import (
	"slices"

	"go.uber.org/zap"

	"github.com/gregoftheweb/nightland/internal/game/action"
	"github.com/gregoftheweb/nightland/internal/game/catalog"
	"github.com/gregoftheweb/nightland/internal/game/state"
)

func reduceWeapons(r *Reducer, s *state.GameState, a action.Action) (*state.GameState, bool) {
	switch act := a.(type) {
	case action.AddToWeapons:
		if holdsWeapon(s.Player.Weapons, act.Weapon.ID) {
			return r.reject(s, a, "weapon already held", zap.String("weapon_id", act.Weapon.ID))
		}
		return with(s, func(n *state.GameState) {
			n.Player.Weapons = append(slices.Clone(nonNil(s.Player.Weapons)), act.Weapon)
		})

	case action.RemoveFromWeapons:
		if !holdsWeapon(s.Player.Weapons, act.ID) {
			return r.reject(s, a, "weapon not held", zap.String("weapon_id", act.ID))
		}
		return with(s, func(n *state.GameState) {
			n.Player.Weapons = withoutWeapon(s.Player.Weapons, act.ID)
		})

	case action.EquipWeapon:
		if !holdsWeapon(s.Player.Weapons, act.ID) {
			return r.reject(s, a, "weapon not held", zap.String("weapon_id", act.ID))
		}
		return with(s, func(n *state.GameState) {
			weapons := make([]catalog.WeaponRef, len(s.Player.Weapons))
			for i, w := range s.Player.Weapons {
				w.Equipped = w.ID == act.ID
				weapons[i] = w
			}
			n.Player.Weapons = weapons
		})

	case action.AddRangedWeapon:
		if s.Player.OwnsRangedWeapon(act.ID) {
			return s, true
		}
		return with(s, func(n *state.GameState) {
			n.Player.RangedWeaponInventoryIDs = append(slices.Clone(nonNil(s.Player.RangedWeaponInventoryIDs)), act.ID)
		})

	case action.EquipRangedWeapon:
		if !s.Player.OwnsRangedWeapon(act.ID) {
			return r.reject(s, a, "ranged weapon not owned", zap.String("weapon_id", act.ID))
		}
		return with(s, func(n *state.GameState) {
			n.Player.EquippedRangedWeaponID = state.Ptr(act.ID)
		})

	case action.DropWeapon:
		return r.dropWeapon(s, act)

	case action.ToggleWeaponsInventory:
		return with(s, func(n *state.GameState) {
			n.ShowWeaponsInventory = !s.ShowWeaponsInventory
			n.ShowInventory = false
		})
	}
	return s, false
}

// dropWeapon removes a held weapon and leaves a collectible pickup at the
// player's position. The protected starter weapon cannot be dropped.
func (r *Reducer) dropWeapon(s *state.GameState, act action.DropWeapon) (*state.GameState, bool) {
	if act.ID == r.catalog.Game().ProtectedWeaponID {
		return r.reject(s, act, "weapon cannot be dropped", zap.String("weapon_id", act.ID))
	}
	weapon, ok := s.Weapon(act.ID)
	if !ok {
		return r.reject(s, act, "weapon not in catalog", zap.String("weapon_id", act.ID))
	}
	heldMelee := holdsWeapon(s.Player.Weapons, act.ID)
	heldRanged := s.Player.OwnsRangedWeapon(act.ID)
	if !heldMelee && !heldRanged {
		return r.reject(s, act, "weapon not held", zap.String("weapon_id", act.ID))
	}

	pos := s.Player.Position
	pickup := catalog.Item{
		ShortName:   weapon.ShortName,
		Name:        weapon.Name,
		Category:    "weapon",
		Description: weapon.Description,
		Type:        "weapon",
		Position:    &pos,
		Active:      true,
		Collectible: true,
		WeaponID:    weapon.ID,
	}

	return with(s, func(n *state.GameState) {
		if heldMelee {
			n.Player.Weapons = withoutWeapon(s.Player.Weapons, act.ID)
		}
		if heldRanged {
			ids := make([]string, 0, len(s.Player.RangedWeaponInventoryIDs))
			for _, id := range s.Player.RangedWeaponInventoryIDs {
				if id != act.ID {
					ids = append(ids, id)
				}
			}
			n.Player.RangedWeaponInventoryIDs = ids
			if eq := s.Player.EquippedRangedWeaponID; eq != nil && *eq == act.ID {
				n.Player.EquippedRangedWeaponID = nil
			}
		}
		n.Items = append(append([]catalog.Item{}, s.Items...), pickup)
		n.DropSuccess = true
	})
}

func holdsWeapon(weapons []catalog.WeaponRef, id string) bool {
	return slices.ContainsFunc(weapons, func(w catalog.WeaponRef) bool { return w.ID == id })
}

func withoutWeapon(weapons []catalog.WeaponRef, id string) []catalog.WeaponRef {
	out := make([]catalog.WeaponRef, 0, len(weapons))
	for _, w := range weapons {
		if w.ID != id {
			out = append(out, w)
		}
	}
	return out
}
