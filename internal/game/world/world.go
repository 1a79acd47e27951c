// Package world decides what the board does around the player between
// turns: pickups, object triggers, roaming monsters, wandering spawns and
// great powers. Like the combat package it reads a GameState and answers
// with actions.
package world

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gregoftheweb/nightland/internal/game/action"
	"github.com/gregoftheweb/nightland/internal/game/catalog"
	"github.com/gregoftheweb/nightland/internal/game/dice"
	"github.com/gregoftheweb/nightland/internal/game/effects"
	"github.com/gregoftheweb/nightland/internal/game/state"
)

const (
	// objectCooldown is the minimum time between two triggers of the same
	// object.
	objectCooldown = 50 * time.Second
	dialogMs       = 3000
)

// Interactions produces world-driven actions.
type Interactions struct {
	catalog *catalog.Catalog
	effects *effects.Resolver
	roller  *dice.Roller
	logger  *zap.Logger
	newID   func() string
}

// New creates an Interactions.
//
// Precondition: every argument must be non-nil.
func New(cat *catalog.Catalog, eff *effects.Resolver, roller *dice.Roller, logger *zap.Logger) *Interactions {
	return &Interactions{catalog: cat, effects: eff, roller: roller, logger: logger, newID: uuid.NewString}
}

// Pickup collects the first active collectible item under the player.
// Weapons go to the weapon list (and the ranged list when ranged); other
// items go to the inventory under a fresh id.
func (w *Interactions) Pickup(s *state.GameState) []action.Action {
	pos := s.Player.Position
	var found *catalog.Item
	for i := range s.Items {
		it := &s.Items[i]
		if it.Active && it.Collectible && it.Position != nil && covers(*it.Position, it.Size, pos) {
			found = it
			break
		}
	}
	if found == nil {
		return nil
	}
	it := *found
	p := s.Player

	var out []action.Action
	if it.Type == "weapon" {
		weapon, ok := s.Weapon(it.WeaponID)
		if !ok {
			w.logger.Warn("board item references unknown weapon",
				zap.String("item", it.ShortName),
				zap.String("weapon_id", it.WeaponID),
			)
			return nil
		}
		for _, ref := range p.Weapons {
			if ref.ID == weapon.ID {
				return []action.Action{dialog(fmt.Sprintf("You already carry the %s.", weapon.Name))}
			}
		}
		if p.MaxWeaponsSize > 0 && len(p.Weapons) >= p.MaxWeaponsSize {
			return []action.Action{dialog(fmt.Sprintf("Weapon inventory is full! Cannot pick up %s.", it.Name))}
		}
		out = append(out, action.AddToWeapons{Weapon: catalog.WeaponRef{ID: weapon.ID}})
		if weapon.IsRanged() {
			out = append(out, action.AddRangedWeapon{ID: weapon.ID})
		}
		out = append(out, dialog(fmt.Sprintf("Picked up %s!", weapon.Name)))
	} else {
		if p.MaxInventorySize > 0 && len(p.Inventory) >= p.MaxInventorySize {
			return []action.Action{dialog(fmt.Sprintf("Inventory is full! Cannot pick up %s.", it.Name))}
		}
		held := it.Clone()
		held.ID = fmt.Sprintf("%s-%s", it.ShortName, w.newID())
		held.Position = nil
		held.Active = true
		out = append(out,
			action.AddToInventory{Item: held},
			dialog(fmt.Sprintf("Picked up %s!", it.Name)),
		)
	}
	out = append(out, action.RemoveItemFromGameboard{ShortName: it.ShortName, Position: *it.Position})
	w.logger.Debug("item collected", zap.String("item", it.ShortName))
	return out
}

// TriggerObjects fires the effects of the active object under the player,
// at most once per objectCooldown.
func (w *Interactions) TriggerObjects(s *state.GameState, now time.Time) ([]action.Action, error) {
	pos := s.Player.Position
	for _, o := range s.Objects {
		if !o.Active || len(o.Effects) == 0 || !o.Covers(pos) {
			continue
		}
		if now.Sub(time.UnixMilli(o.LastTrigger)) <= objectCooldown {
			return nil, nil
		}
		out, err := w.effects.ResolveAll(s, o.Effects, &pos)
		if err != nil {
			return nil, fmt.Errorf("object %q: %w", o.ShortName, err)
		}
		if msg := objectMessage(o); msg != "" {
			out = append(out, dialog(msg))
		}
		out = append(out, action.UpdateObject{
			ShortName: o.ShortName,
			Updates:   action.ObjectUpdate{LastTrigger: state.Ptr(now.UnixMilli())},
		})
		w.logger.Info("object triggered",
			zap.String("object", o.ShortName),
			zap.Int("effects", len(o.Effects)),
		)
		return out, nil
	}
	return nil, nil
}

func objectMessage(o catalog.Object) string {
	for _, e := range o.Effects {
		switch e.Type {
		case catalog.EffectSwarm:
			return fmt.Sprintf("A swarm of %ss emerges from the %s!", e.MonsterType, o.Name)
		case catalog.EffectHide:
			return fmt.Sprintf("The %s cloaks you in silence.", o.Name)
		case catalog.EffectHeal:
			return fmt.Sprintf("The %s restores your strength!", o.Name)
		}
	}
	return ""
}

func covers(at catalog.Position, size *catalog.Size, p catalog.Position) bool {
	return catalog.Object{Position: at, Size: size}.Covers(p)
}

func dialog(msg string) action.Action {
	return action.UpdateDialog{DialogData: &state.Dialog{Message: msg, DurationMs: dialogMs}}
}
