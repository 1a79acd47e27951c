package reducer

import (
	"slices"

	"go.uber.org/zap"

	"github.com/gregoftheweb/nightland/internal/game/action"
	"github.com/gregoftheweb/nightland/internal/game/catalog"
	"github.com/gregoftheweb/nightland/internal/game/state"
)

func reduceInventory(r *Reducer, s *state.GameState, a action.Action) (*state.GameState, bool) {
	switch act := a.(type) {
	case action.AddToInventory:
		if act.Item.ID == "" {
			return r.reject(s, a, "item has no id")
		}
		if holdsItem(s.Player.Inventory, act.Item.ID) {
			return r.reject(s, a, "item already held", zap.String("item_id", act.Item.ID))
		}
		return with(s, func(n *state.GameState) {
			n.Player.Inventory = append(catalog.CloneItems(s.Player.Inventory), act.Item.Clone())
		})

	case action.RemoveFromInventory:
		if !holdsItem(s.Player.Inventory, act.ID) {
			return r.reject(s, a, "item not held", zap.String("item_id", act.ID))
		}
		return with(s, func(n *state.GameState) {
			n.Player.Inventory = withoutItem(s.Player.Inventory, act.ID)
		})

	case action.ToggleInventory:
		return with(s, func(n *state.GameState) {
			n.ShowInventory = !s.ShowInventory
			n.ShowWeaponsInventory = false
		})
	}
	return s, false
}

func holdsItem(inv []catalog.Item, id string) bool {
	return slices.ContainsFunc(inv, func(it catalog.Item) bool { return it.ID == id })
}

func withoutItem(inv []catalog.Item, id string) []catalog.Item {
	out := make([]catalog.Item, 0, len(inv))
	for _, it := range inv {
		if it.ID != id {
			out = append(out, it)
		}
	}
	return out
}
