package reducer

import (
	"go.uber.org/zap"

	"github.com/gregoftheweb/nightland/internal/game/action"
	"github.com/gregoftheweb/nightland/internal/game/catalog"
	"github.com/gregoftheweb/nightland/internal/game/state"
)

func reduceItems(r *Reducer, s *state.GameState, a action.Action) (*state.GameState, bool) {
	switch act := a.(type) {
	case action.DropItem:
		if !holdsItem(s.Player.Inventory, act.Item.ID) {
			return r.reject(s, a, "item not held", zap.String("item_id", act.Item.ID))
		}
		dropped := act.Item.Clone()
		pos := act.Position
		dropped.Position = &pos
		dropped.Active = true
		dropped.Collectible = true
		return with(s, func(n *state.GameState) {
			n.Player.Inventory = withoutItem(s.Player.Inventory, act.Item.ID)
			n.Items = append(append([]catalog.Item{}, s.Items...), dropped)
		})

	case action.RemoveItemFromGameboard:
		out := make([]catalog.Item, 0, len(s.Items))
		for _, it := range s.Items {
			if it.ShortName == act.ShortName && it.Position != nil && *it.Position == act.Position {
				continue
			}
			out = append(out, it)
		}
		if len(out) == len(s.Items) {
			return r.reject(s, a, "no such item on the board", zap.String("short_name", act.ShortName))
		}
		return with(s, func(n *state.GameState) { n.Items = out })

	case action.UpdateItem:
		out := make([]catalog.Item, len(s.Items))
		found := false
		for i, it := range s.Items {
			if it.ShortName == act.ShortName {
				it = act.Updates.Apply(it)
				found = true
			}
			out[i] = it
		}
		if !found {
			return r.reject(s, a, "no such item", zap.String("short_name", act.ShortName))
		}
		return with(s, func(n *state.GameState) { n.Items = out })

	case action.UpdateObject:
		out := make([]catalog.Object, len(s.Objects))
		found := false
		for i, o := range s.Objects {
			if o.ShortName == act.ShortName {
				o = act.Updates.Apply(o)
				found = true
			}
			out[i] = o
		}
		if !found {
			return r.reject(s, a, "no such object", zap.String("short_name", act.ShortName))
		}
		return with(s, func(n *state.GameState) { n.Objects = out })
	}
	return s, false
}
