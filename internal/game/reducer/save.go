package reducer

import (
	"maps"

	"github.com/gregoftheweb/nightland/internal/game/action"
	"github.com/gregoftheweb/nightland/internal/game/state"
)

func reduceSave(r *Reducer, s *state.GameState, a action.Action) (*state.GameState, bool) {
	switch act := a.(type) {
	case action.SetSubGameCompleted:
		if act.SubGameName == "" {
			return r.reject(s, a, "empty sub-game key")
		}
		return with(s, func(n *state.GameState) {
			n.SubGamesCompleted = withFlag(s.SubGamesCompleted, act.SubGameName, act.Completed)
		})

	case action.HydrateGameState:
		if act.State == nil {
			return r.reject(s, a, "no state to hydrate")
		}
		return act.State, true

	case action.SetWaypointCreated:
		if act.WaypointName == "" {
			return r.reject(s, a, "empty waypoint name")
		}
		return with(s, func(n *state.GameState) {
			n.WaypointSavesCreated = withFlag(s.WaypointSavesCreated, act.WaypointName, true)
		})
	}
	return s, false
}

func withFlag(in map[string]bool, key string, v bool) map[string]bool {
	out := make(map[string]bool, len(in)+1)
	maps.Copy(out, in)
	out[key] = v
	return out
}
