package reducer

import (
	"go.uber.org/zap"

	"github.com/gregoftheweb/nightland/internal/game/action"
	"github.com/gregoftheweb/nightland/internal/game/state"
)

func reduceUI(r *Reducer, s *state.GameState, a action.Action) (*state.GameState, bool) {
	switch act := a.(type) {
	case action.UpdateDialog:
		return with(s, func(n *state.GameState) { n.DialogData = act.DialogData })

	case action.SetAudioStarted:
		return with(s, func(n *state.GameState) { n.AudioStarted = act.Started })

	case action.ToggleRangedMode:
		if act.Active && act.TargetID != nil {
			if _, ok := s.ActiveMonster(*act.TargetID); !ok {
				return r.reject(s, a, "target is not an active monster", zap.String("monster_id", *act.TargetID))
			}
		}
		return with(s, func(n *state.GameState) {
			n.RangedAttackMode = act.Active
			n.TargetedMonsterID = nil
			if act.Active && act.TargetID != nil {
				n.TargetedMonsterID = state.Ptr(*act.TargetID)
			}
		})

	case action.SetTargetMonster:
		if _, ok := s.ActiveMonster(act.MonsterID); !ok {
			return r.reject(s, a, "target is not an active monster", zap.String("monster_id", act.MonsterID))
		}
		return with(s, func(n *state.GameState) { n.TargetedMonsterID = state.Ptr(act.MonsterID) })

	case action.ClearRangedMode:
		return with(s, func(n *state.GameState) {
			n.RangedAttackMode = false
			n.TargetedMonsterID = nil
		})

	case action.AddProjectile:
		return with(s, func(n *state.GameState) {
			n.ActiveProjectiles = append(append([]state.Projectile{}, s.ActiveProjectiles...), act.Projectile)
		})

	case action.RemoveProjectile:
		out := make([]state.Projectile, 0, len(s.ActiveProjectiles))
		for _, p := range s.ActiveProjectiles {
			if p.ID != act.ID {
				out = append(out, p)
			}
		}
		return with(s, func(n *state.GameState) { n.ActiveProjectiles = out })

	case action.AddTeleportFlash:
		return with(s, func(n *state.GameState) {
			n.ActiveTeleportFlashes = append(append([]state.TeleportFlash{}, s.ActiveTeleportFlashes...), act.Flash)
		})

	case action.RemoveTeleportFlash:
		out := make([]state.TeleportFlash, 0, len(s.ActiveTeleportFlashes))
		for _, f := range s.ActiveTeleportFlashes {
			if f.ID != act.ID {
				out = append(out, f)
			}
		}
		return with(s, func(n *state.GameState) { n.ActiveTeleportFlashes = out })
	}
	return s, false
}
