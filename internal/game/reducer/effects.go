package reducer

import (
	"go.uber.org/zap"

	"github.com/gregoftheweb/nightland/internal/game/action"
	"github.com/gregoftheweb/nightland/internal/game/catalog"
	"github.com/gregoftheweb/nightland/internal/game/state"
)

const (
	defaultRecuperate  = 5
	defaultCloakTurns  = 5
	soulsuckMessage    = "Your soul has been consumed by the Watcher. The darkness claims another victim..."
	soulsuckKillerName = "The Watcher"
)

func reduceEffects(r *Reducer, s *state.GameState, a action.Action) (*state.GameState, bool) {
	act, ok := a.(action.TriggerEffect)
	if !ok {
		return s, false
	}
	e := act.Effect
	p := s.Player

	switch e.Type {
	case catalog.EffectHeal:
		return with(s, func(n *state.GameState) { n.Player.CurrentHP = min(p.MaxHP, p.CurrentHP+e.Value) })

	case catalog.EffectRecuperate:
		if p.CurrentHP >= p.MaxHP {
			return r.reject(s, a, "player already at full health")
		}
		amount := e.Value
		if amount <= 0 {
			amount = defaultRecuperate
		}
		return with(s, func(n *state.GameState) { n.Player.CurrentHP = min(p.MaxHP, p.CurrentHP+amount) })

	case catalog.EffectHide:
		return with(s, func(n *state.GameState) { n.Player.IsHidden = true })

	case catalog.EffectCloaking:
		turns := e.Duration
		if turns <= 0 {
			turns = defaultCloakTurns
		}
		return with(s, func(n *state.GameState) {
			n.Player.IsHidden = true
			n.Player.HideTurns = turns
		})

	case catalog.EffectSoulsuck:
		return with(s, func(n *state.GameState) {
			n.Player.CurrentHP = 0
			n.GameOver = true
			n.GameOverMessage = state.Ptr(soulsuckMessage)
			n.KillerName = state.Ptr(soulsuckKillerName)
			clearCombat(n)
		})

	case catalog.EffectUnlockHideAbility:
		return with(s, func(n *state.GameState) { n.Player.HideUnlocked = true })

	case catalog.EffectShowMessage:
		return with(s, func(n *state.GameState) {
			n.DialogData = &state.Dialog{Message: e.Message, Source: string(e.Type)}
		})

	case catalog.EffectSwarm, catalog.EffectSpawn:
		// Placement is random; these arrive pre-resolved as SPAWN_MONSTER.
		return r.reject(s, a, "randomised effect must be resolved before dispatch", zap.String("effect", string(e.Type)))
	}
	return r.reject(s, a, "unknown effect", zap.String("effect", string(e.Type)))
}
