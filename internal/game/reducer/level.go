package reducer

import (
	"maps"

	"go.uber.org/zap"

	"github.com/gregoftheweb/nightland/internal/game/action"
	"github.com/gregoftheweb/nightland/internal/game/catalog"
	"github.com/gregoftheweb/nightland/internal/game/state"
)

func reduceLevel(r *Reducer, s *state.GameState, a action.Action) (*state.GameState, bool) {
	act, ok := a.(action.SetLevel)
	if !ok {
		return s, false
	}
	lvl, err := r.catalog.Level(act.LevelID)
	if err != nil {
		r.logger.Warn("rejecting transition to unknown level", zap.String("level_id", act.LevelID))
		return s, true
	}

	return with(s, func(n *state.GameState) {
		levels := make(map[string]catalog.Level, len(s.Levels)+1)
		maps.Copy(levels, s.Levels)
		levels[lvl.ID] = lvl.Clone()

		n.Level = lvl.Clone()
		n.CurrentLevelID = lvl.ID
		n.Levels = levels
		n.Items = catalog.CloneItems(lvl.Items)
		n.Objects = catalog.CloneObjects(lvl.Objects)
		n.NonCollisionObjects = catalog.CloneObjects(lvl.NonCollisionObjects)
		n.GreatPowers = catalog.CloneGreatPowers(lvl.GreatPowers)
		n.Monsters = catalog.CloneMonsters(lvl.Monsters)

		// Combat never carries across a level boundary.
		n.InCombat = false
		n.CombatTurn = nil
		n.ActiveMonsters = emptyMonsters()
		n.AttackSlots = emptyMonsters()
		n.WaitingMonsters = emptyMonsters()
		n.TurnOrder = []string{}
		n.CombatLog = []state.CombatLogEntry{}
		n.RangedAttackMode = false
		n.TargetedMonsterID = nil
		n.ActiveProjectiles = []state.Projectile{}
		n.MoveCount = 0

		player := s.Player
		player.CurrentHP = player.MaxHP
		player.Position = lvl.PlayerSpawn
		n.Player = player
	})
}
