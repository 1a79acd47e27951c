package store

import (
	"context"

	"go.uber.org/zap"

	"github.com/gregoftheweb/nightland/internal/game/action"
	"github.com/gregoftheweb/nightland/internal/game/state"
)

// SaveSlots is the part of save orchestration the store's effects touch.
type SaveSlots interface {
	DeleteCurrentGame(ctx context.Context) error
	ClearAllSubGameSaves(ctx context.Context) error
}

// Autosaver schedules autosave writes.
type Autosaver interface {
	Request(s *state.GameState)
	Force(ctx context.Context, s *state.GameState) error
	Cancel()
}

// Hooks are the level script callbacks. A non-empty return value is shown
// to the player as a dialog.
type Hooks interface {
	OnLevelEnter(ctx context.Context, levelID string) (string, error)
	OnGameOver(ctx context.Context, levelID, killerName string) (string, error)
	OnSubGameCompleted(ctx context.Context, levelID, key string, completed bool) (string, error)
}

// PersistenceEffect performs the storage work implied by a transition:
// death wipes the autosave and sub-game saves, a reset wipes sub-game saves,
// a level change saves immediately and everything else requests a
// throttled autosave.
func PersistenceEffect(saves SaveSlots, autosave Autosaver, logger *zap.Logger) Effect {
	return func(ctx context.Context, _ *Store, a action.Action, _, next *state.GameState) {
		switch a.(type) {
		case action.GameOver:
			autosave.Cancel()
			if err := saves.DeleteCurrentGame(ctx); err != nil {
				logger.Error("deleting autosave after game over", zap.Error(err))
			}
			if err := saves.ClearAllSubGameSaves(ctx); err != nil {
				logger.Error("clearing sub-game saves after game over", zap.Error(err))
			}
		case action.ResetGame:
			autosave.Cancel()
			if err := saves.ClearAllSubGameSaves(ctx); err != nil {
				logger.Error("clearing sub-game saves after reset", zap.Error(err))
			}
		case action.SetLevel:
			if err := autosave.Force(ctx, next); err != nil {
				logger.Error("saving on level change",
					zap.String("level", next.CurrentLevelID),
					zap.Error(err),
				)
			}
		case action.HydrateGameState:
		default:
			autosave.Request(next)
		}
	}
}

// ScriptEffect fires level script hooks.
func ScriptEffect(hooks Hooks, logger *zap.Logger) Effect {
	return func(ctx context.Context, st *Store, a action.Action, _, next *state.GameState) {
		var (
			msg  string
			err  error
			hook string
		)
		switch act := a.(type) {
		case action.SetLevel:
			hook = "on_level_enter"
			msg, err = hooks.OnLevelEnter(ctx, next.CurrentLevelID)
		case action.GameOver:
			hook = "on_game_over"
			msg, err = hooks.OnGameOver(ctx, next.CurrentLevelID, state.Deref(next.KillerName))
		case action.SetSubGameCompleted:
			hook = "on_sub_game_completed"
			msg, err = hooks.OnSubGameCompleted(ctx, next.CurrentLevelID, act.SubGameName, act.Completed)
		default:
			return
		}
		if err != nil {
			logger.Warn("level script hook failed", zap.String("hook", hook), zap.Error(err))
			return
		}
		if msg == "" {
			return
		}
		st.Dispatch(ctx, action.UpdateDialog{DialogData: &state.Dialog{Message: msg, Source: "script"}})
	}
}
