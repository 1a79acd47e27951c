package scripting

import (
	"context"

	lua "github.com/yuin/gopher-lua"
)

// OnLevelEnter calls on_level_enter(levelId) for levelID.
func (m *Manager) OnLevelEnter(ctx context.Context, levelID string) (string, error) {
	return m.callForMessage(ctx, levelID, HookLevelEnter, lua.LString(levelID))
}

// OnGameOver calls on_game_over(killerName) for levelID.
func (m *Manager) OnGameOver(ctx context.Context, levelID, killerName string) (string, error) {
	return m.callForMessage(ctx, levelID, HookGameOver, lua.LString(killerName))
}

// OnSubGameCompleted calls on_sub_game_completed(key, completed) for levelID.
func (m *Manager) OnSubGameCompleted(ctx context.Context, levelID, key string, completed bool) (string, error) {
	return m.callForMessage(ctx, levelID, HookSubGameCompleted, lua.LString(key), lua.LBool(completed))
}

// callForMessage returns the hook's result when it is a string.
func (m *Manager) callForMessage(ctx context.Context, levelID, hook string, args ...lua.LValue) (string, error) {
	ret, err := m.CallHook(ctx, levelID, hook, args...)
	if err != nil {
		return "", err
	}
	if s, ok := ret.(lua.LString); ok {
		return string(s), nil
	}
	return "", nil
}
