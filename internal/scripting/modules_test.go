package scripting_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"pgregory.net/rapid"

	"github.com/gregoftheweb/nightland/internal/scripting"
)

func runScript(t *testing.T, mgr *scripting.Manager, luaSrc, hook string, args ...lua.LValue) lua.LValue {
	t.Helper()
	dir := writeTempLua(t, "test.lua", luaSrc)
	require.NoError(t, mgr.LoadLevel("modtest", dir))
	ret, err := mgr.CallHook(context.Background(), "modtest", hook, args...)
	require.NoError(t, err)
	return ret
}

func TestEngineLog_AllLevels(t *testing.T) {
	mgr, logs := newTestManager(t, 0)
	runScript(t, mgr, `
		function do_all_logs()
			engine.log.debug("d")
			engine.log.info("i")
			engine.log.warn("w")
			engine.log.error("e")
		end
	`, "do_all_logs")

	for msg, level := range map[string]zapcore.Level{
		"d": zap.DebugLevel,
		"i": zap.InfoLevel,
		"w": zap.WarnLevel,
		"e": zap.ErrorLevel,
	} {
		entries := logs.FilterMessage(msg).All()
		require.Len(t, entries, 1, msg)
		assert.Equal(t, level, entries[0].Level)
		assert.Equal(t, "lua", entries[0].ContextMap()["source"])
	}
}

func TestEngineDice_Roll_ReturnsTable(t *testing.T) {
	mgr, _ := newTestManager(t, 0)
	ret := runScript(t, mgr, `
		function roll()
			local r = engine.dice.roll("2d6+3")
			return r.total - r.modifier - r.dice[1] - r.dice[2]
		end
	`, "roll")
	assert.Equal(t, lua.LNumber(0), ret)
}

func TestEngineDice_Roll_BadExpression_ReturnsNil(t *testing.T) {
	mgr, _ := newTestManager(t, 0)
	ret := runScript(t, mgr, `
		function roll()
			return engine.dice.roll("banana") == nil
		end
	`, "roll")
	assert.Equal(t, lua.LTrue, ret)
}

func TestProperty_DiceRoll_TotalInRange(t *testing.T) {
	mgr, _ := newTestManager(t, 0)
	dir := writeTempLua(t, "roll.lua", `
		function roll(expr)
			return engine.dice.roll(expr).total
		end
	`)
	require.NoError(t, mgr.LoadLevel("dice", dir))
	rapid.Check(t, func(rt *rapid.T) {
		sides := rapid.IntRange(2, 20).Draw(rt, "sides")
		expr := fmt.Sprintf("1d%d", sides)
		ret, err := mgr.CallHook(context.Background(), "dice", "roll", lua.LString(expr))
		require.NoError(rt, err)
		n := int(ret.(lua.LNumber))
		if n < 1 || n > sides {
			rt.Fatalf("roll %s = %d out of range", expr, n)
		}
	})
}

func TestEnginePlayer_NilCallback_ReturnsNil(t *testing.T) {
	mgr, _ := newTestManager(t, 0)
	ret := runScript(t, mgr, `function p() return engine.player() end`, "p")
	assert.Equal(t, lua.LNil, ret)
}

func TestEnginePlayer_WithCallback(t *testing.T) {
	mgr, _ := newTestManager(t, 0)
	mgr.QueryPlayer = func() *scripting.PlayerInfo {
		return &scripting.PlayerInfo{Name: "Christos", HP: 40, MaxHP: 100, Row: 12, Col: 7, LevelID: "2", MoveCount: 9, Kills: 3}
	}
	ret := runScript(t, mgr, `
		function p()
			local pl = engine.player()
			return pl.name .. ":" .. pl.hp .. "/" .. pl.max_hp .. "@" .. pl.row .. "," .. pl.col .. " L" .. pl.level .. " m" .. pl.moves .. " k" .. pl.kills
		end
	`, "p")
	assert.Equal(t, lua.LString("Christos:40/100@12,7 L2 m9 k3"), ret)
}

func TestEngineFlag(t *testing.T) {
	mgr, _ := newTestManager(t, 0)
	mgr.HasFlag = func(key string) bool { return key == "tesseract" }
	ret := runScript(t, mgr, `
		function f()
			return tostring(engine.flag("tesseract")) .. "," .. tostring(engine.flag("jaunt-cave"))
		end
	`, "f")
	assert.Equal(t, lua.LString("true,false"), ret)
}

// TestOnSubGameCompleted_PassesKeyAndFlag verifies the hook arguments and that a
// non-string result yields no message.
func TestOnSubGameCompleted_PassesKeyAndFlag(t *testing.T) {
	mgr, _ := newTestManager(t, 0)
	dir := writeTempLua(t, "sub.lua", `
		function on_sub_game_completed(key, done)
			if key == "hermit-hollow:met_hermit" and done then
				return "The hermit remembers you."
			end
			return 1
		end
	`)
	require.NoError(t, mgr.LoadLevel("1", dir))

	msg, err := mgr.OnSubGameCompleted(context.Background(), "1", "hermit-hollow:met_hermit", true)
	require.NoError(t, err)
	assert.Equal(t, "The hermit remembers you.", msg)

	msg, err = mgr.OnSubGameCompleted(context.Background(), "1", "tesseract", true)
	require.NoError(t, err)
	assert.Empty(t, msg)
}
