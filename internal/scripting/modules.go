package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// PlayerInfo is a snapshot of the player passed to Lua.
type PlayerInfo struct {
	Name      string
	HP        int
	MaxHP     int
	Row       int
	Col       int
	LevelID   string
	MoveCount int
	Kills     int
}

// RegisterModules installs the engine table into L:
//
//	engine.log.debug|info|warn|error(msg)
//	engine.dice.roll(expr) -> {total, dice, modifier} | nil
//	engine.player() -> PlayerInfo table | nil
//	engine.flag(key) -> bool
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()
	L.SetField(engine, "log", m.logModule(L))
	L.SetField(engine, "dice", m.diceModule(L))
	L.SetField(engine, "player", L.NewFunction(m.luaPlayer))
	L.SetField(engine, "flag", L.NewFunction(m.luaFlag))
	L.SetGlobal("engine", engine)
}

func (m *Manager) logModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	levels := map[string]func(string, ...zap.Field){
		"debug": m.logger.Debug,
		"info":  m.logger.Info,
		"warn":  m.logger.Warn,
		"error": m.logger.Error,
	}
	for name, logFn := range levels {
		L.SetField(mod, name, L.NewFunction(func(L *lua.LState) int {
			logFn(L.CheckString(1), zap.String("source", "lua"))
			return 0
		}))
	}
	return mod
}

func (m *Manager) diceModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	L.SetField(mod, "roll", L.NewFunction(func(L *lua.LState) int {
		res, err := m.roller.RollExpr(L.CheckString(1))
		if err != nil {
			m.logger.Warn("scripting: bad dice expression", zap.Error(err))
			L.Push(lua.LNil)
			return 1
		}
		t := L.NewTable()
		L.SetField(t, "total", lua.LNumber(res.Total()))
		L.SetField(t, "modifier", lua.LNumber(res.Modifier))
		dice := L.NewTable()
		for _, d := range res.Dice {
			dice.Append(lua.LNumber(d))
		}
		L.SetField(t, "dice", dice)
		L.Push(t)
		return 1
	}))
	return mod
}

func (m *Manager) luaPlayer(L *lua.LState) int {
	if m.QueryPlayer == nil {
		L.Push(lua.LNil)
		return 1
	}
	info := m.QueryPlayer()
	if info == nil {
		L.Push(lua.LNil)
		return 1
	}
	t := L.NewTable()
	L.SetField(t, "name", lua.LString(info.Name))
	L.SetField(t, "hp", lua.LNumber(info.HP))
	L.SetField(t, "max_hp", lua.LNumber(info.MaxHP))
	L.SetField(t, "row", lua.LNumber(info.Row))
	L.SetField(t, "col", lua.LNumber(info.Col))
	L.SetField(t, "level", lua.LString(info.LevelID))
	L.SetField(t, "moves", lua.LNumber(info.MoveCount))
	L.SetField(t, "kills", lua.LNumber(info.Kills))
	L.Push(t)
	return 1
}

func (m *Manager) luaFlag(L *lua.LState) int {
	key := L.CheckString(1)
	L.Push(lua.LBool(m.HasFlag != nil && m.HasFlag(key)))
	return 1
}
