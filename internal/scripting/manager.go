package scripting

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/gregoftheweb/nightland/internal/game/dice"
)

// globalKey is the reserved key for shared scripts loaded via LoadGlobal.
// CallHook falls back to this VM when no level VM is found.
const globalKey = "__global__"

// levelsDir is the subdirectory of a script tree holding one directory per
// level id.
const levelsDir = "levels"

const (
	HookLevelEnter       = "on_level_enter"
	HookGameOver         = "on_game_over"
	HookSubGameCompleted = "on_sub_game_completed"
)

type vm struct {
	mu sync.Mutex
	L  *lua.LState
}

// Manager owns one sandboxed LState per level plus an optional global one.
//
// Each LState is single-threaded; its mutex serializes concurrent calls to
// the same level while allowing different levels to run concurrently.
type Manager struct {
	mu        sync.RWMutex
	vms       map[string]*vm
	roller    *dice.Roller
	logger    *zap.Logger
	instLimit int

	// Injected after construction. nil = engine.player() returns nil and
	// engine.flag() returns false.
	QueryPlayer func() *PlayerInfo
	HasFlag     func(key string) bool
}

// NewManager creates a Manager. instLimit bounds each hook call; a
// non-positive value uses DefaultInstructionLimit.
//
// Precondition: roller and logger must be non-nil.
// Postcondition: Returns a non-nil Manager with no VMs.
func NewManager(roller *dice.Roller, logger *zap.Logger, instLimit int) *Manager {
	if roller == nil {
		panic("scripting.NewManager: roller must not be nil")
	}
	if logger == nil {
		panic("scripting.NewManager: logger must not be nil")
	}
	return &Manager{
		vms:       make(map[string]*vm),
		roller:    roller,
		logger:    logger,
		instLimit: instLimit,
	}
}

// LoadTree loads dir/*.lua as the global VM and every dir/levels/<id>/
// directory as the VM for level id. A missing dir loads nothing.
//
// Postcondition: Returns the first Lua load failure, leaving earlier VMs registered.
func (m *Manager) LoadTree(dir string) error {
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		m.logger.Info("scripting: no script directory", zap.String("dir", dir))
		return nil
	}
	if err := m.LoadGlobal(dir); err != nil {
		return err
	}
	entries, err := os.ReadDir(filepath.Join(dir, levelsDir))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("scripting: reading level script dirs: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if err := m.LoadLevel(e.Name(), filepath.Join(dir, levelsDir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// LoadLevel creates a sandboxed VM for levelID, registers all engine.*
// modules, then executes every *.lua file in scriptDir in lexicographic order.
//
// Precondition: levelID must be non-empty; scriptDir must be a readable directory.
// Postcondition: Level VM is registered; returns error on Lua load failure.
func (m *Manager) LoadLevel(levelID, scriptDir string) error {
	return m.loadInto(levelID, scriptDir)
}

// LoadGlobal creates the shared VM used when a level has no scripts of its own.
//
// Precondition: scriptDir must be a readable directory.
// Postcondition: Global VM is registered; returns error on Lua load failure.
func (m *Manager) LoadGlobal(scriptDir string) error {
	return m.loadInto(globalKey, scriptDir)
}

func (m *Manager) loadInto(key, scriptDir string) error {
	L := NewSandboxedState()
	m.RegisterModules(L)

	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		L.Close()
		return fmt.Errorf("scripting: reading script dir %q for %q: %w", scriptDir, key, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	for _, path := range luaFiles {
		err := runLimited(context.Background(), L, m.instLimit, func() error { return L.DoFile(path) })
		if err != nil {
			L.Close()
			return fmt.Errorf("scripting: loading %q for %q: %w", path, key, err)
		}
	}

	m.mu.Lock()
	if old, ok := m.vms[key]; ok {
		old.mu.Lock()
		old.L.Close()
		old.mu.Unlock()
	}
	m.vms[key] = &vm{L: L}
	m.mu.Unlock()

	m.logger.Debug("scripting: loaded scripts",
		zap.String("key", key),
		zap.Int("files", len(luaFiles)),
	)
	return nil
}

// CallHook calls the named Lua global function in levelID's VM, falling
// back to the global VM. Returns (LNil, nil) if the hook is not defined or
// no VM exists.
//
// Precondition: args must be valid lua.LValue instances.
// Postcondition: Returns the first return value of the hook, or LNil and
// the Lua error when the hook fails or exceeds its instruction budget.
func (m *Manager) CallHook(ctx context.Context, levelID, hook string, args ...lua.LValue) (lua.LValue, error) {
	m.mu.RLock()
	v, ok := m.vms[levelID]
	if !ok || !defines(v, hook) {
		v = m.vms[globalKey]
	}
	m.mu.RUnlock()

	if v == nil {
		m.logger.Debug("scripting: no VM for level",
			zap.String("level", levelID),
			zap.String("hook", hook),
		)
		return lua.LNil, nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	fn := v.L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, nil
	}

	err := runLimited(ctx, v.L, m.instLimit, func() error {
		return v.L.CallByParam(lua.P{
			Fn:      fn,
			NRet:    1,
			Protect: true,
		}, args...)
	})
	if err != nil {
		return lua.LNil, fmt.Errorf("scripting: %s in %q: %w", hook, levelID, err)
	}

	ret := v.L.Get(-1)
	v.L.Pop(1)
	return ret, nil
}

func defines(v *vm, hook string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.L.GetGlobal(hook) != lua.LNil
}

// Close releases every VM.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, v := range m.vms {
		v.mu.Lock()
		v.L.Close()
		v.mu.Unlock()
		delete(m.vms, key)
	}
}
