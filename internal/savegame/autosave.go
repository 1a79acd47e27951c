package savegame

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gregoftheweb/nightland/internal/game/state"
)

// DefaultThrottle is the autosave coalescing window.
const DefaultThrottle = 2 * time.Second

// Saver writes the autosave slot.
type Saver interface {
	SaveCurrentGame(ctx context.Context, s *state.GameState) error
}

// AutoSaver coalesces autosave requests into at most one write per
// throttle window. Writes never overlap; a failed write is logged and the
// next request retries.
type AutoSaver struct {
	saver    Saver
	throttle time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	pending *state.GameState
	timer   *time.Timer
	gen     uint64
	closed  bool

	writeMu sync.Mutex
	lastFP  string
}

// NewAutoSaver creates an AutoSaver. A non-positive throttle uses
// DefaultThrottle.
func NewAutoSaver(saver Saver, throttle time.Duration, logger *zap.Logger) *AutoSaver {
	if throttle <= 0 {
		throttle = DefaultThrottle
	}
	return &AutoSaver{saver: saver, throttle: throttle, logger: logger}
}

// Request schedules s to be written at the end of the current throttle
// window, replacing any state already waiting. States that are over or
// have not yet moved are skipped.
func (a *AutoSaver) Request(s *state.GameState) {
	if s.GameOver || s.MoveCount == 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	a.pending = s
	if a.timer == nil {
		gen := a.gen
		a.timer = time.AfterFunc(a.throttle, func() { a.flush(gen) })
	}
}

// Force writes s now, dropping any pending request. Only a finished game is
// skipped.
func (a *AutoSaver) Force(ctx context.Context, s *state.GameState) error {
	if s.GameOver {
		return nil
	}
	a.mu.Lock()
	a.stopLocked()
	gen := a.gen
	a.mu.Unlock()
	return a.write(ctx, s, gen, true)
}

// Cancel drops any pending request and waits for an in-flight write to
// finish, so a caller may delete the slot afterwards without racing it.
func (a *AutoSaver) Cancel() {
	a.mu.Lock()
	a.stopLocked()
	a.mu.Unlock()

	a.writeMu.Lock()
	a.lastFP = ""
	a.writeMu.Unlock()
}

// Close writes any pending request and stops accepting new ones.
func (a *AutoSaver) Close() {
	a.mu.Lock()
	s := a.pending
	a.stopLocked()
	gen := a.gen
	a.closed = true
	a.mu.Unlock()

	if s != nil {
		_ = a.write(context.Background(), s, gen, false)
	}
}

// stopLocked drops the pending state and invalidates any scheduled flush.
//
// Precondition: a.mu must be held.
func (a *AutoSaver) stopLocked() {
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.pending = nil
	a.gen++
}

func (a *AutoSaver) flush(gen uint64) {
	a.mu.Lock()
	if gen != a.gen {
		a.mu.Unlock()
		return
	}
	s := a.pending
	a.pending = nil
	a.timer = nil
	a.mu.Unlock()

	if s != nil {
		_ = a.write(context.Background(), s, gen, false)
	}
}

func (a *AutoSaver) write(ctx context.Context, s *state.GameState, gen uint64, force bool) error {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()

	a.mu.Lock()
	stale := gen != a.gen
	a.mu.Unlock()
	if stale {
		return nil
	}

	fp := Fingerprint(s)
	if !force && fp == a.lastFP {
		return nil
	}
	if err := a.saver.SaveCurrentGame(ctx, s); err != nil {
		a.logger.Error("autosave failed", zap.Error(err))
		return err
	}
	a.lastFP = fp
	return nil
}
