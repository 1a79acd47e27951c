package savegame_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/gregoftheweb/nightland/internal/game/state"
	"github.com/gregoftheweb/nightland/internal/savegame"
)

type recordingSaver struct {
	mu    sync.Mutex
	saved []int
	fail  int
}

func (r *recordingSaver) SaveCurrentGame(_ context.Context, s *state.GameState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail > 0 {
		r.fail--
		return errors.New("storage unavailable")
	}
	r.saved = append(r.saved, s.MoveCount)
	return nil
}

func (r *recordingSaver) moves() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.saved...)
}

const throttle = 20 * time.Millisecond

// TestAutoSaver_CoalescesToLatest verifies a burst of requests produces one
// write of the newest state.
func TestAutoSaver_CoalescesToLatest(t *testing.T) {
	fx := newFixture(t)
	saver := &recordingSaver{}
	auto := savegame.NewAutoSaver(saver, throttle, zap.NewNop())

	for moves := 1; moves <= 5; moves++ {
		auto.Request(fx.played(moves))
	}

	require.Eventually(t, func() bool { return len(saver.moves()) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(3 * throttle)
	assert.Equal(t, []int{5}, saver.moves())
}

// TestAutoSaver_SkipsUnplayedAndFinished verifies fresh and finished games
// are never autosaved.
func TestAutoSaver_SkipsUnplayedAndFinished(t *testing.T) {
	fx := newFixture(t)
	saver := &recordingSaver{}
	auto := savegame.NewAutoSaver(saver, throttle, zap.NewNop())

	auto.Request(fx.played(0))
	over := fx.played(4)
	over.GameOver = true
	auto.Request(over)
	require.NoError(t, auto.Force(context.Background(), over))

	time.Sleep(3 * throttle)
	assert.Empty(t, saver.moves())
}

// TestAutoSaver_SkipsUnchangedFingerprint verifies a state equal to the last
// write is not written again.
func TestAutoSaver_SkipsUnchangedFingerprint(t *testing.T) {
	fx := newFixture(t)
	saver := &recordingSaver{}
	auto := savegame.NewAutoSaver(saver, throttle, zap.NewNop())

	auto.Request(fx.played(2))
	require.Eventually(t, func() bool { return len(saver.moves()) == 1 }, time.Second, 5*time.Millisecond)

	same := fx.played(2)
	same.ShowInventory = true
	auto.Request(same)
	time.Sleep(3 * throttle)
	assert.Equal(t, []int{2}, saver.moves())
}

// TestAutoSaver_ForceWritesImmediately verifies Force bypasses the throttle,
// the fingerprint check and the move-count gate.
func TestAutoSaver_ForceWritesImmediately(t *testing.T) {
	fx := newFixture(t)
	saver := &recordingSaver{}
	auto := savegame.NewAutoSaver(saver, time.Hour, zap.NewNop())

	auto.Request(fx.played(3))
	require.NoError(t, auto.Force(context.Background(), fx.played(0)))
	require.NoError(t, auto.Force(context.Background(), fx.played(0)))

	assert.Equal(t, []int{0, 0}, saver.moves())
}

// TestAutoSaver_CancelDropsPending verifies a cancelled request is never written.
func TestAutoSaver_CancelDropsPending(t *testing.T) {
	fx := newFixture(t)
	saver := &recordingSaver{}
	auto := savegame.NewAutoSaver(saver, throttle, zap.NewNop())

	auto.Request(fx.played(3))
	auto.Cancel()

	time.Sleep(3 * throttle)
	assert.Empty(t, saver.moves())
}

// TestAutoSaver_RetriesAfterFailure verifies a failed write is logged and
// the same state is written on the next request.
func TestAutoSaver_RetriesAfterFailure(t *testing.T) {
	fx := newFixture(t)
	core, logs := observer.New(zap.ErrorLevel)
	saver := &recordingSaver{fail: 1}
	auto := savegame.NewAutoSaver(saver, throttle, zap.New(core))

	auto.Request(fx.played(6))
	require.Eventually(t, func() bool { return logs.FilterMessage("autosave failed").Len() == 1 }, time.Second, 5*time.Millisecond)

	auto.Request(fx.played(6))
	require.Eventually(t, func() bool { return len(saver.moves()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []int{6}, saver.moves())
}

// TestAutoSaver_CloseFlushesPending verifies Close writes the waiting state
// and ignores later requests.
func TestAutoSaver_CloseFlushesPending(t *testing.T) {
	fx := newFixture(t)
	saver := &recordingSaver{}
	auto := savegame.NewAutoSaver(saver, time.Hour, zap.NewNop())

	auto.Request(fx.played(8))
	auto.Close()
	auto.Request(fx.played(9))

	assert.Equal(t, []int{8}, saver.moves())
}

// TestFingerprint verifies persistent progress changes the fingerprint and
// transient UI state does not.
func TestFingerprint(t *testing.T) {
	fx := newFixture(t)
	base := fx.played(3)
	fp := savegame.Fingerprint(base)

	ui := fx.played(3)
	ui.ShowWeaponsInventory = true
	ui.DialogData = &state.Dialog{Message: "hello"}
	assert.Equal(t, fp, savegame.Fingerprint(ui))

	changes := map[string]func(s *state.GameState){
		"moved":     func(s *state.GameState) { s.Player.Position.Col++ },
		"hurt":      func(s *state.GameState) { s.Player.CurrentHP-- },
		"level":     func(s *state.GameState) { s.CurrentLevelID = "2" },
		"kill":      func(s *state.GameState) { s.MonstersKilled++ },
		"combat":    func(s *state.GameState) { s.InCombat = true },
		"sub-game":  func(s *state.GameState) { s.SubGamesCompleted["tesseract"] = true },
		"waypoint":  func(s *state.GameState) { s.WaypointSavesCreated["gate"] = true },
		"moveCount": func(s *state.GameState) { s.MoveCount++ },
	}
	for name, change := range changes {
		t.Run(name, func(t *testing.T) {
			s := fx.played(3)
			change(s)
			assert.NotEqual(t, fp, savegame.Fingerprint(s))
		})
	}
}
