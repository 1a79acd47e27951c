// Package store owns the single live GameState. Every transition goes
// through one reducer invocation at a time, in dispatch order; subscribers
// observe each new state and effects run the I/O a transition implies.
package store

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gregoftheweb/nightland/internal/game/action"
	"github.com/gregoftheweb/nightland/internal/game/state"
)

// Reducer computes the state that follows an action.
type Reducer interface {
	Reduce(s *state.GameState, a action.Action) *state.GameState
}

// Listener receives every state produced by a transition. Listeners are
// called with the dispatch lock held and must not dispatch.
type Listener func(a action.Action, next *state.GameState)

// Effect runs after a transition, outside the dispatch lock. Effects of
// different transitions run one at a time in dispatch order. Effects may
// dispatch follow-up actions; those follow-ups' effects run after the
// current effect returns.
type Effect func(ctx context.Context, st *Store, a action.Action, prev, next *state.GameState)

// Option configures a Store.
type Option func(*Store)

// WithEffects appends effects run after every state-changing dispatch, in order.
func WithEffects(effects ...Effect) Option {
	return func(s *Store) { s.effects = append(s.effects, effects...) }
}

// WithValidation enables the post-transition structural check.
func WithValidation(enabled bool) Option {
	return func(s *Store) { s.validate = enabled }
}

// WithIDGenerator overrides the id source used for combat-log entries.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// Store is the state container.
type Store struct {
	reducer  Reducer
	logger   *zap.Logger
	effects  []Effect
	validate bool
	newID    func() string

	mu      sync.Mutex
	current atomic.Pointer[state.GameState]
	queue   []transition

	effectMu sync.Mutex

	subMu   sync.Mutex
	subs    map[uint64]Listener
	nextSub uint64
}

type transition struct {
	action     action.Action
	prev, next *state.GameState
}

// drainingKey marks a context handed to effects by the goroutine draining
// the transition queue.
type drainingKey struct{}

// New creates a Store holding initial.
//
// Precondition: reducer, initial, and logger must be non-nil.
// Postcondition: State() returns initial until the first dispatch.
func New(reducer Reducer, initial *state.GameState, logger *zap.Logger, opts ...Option) *Store {
	s := &Store{
		reducer: reducer,
		logger:  logger,
		newID:   uuid.NewString,
		subs:    make(map[uint64]Listener),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.current.Store(initial)
	return s
}

// State returns the current state. Callers must treat it as read-only.
func (s *Store) State() *state.GameState {
	return s.current.Load()
}

// Dispatch applies a and returns the resulting state. A rejected or
// unhandled action returns the unchanged state and notifies nobody.
//
// Precondition: a must be non-nil.
// Postcondition: Listeners have observed the new state. Outside an effect,
// the effects of this transition and every earlier one have run.
func (s *Store) Dispatch(ctx context.Context, a action.Action) *state.GameState {
	s.mu.Lock()
	a = s.stamp(a)
	prev := s.current.Load()
	next := s.reducer.Reduce(prev, a)
	changed := next != prev
	if changed {
		s.current.Store(next)
		if s.validate {
			if err := state.Validate(next); err != nil {
				s.logger.Warn("state invariant violated",
					zap.String("action", string(a.Type())),
					zap.Error(err),
				)
			}
		}
		s.notify(a, next)
		if len(s.effects) > 0 {
			s.queue = append(s.queue, transition{action: a, prev: prev, next: next})
		}
	}
	s.mu.Unlock()

	if changed && len(s.effects) > 0 && ctx.Value(drainingKey{}) == nil {
		s.runEffects(ctx)
	}
	return next
}

// runEffects drains queued transitions in the order they were reduced. A
// caller whose transition was already drained by another goroutine returns
// once that drain has released the effect lock.
func (s *Store) runEffects(ctx context.Context) {
	s.effectMu.Lock()
	defer s.effectMu.Unlock()
	ctx = context.WithValue(ctx, drainingKey{}, true)
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			return
		}
		t := s.queue[0]
		s.queue[0] = transition{}
		s.queue = s.queue[1:]
		s.mu.Unlock()

		for _, effect := range s.effects {
			effect(ctx, s, t.action, t.prev, t.next)
		}
	}
}

// DispatchAll applies actions in order and returns the final state.
func (s *Store) DispatchAll(ctx context.Context, actions ...action.Action) *state.GameState {
	next := s.State()
	for _, a := range actions {
		next = s.Dispatch(ctx, a)
	}
	return next
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) notify(a action.Action, next *state.GameState) {
	s.subMu.Lock()
	listeners := make([]Listener, 0, len(s.subs))
	for _, fn := range s.subs {
		listeners = append(listeners, fn)
	}
	s.subMu.Unlock()
	for _, fn := range listeners {
		fn(a, next)
	}
}

// stamp assigns the ids the reducer expects to find on the action.
func (s *Store) stamp(a action.Action) action.Action {
	if entry, ok := a.(action.AddCombatLog); ok && entry.ID == "" {
		entry.ID = s.newID()
		return entry
	}
	return a
}
