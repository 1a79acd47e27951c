// Package ws serves the game over a websocket. Clients send action
// envelopes or turn intents and receive state snapshots.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gregoftheweb/nightland/internal/game/action"
	"github.com/gregoftheweb/nightland/internal/game/combat"
	"github.com/gregoftheweb/nightland/internal/game/session"
	"github.com/gregoftheweb/nightland/internal/game/state"
	"github.com/gregoftheweb/nightland/internal/store"
)

// Intent types carried in the same envelope as actions. Each is a full
// player turn run through the session.
const (
	IntentMove         = "INTENT_MOVE"
	IntentAttack       = "INTENT_ATTACK"
	IntentRangedAttack = "INTENT_RANGED_ATTACK"
	IntentPass         = "INTENT_PASS"
)

const outboxSize = 64

// inbound is the client envelope.
type inbound struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// outbound is the server envelope.
type outbound struct {
	Type     string               `json:"type"`
	Snapshot state.Snapshot       `json:"snapshot,omitempty"`
	Result   *combat.AttackResult `json:"result,omitempty"`
	Error    string               `json:"error,omitempty"`
}

// Option configures a Handler.
type Option func(*Handler)

// WithReadLimit caps the size of inbound messages.
func WithReadLimit(n int64) Option {
	return func(h *Handler) { h.readLimit = n }
}

// WithOriginPatterns lists the cross-origin hosts allowed to connect.
func WithOriginPatterns(patterns ...string) Option {
	return func(h *Handler) { h.origins = patterns }
}

// Handler is the websocket endpoint.
type Handler struct {
	session *session.Session
	store   *store.Store
	hub     *session.Hub
	decoder *action.Decoder
	logger  *zap.Logger

	readLimit int64
	origins   []string

	// dirty coalesces state changes between broadcasts.
	dirty chan struct{}
	unsub func()
	once  sync.Once
}

// NewHandler creates a Handler and subscribes it to st.
//
// Precondition: every argument must be non-nil.
// Postcondition: Run must be called for state changes to reach clients.
func NewHandler(sess *session.Session, st *store.Store, hub *session.Hub, decoder *action.Decoder, logger *zap.Logger, opts ...Option) *Handler {
	h := &Handler{
		session:   sess,
		store:     st,
		hub:       hub,
		decoder:   decoder,
		logger:    logger,
		readLimit: 1 << 20,
		dirty:     make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.unsub = st.Subscribe(func(action.Action, *state.GameState) {
		select {
		case h.dirty <- struct{}{}:
		default:
		}
	})
	return h
}

// Run broadcasts the latest snapshot after every burst of state changes
// until ctx is done.
func (h *Handler) Run(ctx context.Context) error {
	defer h.Close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-h.dirty:
			data, err := h.snapshotMessage()
			if err != nil {
				h.logger.Error("encoding snapshot", zap.Error(err))
				continue
			}
			h.hub.Broadcast(data)
		}
	}
}

// Close unsubscribes from the store.
func (h *Handler) Close() {
	h.once.Do(h.unsub)
}

// ServeHTTP upgrades the request and serves one client until it leaves.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.origins})
	if err != nil {
		h.logger.Warn("websocket accept failed", zap.Error(err))
		return
	}
	conn.SetReadLimit(h.readLimit)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	out := session.NewOutbox(uuid.NewString(), outboxSize)
	if err := h.hub.Add(out); err != nil {
		_ = conn.Close(websocket.StatusInternalError, "registration failed")
		return
	}
	defer h.hub.Remove(out.ID())
	logger := h.logger.With(zap.String("client", out.ID()))
	logger.Info("client connected", zap.String("remote", r.RemoteAddr))

	writeDone := make(chan struct{})
	go func() {
		defer close(writeDone)
		defer cancel()
		for data := range out.Events() {
			if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
				logger.Debug("write failed", zap.Error(err))
				return
			}
		}
	}()

	if data, err := h.snapshotMessage(); err == nil {
		_ = out.Push(data)
	} else {
		logger.Error("encoding snapshot", zap.Error(err))
	}

read:
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				logger.Info("client disconnected")
			default:
				logger.Info("client connection lost", zap.Error(err))
			}
			break read
		}
		if reply := h.handle(ctx, logger, data); reply != nil {
			if err := out.Push(reply); err != nil {
				logger.Warn("dropping reply", zap.Error(err))
			}
		}
	}

	h.hub.Remove(out.ID())
	<-writeDone
	_ = conn.Close(websocket.StatusNormalClosure, "")
}

// handle processes one inbound message and returns the direct reply, if
// any. State changes reach the client through the broadcast.
func (h *Handler) handle(ctx context.Context, logger *zap.Logger, data []byte) []byte {
	var env inbound
	if err := json.Unmarshal(data, &env); err != nil {
		return errorMessage(fmt.Errorf("decoding message: %w", err))
	}

	switch env.Type {
	case IntentMove:
		var p struct {
			Direction action.Direction `json:"direction"`
		}
		if err := unmarshalPayload(env.Payload, &p); err != nil {
			return errorMessage(err)
		}
		return replyFor(h.session.Move(ctx, p.Direction))
	case IntentAttack:
		var p struct {
			TargetID string `json:"targetId"`
		}
		if err := unmarshalPayload(env.Payload, &p); err != nil {
			return errorMessage(err)
		}
		return attackReply(h.session.Attack(ctx, p.TargetID))
	case IntentRangedAttack:
		return attackReply(h.session.RangedAttack(ctx))
	case IntentPass:
		return replyFor(h.session.Pass(ctx))
	}

	a, err := h.decoder.Decode(data)
	switch {
	case errors.Is(err, action.ErrUnknownType):
		logger.Debug("dispatching unknown action type", zap.String("type", env.Type))
	case err != nil:
		return errorMessage(err)
	}
	h.store.Dispatch(ctx, a)
	return nil
}

func (h *Handler) snapshotMessage() ([]byte, error) {
	snap, err := state.ToSnapshot(h.store.State())
	if err != nil {
		return nil, err
	}
	return json.Marshal(outbound{Type: "state", Snapshot: snap})
}

func unmarshalPayload(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return errors.New("missing payload")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decoding payload: %w", err)
	}
	return nil
}

func replyFor(err error) []byte {
	if err != nil {
		return errorMessage(err)
	}
	return nil
}

func attackReply(res combat.AttackResult, err error) []byte {
	if err != nil {
		return errorMessage(err)
	}
	data, _ := json.Marshal(outbound{Type: "attack", Result: &res})
	return data
}

func errorMessage(err error) []byte {
	data, _ := json.Marshal(outbound{Type: "error", Error: err.Error()})
	return data
}
