package ws_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/gregoftheweb/nightland/internal/game/action"
	"github.com/gregoftheweb/nightland/internal/game/catalog"
	"github.com/gregoftheweb/nightland/internal/game/combat"
	"github.com/gregoftheweb/nightland/internal/game/dice"
	"github.com/gregoftheweb/nightland/internal/game/effects"
	"github.com/gregoftheweb/nightland/internal/game/reducer"
	"github.com/gregoftheweb/nightland/internal/game/session"
	"github.com/gregoftheweb/nightland/internal/game/state"
	"github.com/gregoftheweb/nightland/internal/game/world"
	"github.com/gregoftheweb/nightland/internal/store"
	"github.com/gregoftheweb/nightland/internal/transport/ws"
)

// highSource keeps wandering monsters from spawning.
type highSource struct{}

func (highSource) Intn(n int) int { return n - 1 }

type message struct {
	Type     string                     `json:"type"`
	Snapshot map[string]json.RawMessage `json:"snapshot"`
	Result   map[string]any             `json:"result"`
	Error    string                     `json:"error"`
}

type client struct {
	t    *testing.T
	conn *websocket.Conn
}

func newServer(t *testing.T) (*store.Store, string) {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	logger := zaptest.NewLogger(t)
	roller := dice.NewRoller(highSource{}, logger)
	f := state.NewFactory(cat, logger)
	st := store.New(reducer.New(f, logger), f.Build("1"), logger)
	sess := session.New(st,
		combat.NewResolver(roller, logger),
		world.New(cat, effects.New(cat, roller, logger), roller, logger),
		logger,
	)
	h := ws.NewHandler(sess, st, session.NewHub(logger), action.NewDecoder(f), logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = h.Run(ctx)
	}()
	srv := httptest.NewServer(h)
	t.Cleanup(func() {
		srv.Close()
		cancel()
		<-done
	})
	return st, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "") })
	return &client{t: t, conn: conn}
}

func (c *client) send(raw string) {
	c.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(c.t, c.conn.Write(ctx, websocket.MessageText, []byte(raw)))
}

// await reads until a message satisfies match.
func (c *client) await(match func(message) bool) message {
	c.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		_, data, err := c.conn.Read(ctx)
		require.NoError(c.t, err)
		var m message
		require.NoError(c.t, json.Unmarshal(data, &m))
		if match(m) {
			return m
		}
	}
}

func isState(m message) bool { return m.Type == "state" }

func field(m message, key string) string { return string(m.Snapshot[key]) }

// TestHandler_SendsSnapshotOnConnect verifies a new client first receives
// the current state.
func TestHandler_SendsSnapshotOnConnect(t *testing.T) {
	_, url := newServer(t)
	c := dial(t, url)

	m := c.await(func(message) bool { return true })
	assert.Equal(t, "state", m.Type)
	assert.Equal(t, `"1"`, field(m, "currentLevelId"))
	assert.Equal(t, "0", field(m, "moveCount"))
}

// TestHandler_MoveIntent verifies an intent runs a turn and the new state
// is broadcast.
func TestHandler_MoveIntent(t *testing.T) {
	st, url := newServer(t)
	c := dial(t, url)
	c.await(isState)

	c.send(`{"type":"INTENT_MOVE","payload":{"direction":"up"}}`)
	m := c.await(func(m message) bool { return isState(m) && field(m, "moveCount") == "1" })
	assert.Equal(t, "1", field(m, "distanceTraveled"))
	assert.Equal(t, 394, st.State().Player.Position.Row)
}

// TestHandler_ActionEnvelope verifies plain action envelopes are dispatched.
func TestHandler_ActionEnvelope(t *testing.T) {
	st, url := newServer(t)
	c := dial(t, url)
	c.await(isState)

	c.send(`{"type":"TOGGLE_INVENTORY"}`)
	c.await(func(m message) bool { return isState(m) && field(m, "showInventory") == "true" })
	assert.True(t, st.State().ShowInventory)
}

// TestHandler_Errors verifies bad messages and refused intents are answered
// with an error and the connection stays open.
func TestHandler_Errors(t *testing.T) {
	_, url := newServer(t)
	c := dial(t, url)
	c.await(isState)

	isError := func(m message) bool { return m.Type == "error" }

	c.send(`not json`)
	assert.Contains(t, c.await(isError).Error, "decoding message")

	c.send(`{"type":"INTENT_MOVE"}`)
	assert.Contains(t, c.await(isError).Error, "missing payload")

	c.send(`{"type":"INTENT_ATTACK","payload":{"targetId":"abhuman-1"}}`)
	assert.Contains(t, c.await(isError).Error, combat.ErrNotInCombat.Error())

	c.send(`{"type":"INTENT_MOVE","payload":{"direction":"up"}}`)
	c.await(func(m message) bool { return isState(m) && field(m, "moveCount") == "1" })
}

// TestHandler_BroadcastsToEveryClient verifies a change made by one client
// reaches the others.
func TestHandler_BroadcastsToEveryClient(t *testing.T) {
	_, url := newServer(t)
	a := dial(t, url)
	b := dial(t, url)
	a.await(isState)
	b.await(isState)

	a.send(`{"type":"INTENT_PASS"}`)
	b.await(func(m message) bool { return isState(m) && field(m, "moveCount") == "1" })
}
