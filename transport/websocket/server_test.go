package websocket

import (
	"io"
	"log/slog"
	"math/rand"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/repository"
	"github.com/rocketscienceinc/tictactoe-engine/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type client struct {
	t      *testing.T
	ws     *websocket.Conn
	server *Server
}

func newTestClient(t *testing.T) *client {
	t.Helper()

	return newTestClientWithDelay(t, func() time.Duration { return 0 })
}

func newTestClientWithDelay(t *testing.T, delay DelayFunc) *client {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bot := service.NewBotService(rand.New(rand.NewSource(1)), 0, service.DefaultRandomMoveThreshold)
	sessions := service.NewSessionService(logger, repository.NewMemorySessionRepository(), bot)
	server := New(logger, sessions, delay)

	httpServer := httptest.NewServer(server.Handler())
	t.Cleanup(httpServer.Close)

	url := "ws" + strings.TrimPrefix(httpServer.URL, "http") + "/ws"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = ws.Close()
	})

	return &client{t: t, ws: ws, server: server}
}

func (that *client) send(action string, payload map[string]interface{}) {
	that.t.Helper()

	require.NoError(that.t, that.ws.WriteJSON(Message{Action: action, Payload: payload}))
}

func (that *client) read() response {
	that.t.Helper()

	require.NoError(that.t, that.ws.SetReadDeadline(time.Now().Add(5*time.Second)))

	var message response
	require.NoError(that.t, that.ws.ReadJSON(&message))

	return message
}

func (that *client) newSession(mode string) string {
	that.t.Helper()

	that.send(actionNew, map[string]interface{}{"mode": mode})
	reply := that.read()
	require.Equal(that.t, actionNew, reply.Action)
	require.NotNil(that.t, reply.Payload.Session)

	return reply.Payload.Session.ID
}

func TestServer_PvP(t *testing.T) {
	c := newTestClient(t)
	id := c.newSession("pvp")

	// When: X plays the center
	c.send(actionTurn, map[string]interface{}{"session_id": id, "position": 4})

	// Then: the turn is accepted and O is to move
	reply := c.read()
	require.Equal(t, actionTurn, reply.Action)
	require.Empty(t, reply.Payload.Error)
	assert.True(t, reply.Payload.Result.Accepted)
	assert.Equal(t, entity.Second, reply.Payload.Session.SideToMove)

	// When: O asks for the same cell
	c.send(actionTurn, map[string]interface{}{"session_id": id, "position": 4})

	// Then: the move is rejected with the unchanged board
	reply = c.read()
	assert.Contains(t, reply.Payload.Error, "occupied")
	assert.False(t, reply.Payload.Result.Accepted)
	assert.Equal(t, entity.Board{4: entity.First}, reply.Payload.Session.Board)
}

func TestServer_ComputerTurnIsDeferred(t *testing.T) {
	c := newTestClient(t)
	id := c.newSession("ai")

	// When: the human plays the center
	c.send(actionTurn, map[string]interface{}{"session_id": id, "position": 4})

	// Then: the human move is confirmed first
	reply := c.read()
	require.Equal(t, actionTurn, reply.Action)
	assert.Equal(t, entity.Computer, reply.Payload.Session.ToMove)

	// And: the computer announces it is thinking
	reply = c.read()
	require.Equal(t, actionThinking, reply.Action)

	// And: the computer's answer arrives on its own
	reply = c.read()
	require.Equal(t, actionTurn, reply.Action)
	require.Empty(t, reply.Payload.Error)
	assert.Equal(t, entity.Second, reply.Payload.Session.Board[0])
	assert.Equal(t, entity.Human, reply.Payload.Session.ToMove)
}

func TestServer_ComputerMoveSuggestion(t *testing.T) {
	c := newTestClient(t)
	id := c.newSession("pvp")

	c.send(actionComputerMove, map[string]interface{}{"session_id": id})

	reply := c.read()
	require.Equal(t, actionComputerMove, reply.Action)
	require.NotNil(t, reply.Payload.Position)
	assert.Equal(t, entity.Position(0), *reply.Payload.Position)
}

func TestServer_KeysResetAndMode(t *testing.T) {
	c := newTestClient(t)
	id := c.newSession("pvp")

	// key 1 plays the top left cell
	c.send(actionKey, map[string]interface{}{"session_id": id, "key": "1"})
	reply := c.read()
	require.Equal(t, actionTurn, reply.Action)
	assert.Equal(t, entity.First, reply.Payload.Session.Board[0])

	// m switches to ai and clears the board
	c.send(actionKey, map[string]interface{}{"session_id": id, "key": "m"})
	reply = c.read()
	require.Equal(t, actionKey, reply.Action)
	assert.Equal(t, entity.ModeAI, reply.Payload.Session.Mode)
	assert.Equal(t, entity.Board{}, reply.Payload.Session.Board)

	// explicit mode change
	c.send(actionMode, map[string]interface{}{"session_id": id, "mode": "pvp"})
	reply = c.read()
	assert.Equal(t, entity.ModePvP, reply.Payload.Session.Mode)

	c.send(actionMode, map[string]interface{}{"session_id": id, "mode": "online"})
	reply = c.read()
	assert.Contains(t, reply.Payload.Error, "invalid game mode")

	// score reset and reset reply with the session
	c.send(actionScoreReset, map[string]interface{}{"session_id": id})
	reply = c.read()
	assert.Equal(t, entity.ScoreTally{}, reply.Payload.Session.Score)

	c.send(actionReset, map[string]interface{}{"session_id": id})
	reply = c.read()
	assert.Equal(t, entity.First, reply.Payload.Session.SideToMove)
}

func TestServer_Errors(t *testing.T) {
	c := newTestClient(t)

	c.send("session:unknown", nil)
	reply := c.read()
	assert.Equal(t, actionError, reply.Action)
	assert.Contains(t, reply.Payload.Error, "unknown action")

	c.send(actionGet, map[string]interface{}{})
	reply = c.read()
	assert.Equal(t, errSessionRequired.Error(), reply.Payload.Error)

	c.send(actionGet, map[string]interface{}{"session_id": "nope"})
	reply = c.read()
	assert.Contains(t, reply.Payload.Error, "session not found")

	c.send(actionTurn, map[string]interface{}{"session_id": "nope"})
	reply = c.read()
	assert.Contains(t, reply.Payload.Error, "invalid position")

	id := c.newSession("pvp")
	for _, position := range []interface{}{4.9, -1, 9, "4"} {
		c.send(actionTurn, map[string]interface{}{"session_id": id, "position": position})
		reply = c.read()
		assert.NotEmpty(t, reply.Payload.Error, "position %v", position)
	}

	// the board is still empty after the rejected positions
	c.send(actionGet, map[string]interface{}{"session_id": id})
	reply = c.read()
	require.NotNil(t, reply.Payload.Session)
	assert.Equal(t, entity.Board{}, reply.Payload.Session.Board)
}

func TestServer_FractionalPositionIsRejected(t *testing.T) {
	c := newTestClient(t)
	id := c.newSession("pvp")

	// When: a position with a fractional part is sent
	c.send(actionTurn, map[string]interface{}{"session_id": id, "position": 4.9})

	// Then: it is rejected as an invalid position instead of being truncated
	reply := c.read()
	require.Equal(t, actionTurn, reply.Action)
	assert.Contains(t, reply.Payload.Error, "invalid position")
	assert.Nil(t, reply.Payload.Session)

	// And: a whole number written as a float is accepted
	c.send(actionTurn, map[string]interface{}{"session_id": id, "position": 4.0})
	reply = c.read()
	require.Empty(t, reply.Payload.Error)
	assert.Equal(t, entity.Board{4: entity.First}, reply.Payload.Session.Board)
}

func TestServer_ResetDropsScheduledComputerTurn(t *testing.T) {
	// Given: the first computer turn thinks long, later ones answer at once
	var calls atomic.Int32
	c := newTestClientWithDelay(t, func() time.Duration {
		if calls.Add(1) == 1 {
			return 500 * time.Millisecond
		}
		return 0
	})
	id := c.newSession("ai")

	// When: the human plays, resets while the computer thinks and plays the same cell again
	c.send(actionTurn, map[string]interface{}{"session_id": id, "position": 4})
	require.Equal(t, actionTurn, c.read().Action)
	require.Equal(t, actionThinking, c.read().Action)

	c.send(actionReset, map[string]interface{}{"session_id": id})
	require.Equal(t, actionReset, c.read().Action)

	c.send(actionTurn, map[string]interface{}{"session_id": id, "position": 4})
	require.Equal(t, actionTurn, c.read().Action)
	require.Equal(t, actionThinking, c.read().Action)

	// Then: only the new game's computer turn is played
	reply := c.read()
	require.Equal(t, actionTurn, reply.Action)
	require.Empty(t, reply.Payload.Error)
	assert.Equal(t, entity.Board{0: entity.Second, 4: entity.First}, reply.Payload.Session.Board)

	// And: the stale turn is dropped without a message once it wakes up
	c.server.pending.Wait()

	c.send(actionGet, map[string]interface{}{"session_id": id})
	reply = c.read()
	require.Equal(t, actionGet, reply.Action)
	assert.Equal(t, entity.Board{0: entity.Second, 4: entity.First}, reply.Payload.Session.Board)
	assert.Equal(t, entity.Human, reply.Payload.Session.ToMove)
}

func TestRandomDelay(t *testing.T) {
	delay := RandomDelay(rand.New(rand.NewSource(1)), 500*time.Millisecond, 1500*time.Millisecond)

	for i := 0; i < 100; i++ {
		d := delay()
		assert.GreaterOrEqual(t, d, 500*time.Millisecond)
		assert.LessOrEqual(t, d, 1500*time.Millisecond)
	}

	assert.Equal(t, time.Second, RandomDelay(rand.New(rand.NewSource(1)), time.Second, time.Second)())
}
