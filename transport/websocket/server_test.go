package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/charttactoe-backend/internal/apperror"
	"github.com/rocketscienceinc/charttactoe-backend/internal/entity"
	"github.com/rocketscienceinc/charttactoe-backend/internal/repository"
	"github.com/rocketscienceinc/charttactoe-backend/internal/usecase"
)

func newTestServer(t *testing.T) (*httptest.Server, *usecase.GameManager) {
	t.Helper()

	srv, _, manager := startTestServer(t)

	return srv, manager
}

func startTestServer(t *testing.T) (*httptest.Server, *Server, *usecase.GameManager) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	manager := usecase.NewGameManager(logger, repository.NewMemoryGameRepository(time.Hour))

	wsServer := New(logger, manager)

	srv := httptest.NewServer(wsServer)
	t.Cleanup(srv.Close)

	return srv, wsServer, manager
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()

	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func send(t *testing.T, conn *websocket.Conn, action string, payload any) {
	t.Helper()

	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	require.NoError(t, conn.WriteJSON(Message{Action: action, Payload: raw}))
}

func receive(t *testing.T, conn *websocket.Conn) (string, ResponsePayload) {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))

	var payload ResponsePayload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))

	return msg.Action, payload
}

func newGame(t *testing.T, conn *websocket.Conn) string {
	t.Helper()

	send(t, conn, actionNewGame, nil)

	action, resp := receive(t, conn)
	require.Equal(t, actionNewGame, action)
	require.Empty(t, resp.Error)
	require.NotNil(t, resp.Game)

	return resp.Game.ID
}

func place(t *testing.T, conn *websocket.Conn, gameID string, x, y int) ResponsePayload {
	t.Helper()

	send(t, conn, actionPlace, RequestPayload{GameID: gameID, X: &x, Y: &y})

	action, resp := receive(t, conn)
	require.Equal(t, actionPlace, action)

	return resp
}

func TestServer_NewGame(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dial(t, srv)

	send(t, conn, actionNewGame, nil)

	action, resp := receive(t, conn)

	assert.Equal(t, actionNewGame, action)
	require.NotNil(t, resp.Game)
	assert.NotEmpty(t, resp.Game.ID)
	assert.Equal(t, entity.Playing(entity.First), resp.Game.State)
	assert.Len(t, resp.Game.Cells, entity.CellCount)
}

func TestServer_Place(t *testing.T) {
	t.Run("Valid move", func(t *testing.T) {
		srv, _ := newTestServer(t)
		conn := dial(t, srv)
		gameID := newGame(t, conn)

		resp := place(t, conn, gameID, 1, 1)

		require.Empty(t, resp.Error)
		assert.Equal(t, entity.First, resp.Game.Board[1][1])
		assert.Equal(t, entity.Playing(entity.Second), resp.Game.State)
	})

	t.Run("Occupied cell keeps the game", func(t *testing.T) {
		srv, _ := newTestServer(t)
		conn := dial(t, srv)
		gameID := newGame(t, conn)

		place(t, conn, gameID, 0, 0)
		resp := place(t, conn, gameID, 0, 0)

		assert.Contains(t, resp.Error, apperror.ErrCellOccupied.Error())
		require.NotNil(t, resp.Game)
		assert.Len(t, resp.Game.Moves, 1)
	})

	t.Run("Game ended", func(t *testing.T) {
		srv, _ := newTestServer(t)
		conn := dial(t, srv)
		gameID := newGame(t, conn)

		// Given: Second completes the x=0 row
		for _, move := range [][2]int{{1, 1}, {0, 0}, {2, 2}, {0, 1}, {1, 0}, {0, 2}} {
			require.Empty(t, place(t, conn, gameID, move[0], move[1]).Error)
		}

		// When: another move is attempted
		resp := place(t, conn, gameID, 2, 0)

		// Then: the reply names the winner
		assert.Contains(t, resp.Error, apperror.ErrGameFinished.Error())
		assert.Equal(t, entity.Second, resp.Winner)
	})

	t.Run("Missing coordinates", func(t *testing.T) {
		srv, _ := newTestServer(t)
		conn := dial(t, srv)
		gameID := newGame(t, conn)

		send(t, conn, actionPlace, RequestPayload{GameID: gameID})

		_, resp := receive(t, conn)
		assert.Equal(t, errMissingCoordinates.Error(), resp.Error)
	})
}

func TestServer_Reset(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dial(t, srv)
	gameID := newGame(t, conn)

	place(t, conn, gameID, 2, 1)

	send(t, conn, actionReset, RequestPayload{GameID: gameID})

	action, resp := receive(t, conn)
	assert.Equal(t, actionReset, action)
	require.NotNil(t, resp.Game)
	assert.Empty(t, resp.Game.Moves)
}

func TestServer_UnknownAction(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dial(t, srv)

	send(t, conn, "game:fly", nil)

	action, resp := receive(t, conn)
	assert.Equal(t, actionError, action)
	assert.Contains(t, resp.Error, "game:fly")
}

func TestServer_GetGame(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dial(t, srv)
	gameID := newGame(t, conn)

	place(t, conn, gameID, 0, 2)

	t.Run("Known game", func(t *testing.T) {
		send(t, conn, actionGetGame, RequestPayload{GameID: gameID})

		action, resp := receive(t, conn)
		assert.Equal(t, actionGetGame, action)
		require.NotNil(t, resp.Game)
		assert.Equal(t, entity.First, resp.Game.Board[0][2])
		assert.Equal(t, "Next: X", resp.Game.Headline)
	})

	t.Run("Unknown game", func(t *testing.T) {
		send(t, conn, actionGetGame, RequestPayload{GameID: "missing"})

		_, resp := receive(t, conn)
		assert.Contains(t, resp.Error, apperror.ErrGameNotFound.Error())
		assert.Nil(t, resp.Game)
	})
}

func TestServer_SessionGamesDeletedOnClose(t *testing.T) {
	srv, manager := newTestServer(t)
	conn := dial(t, srv)
	gameID := newGame(t, conn)

	// When: the connection goes away
	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	require.NoError(t, conn.Close())

	// Then: its game is removed from storage
	assert.Eventually(t, func() bool {
		_, err := manager.GetGame(context.Background(), gameID)
		return errors.Is(err, apperror.ErrGameNotFound)
	}, 2*time.Second, 20*time.Millisecond)
}

func TestServer_MalformedMessagesKeepTheSession(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dial(t, srv)

	// Given: a game started on the connection
	gameID := newGame(t, conn)

	frames := map[string]string{
		"not json":       `not json`,
		"wrong type":     `{"action":5}`,
		"array":          `[1,2]`,
		"empty frame":    ``,
		"truncated json": `{"action":"game:new"`,
	}

	for name, frame := range frames {
		t.Run(name, func(t *testing.T) {
			// When: the client sends a frame that is not a message
			require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(frame)))

			// Then: it gets an error reply on the same connection
			action, resp := receive(t, conn)
			assert.Equal(t, actionError, action)
			assert.NotEmpty(t, resp.Error)
		})
	}

	// Then: the session and its game are still alive
	send(t, conn, actionGetGame, RequestPayload{GameID: gameID})
	action, resp := receive(t, conn)
	require.Equal(t, actionGetGame, action)
	require.Empty(t, resp.Error)
	assert.Equal(t, gameID, resp.Game.ID)

	assert.NotEmpty(t, newGame(t, conn))
}

func TestServer_InvalidPayload(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dial(t, srv)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"action":"game:place","payload":{"x":"one"}}`)))

	action, resp := receive(t, conn)
	assert.Equal(t, actionPlace, action)
	assert.Equal(t, "invalid payload", resp.Error)
}

func TestServer_CloseClients(t *testing.T) {
	srv, wsServer, manager := startTestServer(t)
	conn := dial(t, srv)
	gameID := newGame(t, conn)

	// When: the server shuts its connections down
	wsServer.closeClients()

	// Then: the client is told the server is going away
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), err)

	// Then: the session ends and its game is removed
	assert.Eventually(t, func() bool {
		_, err := manager.GetGame(context.Background(), gameID)
		return errors.Is(err, apperror.ErrGameNotFound)
	}, 2*time.Second, 20*time.Millisecond)

	assert.Eventually(t, func() bool {
		wsServer.clientsMutex.Lock()
		defer wsServer.clientsMutex.Unlock()

		return len(wsServer.clients) == 0
	}, 2*time.Second, 20*time.Millisecond)
}
