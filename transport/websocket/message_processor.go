package websocket

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/charttactoe-backend/internal/entity"
	"github.com/rocketscienceinc/charttactoe-backend/internal/view"
)

const writeTimeout = 10 * time.Second

const (
	actionNewGame = "game:new"
	actionGetGame = "game:get"
	actionPlace   = "game:place"
	actionReset   = "game:reset"
	actionError   = "error"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// RequestPayload - what clients send with an action.
type RequestPayload struct {
	GameID string `json:"game_id,omitempty"`
	X      *int   `json:"x,omitempty"`
	Y      *int   `json:"y,omitempty"`
}

type ResponsePayload struct {
	Game   *view.Game    `json:"game,omitempty"`
	Winner entity.Player `json:"winner,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// client - one websocket connection. gorilla connections allow a single concurrent writer.
type client struct {
	conn *websocket.Conn

	writeMu sync.Mutex

	// games created by this connection, deleted when it closes
	owned map[string]struct{}
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		conn:  conn,
		owned: make(map[string]struct{}),
	}
}

func (that *client) sendMessage(action string, payload ResponsePayload) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	if err = that.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	if err = that.conn.WriteJSON(Message{Action: action, Payload: payloadJSON}); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (that *client) sendError(action, message string) error {
	return that.sendMessage(action, ResponsePayload{Error: message})
}

// close - sends a close frame and drops the connection.
func (that *client) close(code int, reason string) {
	deadline := time.Now().Add(writeTimeout)
	_ = that.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
	_ = that.conn.Close()
}
