package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/charttactoe-backend/internal/entity"
)

const shutdownTimeout = 5 * time.Second

type gameUseCase interface {
	NewGame(ctx context.Context) (*entity.Game, error)
	GetGame(ctx context.Context, id string) (*entity.Game, error)
	Place(ctx context.Context, id string, x, y int) (*entity.Game, error)
	Reset(ctx context.Context, id string) (*entity.Game, error)
	DeleteGame(ctx context.Context, id string) error
}

type handlerFunc func(ctx context.Context, c *client, payload *RequestPayload) error

type Server struct {
	logger      *slog.Logger
	gameUseCase gameUseCase
	upgrader    websocket.Upgrader

	handlers map[string]handlerFunc

	clientsMutex sync.Mutex
	clients      map[*client]struct{}
}

func New(logger *slog.Logger, gameUseCase gameUseCase) *Server {
	server := &Server{
		logger:      logger.With("component", "websocket"),
		gameUseCase: gameUseCase,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		clients: make(map[*client]struct{}),
	}

	server.handlers = map[string]handlerFunc{
		actionNewGame: server.handleNewGame,
		actionGetGame: server.handleGetGame,
		actionPlace:   server.handlePlace,
		actionReset:   server.handleReset,
	}

	return server
}

// Start - starts WebSocket server and stops it when ctx is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", that)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}
	// Shutdown does not touch hijacked connections.
	srv.RegisterOnShutdown(that.closeClients)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server stopped with error: %w", err)
	}

	return nil
}

// ServeHTTP - upgrades the connection and serves messages until the client leaves.
func (that *Server) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "ServeHTTP")

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	c := newClient(conn)
	that.addClient(c)

	defer func() {
		that.removeClient(c)
		that.closeSession(c)

		if err = conn.Close(); err != nil {
			log.Debug("failed to close connection", "error", err)
		}
	}()

	log.Info("WebSocket connection established")

	if err = that.handleMessages(req.Context(), c); err != nil {
		log.Error("error handling messages", "error", err)
	}
}

// handleMessages - processes messages from the client.
func (that *Server) handleMessages(ctx context.Context, c *client) error {
	log := that.logger.With("method", "handleMessages")

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) ||
				errors.Is(err, net.ErrClosed) {
				return nil
			}

			return fmt.Errorf("failed to read message: %w", err)
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Debug("malformed message", "error", err)
			if err = c.sendError(actionError, "message must be a JSON object with an action"); err != nil {
				return err
			}
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)
			if err := c.sendError(actionError, "unknown action: "+message.Action); err != nil {
				return err
			}
			continue
		}

		var payload RequestPayload
		if len(message.Payload) > 0 {
			if err := json.Unmarshal(message.Payload, &payload); err != nil {
				if err = c.sendError(message.Action, "invalid payload"); err != nil {
					return err
				}
				continue
			}
		}

		if err := handler(ctx, c, &payload); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

func (that *Server) addClient(c *client) {
	that.clientsMutex.Lock()
	defer that.clientsMutex.Unlock()

	that.clients[c] = struct{}{}
}

func (that *Server) removeClient(c *client) {
	that.clientsMutex.Lock()
	defer that.clientsMutex.Unlock()

	delete(that.clients, c)
}

// closeClients - says goodbye to every open connection, which ends their read loops.
func (that *Server) closeClients() {
	that.clientsMutex.Lock()
	clients := make([]*client, 0, len(that.clients))
	for c := range that.clients {
		clients = append(clients, c)
	}
	that.clientsMutex.Unlock()

	for _, c := range clients {
		c.close(websocket.CloseGoingAway, "server is shutting down")
	}
}

// closeSession - ends the games the client created.
func (that *Server) closeSession(c *client) {
	log := that.logger.With("method", "closeSession")

	for gameID := range c.owned {
		if err := that.gameUseCase.DeleteGame(context.Background(), gameID); err != nil {
			log.Warn("failed to delete session game", "gameID", gameID, "error", err)
		}
	}
}
