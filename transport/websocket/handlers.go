package websocket

import (
	"context"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/charttactoe-backend/internal/apperror"
	"github.com/rocketscienceinc/charttactoe-backend/internal/entity"
	"github.com/rocketscienceinc/charttactoe-backend/internal/tictactoe"
	"github.com/rocketscienceinc/charttactoe-backend/internal/usecase"
	"github.com/rocketscienceinc/charttactoe-backend/internal/view"
)

var errMissingCoordinates = errors.New("payload must carry x and y")

// handleNewGame - starts a game owned by this connection.
func (that *Server) handleNewGame(ctx context.Context, c *client, _ *RequestPayload) error {
	log := that.logger.With("method", "handleNewGame")

	game, err := that.gameUseCase.NewGame(ctx)
	if err != nil {
		log.Error("failed to create game", "error", err)
		return c.sendError(actionNewGame, "failed to create game")
	}

	c.owned[game.ID] = struct{}{}

	return c.sendMessage(actionNewGame, ResponsePayload{Game: view.NewGame(game)})
}

// handleGetGame - sends the current game, e.g. after a reconnect.
func (that *Server) handleGetGame(ctx context.Context, c *client, payload *RequestPayload) error {
	game, err := that.gameUseCase.GetGame(ctx, payload.GameID)
	if err != nil {
		return that.sendGameError(c, actionGetGame, nil, err)
	}

	return c.sendMessage(actionGetGame, ResponsePayload{Game: view.NewGame(game)})
}

func (that *Server) handlePlace(ctx context.Context, c *client, payload *RequestPayload) error {
	if payload.X == nil || payload.Y == nil {
		return c.sendError(actionPlace, errMissingCoordinates.Error())
	}

	game, err := that.gameUseCase.Place(ctx, payload.GameID, *payload.X, *payload.Y)
	if err != nil {
		return that.sendGameError(c, actionPlace, game, err)
	}

	return c.sendMessage(actionPlace, ResponsePayload{Game: view.NewGame(game)})
}

func (that *Server) handleReset(ctx context.Context, c *client, payload *RequestPayload) error {
	game, err := that.gameUseCase.Reset(ctx, payload.GameID)
	if err != nil {
		return that.sendGameError(c, actionReset, nil, err)
	}

	return c.sendMessage(actionReset, ResponsePayload{Game: view.NewGame(game)})
}

// sendGameError - turns a use case failure into an error reply. Rejected moves carry the unchanged game.
func (that *Server) sendGameError(c *client, action string, game *entity.Game, err error) error {
	resp := ResponsePayload{Error: err.Error()}
	if game != nil {
		resp.Game = view.NewGame(game)
	}

	var ended *tictactoe.GameEndedError
	if errors.As(err, &ended) {
		resp.Winner = ended.Winner
	}

	if !usecase.IsRuleViolation(err) && !errors.Is(err, apperror.ErrGameNotFound) {
		that.logger.Error("action failed", "action", action, "error", err)
		resp = ResponsePayload{Error: fmt.Sprintf("failed to process %s", action)}
	}

	return c.sendMessage(action, resp)
}
