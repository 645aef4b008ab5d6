package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rocketscienceinc/charttactoe-backend/internal/apperror"
	"github.com/rocketscienceinc/charttactoe-backend/internal/entity"
	"github.com/rocketscienceinc/charttactoe-backend/internal/tictactoe"
	"github.com/rocketscienceinc/charttactoe-backend/internal/view"
)

type gameUseCase interface {
	NewGame(ctx context.Context) (*entity.Game, error)
	GetGame(ctx context.Context, id string) (*entity.Game, error)
	Place(ctx context.Context, id string, x, y int) (*entity.Game, error)
	Reset(ctx context.Context, id string) (*entity.Game, error)
	DeleteGame(ctx context.Context, id string) error
}

type moveRequest struct {
	X *int `json:"x"`
	Y *int `json:"y"`
}

type tapRequest struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

type errorResponse struct {
	Error  string        `json:"error"`
	Winner entity.Player `json:"winner,omitempty"`
	Game   *view.Game    `json:"game,omitempty"`
}

var errInvalidBody = errors.New("body must be a JSON object with x and y")

type gameHandlers struct {
	logger      *slog.Logger
	gameUseCase gameUseCase
}

func newGameHandlers(logger *slog.Logger, gameUseCase gameUseCase) *gameHandlers {
	return &gameHandlers{
		logger:      logger.With("component", "rest"),
		gameUseCase: gameUseCase,
	}
}

func (that *gameHandlers) create(w http.ResponseWriter, r *http.Request) {
	game, err := that.gameUseCase.NewGame(r.Context())
	if err != nil {
		that.writeError(w, "create", nil, err)
		return
	}

	that.writeJSON(w, http.StatusCreated, view.NewGame(game))
}

func (that *gameHandlers) get(w http.ResponseWriter, r *http.Request) {
	game, err := that.gameUseCase.GetGame(r.Context(), r.PathValue("id"))
	if err != nil {
		that.writeError(w, "get", nil, err)
		return
	}

	that.writeJSON(w, http.StatusOK, view.NewGame(game))
}

func (that *gameHandlers) remove(w http.ResponseWriter, r *http.Request) {
	if err := that.gameUseCase.DeleteGame(r.Context(), r.PathValue("id")); err != nil {
		that.writeError(w, "delete", nil, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (that *gameHandlers) place(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.X == nil || req.Y == nil {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: errInvalidBody.Error()})
		return
	}

	that.placeAt(w, r, *req.X, *req.Y)
}

// tap - places at the cell under a tap given in chart coordinates.
func (that *gameHandlers) tap(w http.ResponseWriter, r *http.Request) {
	var req tapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.X == nil || req.Y == nil {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: errInvalidBody.Error()})
		return
	}

	x, y := view.CellAt(*req.X, *req.Y)
	that.placeAt(w, r, x, y)
}

func (that *gameHandlers) placeAt(w http.ResponseWriter, r *http.Request, x, y int) {
	game, err := that.gameUseCase.Place(r.Context(), r.PathValue("id"), x, y)
	if err != nil {
		that.writeError(w, "place", game, err)
		return
	}

	that.writeJSON(w, http.StatusOK, view.NewGame(game))
}

func (that *gameHandlers) reset(w http.ResponseWriter, r *http.Request) {
	game, err := that.gameUseCase.Reset(r.Context(), r.PathValue("id"))
	if err != nil {
		that.writeError(w, "reset", nil, err)
		return
	}

	that.writeJSON(w, http.StatusOK, view.NewGame(game))
}

// writeError - maps game errors to statuses; the current game is attached to rejected moves.
func (that *gameHandlers) writeError(w http.ResponseWriter, method string, game *entity.Game, err error) {
	resp := errorResponse{Error: err.Error()}
	if game != nil {
		resp.Game = view.NewGame(game)
	}

	var ended *tictactoe.GameEndedError

	switch {
	case errors.As(err, &ended):
		resp.Winner = ended.Winner
		that.writeJSON(w, http.StatusConflict, resp)
	case errors.Is(err, apperror.ErrCellOccupied):
		that.writeJSON(w, http.StatusConflict, resp)
	case errors.Is(err, apperror.ErrOutOfBounds):
		that.writeJSON(w, http.StatusBadRequest, resp)
	case errors.Is(err, apperror.ErrGameNotFound):
		that.writeJSON(w, http.StatusNotFound, resp)
	default:
		that.logger.Error("request failed", "method", method, "error", err)
		that.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: http.StatusText(http.StatusInternalServerError)})
	}
}

func (that *gameHandlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}
