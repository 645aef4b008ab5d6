package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/charttactoe-backend/internal/apperror"
	"github.com/rocketscienceinc/charttactoe-backend/internal/entity"
	"github.com/rocketscienceinc/charttactoe-backend/internal/pkg"
	"github.com/rocketscienceinc/charttactoe-backend/internal/tictactoe"
)

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

// GameManager - drives engines stored per session. Mutations of one game are serialized.
type GameManager struct {
	logger   *slog.Logger
	gameRepo gameRepo

	mu    sync.Mutex
	locks map[string]*gameLock
}

type gameLock struct {
	sync.Mutex
	refs int
}

func NewGameManager(logger *slog.Logger, gameRepo gameRepo) *GameManager {
	return &GameManager{
		logger:   logger.With("component", "game_manager"),
		gameRepo: gameRepo,
		locks:    make(map[string]*gameLock),
	}
}

// NewGame - starts a new game and stores it.
func (that *GameManager) NewGame(ctx context.Context) (*entity.Game, error) {
	game := tictactoe.NewEngine().Snapshot(pkg.GenerateGameID())

	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	that.logger.Info("game created", "gameID", game.ID)

	return game, nil
}

func (that *GameManager) GetGame(ctx context.Context, id string) (*entity.Game, error) {
	game, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

// Place - plays (x, y) for whoever's turn it is. A rejected move returns the unchanged game with the rule error.
func (that *GameManager) Place(ctx context.Context, id string, x, y int) (*entity.Game, error) {
	log := that.logger.With("method", "Place", "gameID", id)

	unlock := that.lock(id)
	defer unlock()

	engine, err := that.loadEngine(ctx, id)
	if err != nil {
		return nil, err
	}

	if err = engine.Place(x, y); err != nil {
		log.Debug("move rejected", "x", x, "y", y, "error", err)
		return engine.Snapshot(id), fmt.Errorf("failed to make move: %w", err)
	}

	game := engine.Snapshot(id)
	if err = that.saveGame(ctx, game); err != nil {
		return nil, err
	}

	log.Debug("move placed", "x", x, "y", y, "board", game.Board.String())

	if game.IsFinished() {
		log.Info("game finished", "status", game.State.Status, "winner", game.Winner().String())
	}

	return game, nil
}

// Reset - starts the game over under the same id.
func (that *GameManager) Reset(ctx context.Context, id string) (*entity.Game, error) {
	unlock := that.lock(id)
	defer unlock()

	engine, err := that.loadEngine(ctx, id)
	if err != nil {
		return nil, err
	}

	engine.Reset()

	game := engine.Snapshot(id)
	if err = that.saveGame(ctx, game); err != nil {
		return nil, err
	}

	that.logger.Info("game reset", "gameID", id)

	return game, nil
}

// DeleteGame - ends the session of the game.
func (that *GameManager) DeleteGame(ctx context.Context, id string) error {
	unlock := that.lock(id)
	defer unlock()

	if err := that.gameRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	that.logger.Info("game deleted", "gameID", id)

	return nil
}

func (that *GameManager) loadEngine(ctx context.Context, id string) (*tictactoe.Engine, error) {
	game, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	engine, err := tictactoe.Restore(game)
	if err != nil {
		return nil, fmt.Errorf("failed to restore game: %w", err)
	}

	return engine, nil
}

func (that *GameManager) saveGame(ctx context.Context, game *entity.Game) error {
	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	return nil
}

// lock - holds the game's mutex until the returned func is called.
func (that *GameManager) lock(id string) func() {
	that.mu.Lock()
	l, ok := that.locks[id]
	if !ok {
		l = &gameLock{}
		that.locks[id] = l
	}
	l.refs++
	that.mu.Unlock()

	l.Lock()

	return func() {
		l.Unlock()

		that.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(that.locks, id)
		}
		that.mu.Unlock()
	}
}

// IsRuleViolation - the error is a rejected move rather than a failure.
func IsRuleViolation(err error) bool {
	return errors.Is(err, apperror.ErrOutOfBounds) ||
		errors.Is(err, apperror.ErrCellOccupied) ||
		errors.Is(err, apperror.ErrGameFinished)
}
