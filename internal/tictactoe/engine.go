package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/charttactoe-backend/internal/apperror"
	"github.com/rocketscienceinc/charttactoe-backend/internal/entity"
)

// GameEndedError - placement attempted after the game concluded.
// Winner is NoPlayer when the game was drawn.
type GameEndedError struct {
	Winner entity.Player
}

func (that *GameEndedError) Error() string {
	if that.Winner == entity.NoPlayer {
		return apperror.ErrGameFinished.Error() + ": draw"
	}

	return fmt.Sprintf("%s: won by %s", apperror.ErrGameFinished, that.Winner)
}

func (that *GameEndedError) Unwrap() error {
	return apperror.ErrGameFinished
}

// Engine - single source of truth for one game's progression.
// Board, moves and state are only ever changed together by Place and Reset.
type Engine struct {
	board entity.Board
	moves []entity.Move
	state entity.GameState

	observers []func(entity.GameState)
}

func NewEngine() *Engine {
	that := &Engine{}
	that.clear()

	return that
}

// Restore - rebuilds an engine from a snapshot by replaying its moves.
func Restore(snapshot *entity.Game) (*Engine, error) {
	that := NewEngine()

	for i, move := range snapshot.Moves {
		if that.state.NextMoveBy != move.Player {
			return nil, fmt.Errorf("%w: move %d played by %s out of turn", apperror.ErrCorruptSnapshot, i+1, move.Player)
		}

		x, y := move.Cell()
		if err := that.apply(x, y); err != nil {
			return nil, fmt.Errorf("%w: move %d: %w", apperror.ErrCorruptSnapshot, i+1, err)
		}
	}

	if that.board != snapshot.Board || that.state != snapshot.State {
		return nil, fmt.Errorf("%w: board or state does not match the moves", apperror.ErrCorruptSnapshot)
	}

	return that, nil
}

// OnChange - registers a hook called with the new state after every successful Place and every Reset.
func (that *Engine) OnChange(observer func(entity.GameState)) {
	that.observers = append(that.observers, observer)
}

// Reset - starts the game over.
func (that *Engine) Reset() {
	that.clear()
	that.notify()
}

// Place - plays the cell (x, y), 0-indexed, for the player whose turn it is.
func (that *Engine) Place(x, y int) error {
	if err := that.apply(x, y); err != nil {
		return err
	}

	that.notify()

	return nil
}

func (that *Engine) State() entity.GameState {
	return that.state
}

// Moves - copy of the moves in the order they were played.
func (that *Engine) Moves() []entity.Move {
	moves := make([]entity.Move, len(that.moves))
	copy(moves, that.moves)

	return moves
}

func (that *Engine) Board() entity.Board {
	return that.board
}

// Winner - the winning player, if any.
func (that *Engine) Winner() (entity.Player, bool) {
	if that.state.Status != entity.StatusWon {
		return entity.NoPlayer, false
	}

	return that.state.Winner, true
}

func (that *Engine) Ended() bool {
	return that.state.IsEnded()
}

// Snapshot - copies the engine into a game document under the given id.
func (that *Engine) Snapshot(id string) *entity.Game {
	return &entity.Game{
		ID:    id,
		Board: that.board,
		Moves: that.Moves(),
		State: that.state,
	}
}

func (that *Engine) apply(x, y int) error {
	switch that.state.Status {
	case entity.StatusWon:
		return &GameEndedError{Winner: that.state.Winner}
	case entity.StatusDraw:
		return &GameEndedError{Winner: entity.NoPlayer}
	}

	if !that.board.InBounds(x, y) {
		return fmt.Errorf("%w: (%d, %d)", apperror.ErrOutOfBounds, x, y)
	}

	if !that.board.IsEmpty(x, y) {
		return fmt.Errorf("%w: (%d, %d)", apperror.ErrCellOccupied, x, y)
	}

	player := that.state.NextMoveBy

	that.board[x][y] = player
	that.moves = append(that.moves, entity.NewMove(x, y, player))
	that.state = that.evaluate(x, y, player)

	return nil
}

// evaluate - only lines through the played cell can have been completed.
func (that *Engine) evaluate(x, y int, player entity.Player) entity.GameState {
	switch {
	case that.board.OwnsRow(x, player):
		return entity.Won(player)
	case that.board.OwnsColumn(y, player):
		return entity.Won(player)
	case x == y && that.board.OwnsDiagonal(player):
		return entity.Won(player)
	case x+y == entity.BoardSize-1 && that.board.OwnsAntiDiagonal(player):
		return entity.Won(player)
	case len(that.moves) == entity.CellCount:
		return entity.Draw()
	default:
		return entity.Playing(player.Other())
	}
}

func (that *Engine) clear() {
	that.board = entity.Board{}
	that.moves = []entity.Move{}
	that.state = entity.Playing(entity.First)
}

func (that *Engine) notify() {
	for _, observer := range that.observers {
		observer(that.state)
	}
}
