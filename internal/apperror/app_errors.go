package apperror

import "errors"

var (
	ErrOutOfBounds     = errors.New("cell is out of bounds")
	ErrCellOccupied    = errors.New("cell is already occupied")
	ErrGameFinished    = errors.New("game is already finished")
	ErrGameNotFound    = errors.New("game not found")
	ErrCorruptSnapshot = errors.New("game snapshot is inconsistent")
)
