package entity

import "strings"

const (
	BoardSize = 3
	CellCount = BoardSize * BoardSize
)

// Board - occupancy grid indexed as [x][y].
type Board [BoardSize][BoardSize]Player

func (that *Board) InBounds(x, y int) bool {
	return x >= 0 && x < BoardSize && y >= 0 && y < BoardSize
}

// At - returns the owner of the cell, NoPlayer when empty or out of bounds.
func (that *Board) At(x, y int) Player {
	if !that.InBounds(x, y) {
		return NoPlayer
	}

	return that[x][y]
}

func (that *Board) IsEmpty(x, y int) bool {
	return that.At(x, y) == NoPlayer
}

// Count - number of occupied cells.
func (that *Board) Count() int {
	count := 0
	for x := range that {
		for y := range that[x] {
			if that[x][y] != NoPlayer {
				count++
			}
		}
	}

	return count
}

// OwnsRow - all three cells sharing x belong to player.
func (that *Board) OwnsRow(x int, player Player) bool {
	return that.At(x, 0) == player && that.At(x, 1) == player && that.At(x, 2) == player
}

// OwnsColumn - all three cells sharing y belong to player.
func (that *Board) OwnsColumn(y int, player Player) bool {
	return that.At(0, y) == player && that.At(1, y) == player && that.At(2, y) == player
}

func (that *Board) OwnsDiagonal(player Player) bool {
	return that.At(0, 0) == player && that.At(1, 1) == player && that.At(2, 2) == player
}

func (that *Board) OwnsAntiDiagonal(player Player) bool {
	return that.At(0, 2) == player && that.At(1, 1) == player && that.At(2, 0) == player
}

// String - text rendering with y growing upwards, like the chart.
func (that *Board) String() string {
	var sb strings.Builder

	for y := BoardSize - 1; y >= 0; y-- {
		for x := 0; x < BoardSize; x++ {
			sb.WriteString(" " + that[x][y].Symbol() + " ")
			if x < BoardSize-1 {
				sb.WriteString("|")
			}
		}
		sb.WriteString("\n")
		if y > 0 {
			sb.WriteString("---+---+---\n")
		}
	}

	return sb.String()
}
