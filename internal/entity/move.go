package entity

// Move - a single placement. Coordinates are 1-indexed (1..3) so they can be
// plotted directly; Cell returns the 0-indexed board position.
type Move struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Player Player `json:"player"`
}

// NewMove - builds a move from 0-indexed board coordinates.
func NewMove(x, y int, player Player) Move {
	return Move{
		X:      x + 1,
		Y:      y + 1,
		Player: player,
	}
}

// ID - unique within one game because no cell is played twice.
func (that Move) ID() int {
	return that.X*100 + that.Y*10 + that.Player.ID()
}

// Cell - 0-indexed board coordinates of the move.
func (that Move) Cell() (int, int) {
	return that.X - 1, that.Y - 1
}
