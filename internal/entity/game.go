package entity

const (
	StatusPlaying = "playing"
	StatusWon     = "won"
	StatusDraw    = "draw"
)

// GameState - progression of one game: playing with a side to move, won, or drawn.
type GameState struct {
	Status     string `json:"status"`
	NextMoveBy Player `json:"next_move_by,omitempty"`
	Winner     Player `json:"winner,omitempty"`
}

func Playing(nextMoveBy Player) GameState {
	return GameState{Status: StatusPlaying, NextMoveBy: nextMoveBy}
}

func Won(winner Player) GameState {
	return GameState{Status: StatusWon, Winner: winner}
}

func Draw() GameState {
	return GameState{Status: StatusDraw}
}

func (that GameState) IsPlaying() bool {
	return that.Status == StatusPlaying
}

// IsEnded - true for both terminal states.
func (that GameState) IsEnded() bool {
	return that.Status == StatusWon || that.Status == StatusDraw
}

// Game - snapshot of an engine, as stored in session storage and sent to clients.
type Game struct {
	ID    string    `json:"id"`
	Board Board     `json:"board"`
	Moves []Move    `json:"moves"`
	State GameState `json:"state"`
}

// Winner - the winning player, NoPlayer unless the game was won.
func (that *Game) Winner() Player {
	if that.State.Status != StatusWon {
		return NoPlayer
	}

	return that.State.Winner
}

func (that *Game) IsFinished() bool {
	return that.State.IsEnded()
}

// Clone - deep copy, the moves slice is not shared.
func (that *Game) Clone() *Game {
	clone := *that
	clone.Moves = make([]Move, len(that.Moves))
	copy(clone.Moves, that.Moves)

	return &clone
}
