// Package view turns game snapshots into what a client draws: the headline,
// accessible cells and the scatter-chart points of the moves.
package view

import (
	"fmt"
	"math"

	"github.com/rocketscienceinc/charttactoe-backend/internal/entity"
)

const (
	statusDraw   = "Draw"
	emptyCellTag = "empty"

	colorDraw      = "red"
	colorPrimary   = "primary"
	colorSecondary = "secondary"

	drawTitle = "... or drawn using a chart"
)

// Cell - accessible representation of one board cell.
type Cell struct {
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Label    string `json:"label"`
	Value    string `json:"value"`
	Disabled bool   `json:"disabled"`
}

// Point - one move on the scatter chart. Coordinates sit at the cell centers of a 0..3 plot.
type Point struct {
	ID     int     `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Series string  `json:"series"`
	Symbol string  `json:"symbol"`
	Color  string  `json:"color"`
}

// Text - a caption together with the color it is drawn in.
type Text struct {
	Text   string `json:"text"`
	Color  string `json:"color"`
	Symbol string `json:"symbol,omitempty"`
}

// Game - everything a client needs to render a game.
type Game struct {
	ID         string           `json:"id"`
	Headline   string           `json:"headline"`
	Callout    Text             `json:"callout"`
	Title      Text             `json:"title"`
	Tint       string           `json:"tint,omitempty"`
	State      entity.GameState `json:"state"`
	Winner     entity.Player    `json:"winner,omitempty"`
	Ended      bool             `json:"ended"`
	Resettable bool             `json:"resettable"`
	Board      entity.Board     `json:"board"`
	Moves      []entity.Move    `json:"moves"`
	Cells      []Cell           `json:"cells"`
	Points     []Point          `json:"points"`
}

func NewGame(game *entity.Game) *Game {
	ended := game.IsFinished()

	return &Game{
		ID:         game.ID,
		Headline:   Headline(game.State),
		Callout:    Callout(game.State),
		Title:      Title(game.State),
		Tint:       game.Winner().Color(),
		State:      game.State,
		Winner:     game.Winner(),
		Ended:      ended,
		Resettable: len(game.Moves) > 0,
		Board:      game.Board,
		Moves:      game.Moves,
		Cells:      Cells(game.Board, ended),
		Points:     Points(game.Moves),
	}
}

// Headline - short status line, e.g. "Next: O" or "Winner: X".
func Headline(state entity.GameState) string {
	switch state.Status {
	case entity.StatusPlaying:
		return "Next: " + state.NextMoveBy.Symbol()
	case entity.StatusWon:
		return "Winner: " + state.Winner.Symbol()
	default:
		return statusDraw
	}
}

// Callout - small caption above the title.
func Callout(state entity.GameState) Text {
	switch state.Status {
	case entity.StatusPlaying:
		return Text{Text: "Next Up", Color: colorSecondary}
	case entity.StatusWon:
		return Text{Text: "Winner", Color: state.Winner.Color()}
	default:
		return Text{Text: statusDraw, Color: colorDraw}
	}
}

// Title - the player to move or the winner, drawn with their chart symbol.
func Title(state entity.GameState) Text {
	var player entity.Player

	switch state.Status {
	case entity.StatusPlaying:
		player = state.NextMoveBy
	case entity.StatusWon:
		player = state.Winner
	default:
		return Text{Text: drawTitle, Color: colorPrimary}
	}

	return Text{Text: player.String(), Color: player.Color(), Symbol: player.Shape()}
}

// Cells - lists the board top row first, left to right.
func Cells(board entity.Board, ended bool) []Cell {
	cells := make([]Cell, 0, entity.CellCount)

	for y := entity.BoardSize - 1; y >= 0; y-- {
		for x := 0; x < entity.BoardSize; x++ {
			owner := board.At(x, y)

			label := emptyCellTag
			if owner != entity.NoPlayer {
				label = "move by " + owner.String()
			}

			cells = append(cells, Cell{
				X:        x,
				Y:        y,
				Label:    label,
				Value:    fmt.Sprintf("row %d, column %d", y, x),
				Disabled: owner != entity.NoPlayer || ended,
			})
		}
	}

	return cells
}

func Points(moves []entity.Move) []Point {
	points := make([]Point, 0, len(moves))

	for _, move := range moves {
		points = append(points, Point{
			ID:     move.ID(),
			X:      float64(move.X) - 0.5,
			Y:      float64(move.Y) - 0.5,
			Series: move.Player.String(),
			Symbol: move.Player.Shape(),
			Color:  move.Player.Color(),
		})
	}

	return points
}

// CellAt - maps a tap at chart coordinates to the cell under it, clamped to the board.
func CellAt(rawX, rawY float64) (int, int) {
	return clamp(rawX), clamp(rawY)
}

func clamp(raw float64) int {
	if math.IsNaN(raw) {
		return 0
	}

	return int(math.Min(math.Max(0, math.Trunc(raw)), entity.BoardSize-1))
}
