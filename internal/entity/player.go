package entity

import (
	"errors"
	"fmt"
)

var ErrUnknownPlayer = errors.New("unknown player")

// Player - one of the two sides sharing the device. The zero value marks an empty cell.
type Player int

const (
	NoPlayer Player = iota
	First
	Second
)

// Players lists both sides in turn order.
var Players = [2]Player{First, Second}

// ID - stable small integer identity of the player.
func (that Player) ID() int {
	return int(that)
}

func (that Player) IsValid() bool {
	return that == First || that == Second
}

// Other - returns the opponent of the player.
func (that Player) Other() Player {
	switch that {
	case First:
		return Second
	case Second:
		return First
	default:
		return NoPlayer
	}
}

// String - display label of the player.
func (that Player) String() string {
	switch that {
	case First:
		return "First Player"
	case Second:
		return "Second Player"
	default:
		return ""
	}
}

// Symbol - short mark used in headlines and text boards.
func (that Player) Symbol() string {
	switch that {
	case First:
		return "O"
	case Second:
		return "X"
	default:
		return " "
	}
}

// Shape - name of the chart symbol the player's moves are drawn with.
func (that Player) Shape() string {
	switch that {
	case First:
		return "circle"
	case Second:
		return "xmark"
	default:
		return ""
	}
}

// Color - the player's accent, used for their points, titles and the winner's tint.
func (that Player) Color() string {
	switch that {
	case First:
		return "blue"
	case Second:
		return "green"
	default:
		return ""
	}
}

func (that Player) MarshalText() ([]byte, error) {
	switch that {
	case First:
		return []byte("first"), nil
	case Second:
		return []byte("second"), nil
	case NoPlayer:
		return []byte{}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownPlayer, int(that))
	}
}

func (that *Player) UnmarshalText(text []byte) error {
	switch string(text) {
	case "first":
		*that = First
	case "second":
		*that = Second
	case "":
		*that = NoPlayer
	default:
		return fmt.Errorf("%w: %q", ErrUnknownPlayer, string(text))
	}

	return nil
}
