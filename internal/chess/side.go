package chess

import nchess "github.com/corentings/chess/v2"

// Side identifies a player by colour.
type Side int8

const (
	White Side = iota
	Black
)

func (s Side) Opponent() Side {
	if s == White {
		return Black
	}
	return White
}

func (s Side) String() string {
	if s == White {
		return "White"
	}
	return "Black"
}

func sideOf(c nchess.Color) Side {
	if c == nchess.Black {
		return Black
	}
	return White
}

func (s Side) color() nchess.Color {
	if s == Black {
		return nchess.Black
	}
	return nchess.White
}
