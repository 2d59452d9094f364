package chess

import (
	"errors"
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"
)

var (
	ErrInvalidSquare = errors.New("invalid square")
	ErrInvalidMove   = errors.New("invalid move text")
	ErrIllegalMove   = errors.New("illegal move")
	ErrInvalidFEN    = errors.New("invalid fen")
)

type (
	Square    = nchess.Square
	Piece     = nchess.Piece
	PieceType = nchess.PieceType
)

// ParseSquare converts algebraic coordinates such as "e4" into a Square.
func ParseSquare(raw string) (Square, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return nchess.NewSquare(nchess.FileA, nchess.Rank1), fmt.Errorf("%w: %q", ErrInvalidSquare, raw)
	}
	return nchess.NewSquare(nchess.File(s[0]-'a'), nchess.Rank(s[1]-'1')), nil
}

// Move is a candidate (source, destination, promotion). Promo is
// nchess.NoPieceType when the move does not promote.
type Move struct {
	From  Square
	To    Square
	Promo PieceType
}

func NewMove(from, to Square) Move {
	return Move{From: from, To: to, Promo: nchess.NoPieceType}
}

// String renders the move in UCI long algebraic form (e2e4, e7e8q).
func (m Move) String() string {
	return m.From.String() + m.To.String() + promoLetter(m.Promo)
}

// ParseUCI parses "e2e4" or "e7e8q".
func ParseUCI(raw string) (Move, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if len(s) != 4 && len(s) != 5 {
		return Move{}, fmt.Errorf("%w: %q", ErrInvalidMove, raw)
	}
	from, err := ParseSquare(s[0:2])
	if err != nil {
		return Move{}, fmt.Errorf("%w: %q", ErrInvalidMove, raw)
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return Move{}, fmt.Errorf("%w: %q", ErrInvalidMove, raw)
	}
	mv := NewMove(from, to)
	if len(s) == 5 {
		promo, ok := promoFromLetter(s[4])
		if !ok {
			return Move{}, fmt.Errorf("%w: %q", ErrInvalidMove, raw)
		}
		mv.Promo = promo
	}
	return mv, nil
}

func promoLetter(pt PieceType) string {
	switch pt {
	case nchess.Queen:
		return "q"
	case nchess.Rook:
		return "r"
	case nchess.Bishop:
		return "b"
	case nchess.Knight:
		return "n"
	default:
		return ""
	}
}

func promoFromLetter(c byte) (PieceType, bool) {
	switch c {
	case 'q':
		return nchess.Queen, true
	case 'r':
		return nchess.Rook, true
	case 'b':
		return nchess.Bishop, true
	case 'n':
		return nchess.Knight, true
	default:
		return nchess.NoPieceType, false
	}
}
