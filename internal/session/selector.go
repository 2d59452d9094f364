package session

import (
	"fmt"

	"github.com/park285/shake-chess/internal/chess"
)

// Commit is the outcome of a successful move commit.
type Commit struct {
	Position chess.Position
	Move     chess.Move
	// Active is true for pawn moves and captures; it feeds RepetitionGuard.
	Active bool
}

// TurnSelector tracks the side to move and commits candidate moves.
type TurnSelector struct {
	toMove chess.Side
}

func NewTurnSelector(toMove chess.Side) *TurnSelector {
	return &TurnSelector{toMove: toMove}
}

func (t *TurnSelector) ToMove() chess.Side { return t.toMove }

func (t *TurnSelector) Reset(toMove chess.Side) { t.toMove = toMove }

// Commit validates mv against pos and applies it. A rejected move leaves the
// selector unchanged and returns an error wrapping ErrIllegalMove.
func (t *TurnSelector) Commit(pos chess.Position, mv chess.Move) (Commit, error) {
	if pos.Turn() != t.toMove {
		return Commit{}, fmt.Errorf("%w: position has %s to move, selector has %s", ErrTurnMismatch, pos.Turn(), t.toMove)
	}
	active := pos.IsActive(mv)
	next, err := pos.Apply(mv)
	if err != nil {
		return Commit{}, err
	}
	t.toMove = next.Turn()
	return Commit{Position: next, Move: mv, Active: active}, nil
}

// Selection is the two-click human input state: nothing selected, or one of
// the mover's pieces picked up.
type Selection struct {
	square   chess.Square
	piece    chess.Piece
	selected bool
}

func (s *Selection) Selected() (chess.Square, chess.Piece, bool) {
	return s.square, s.piece, s.selected
}

func (s *Selection) Clear() {
	*s = Selection{}
}

// Click feeds one board click. Clicking one of side's pieces selects it
// (or switches the selection). Clicking any other square while a piece is
// selected yields a candidate move and clears the selection.
func (s *Selection) Click(pos chess.Position, side chess.Side, sq chess.Square) (chess.Move, bool) {
	if pc, own := pos.OwnPieceAt(sq, side); own {
		s.square, s.piece, s.selected = sq, pc, true
		return chess.Move{}, false
	}
	if !s.selected {
		return chess.Move{}, false
	}
	src := s.square
	s.Clear()
	return chess.NewMove(src, sq), true
}
