package chess

import (
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"
)

// StatusKind is the terminal classification of a position.
type StatusKind int

const (
	StatusOngoing StatusKind = iota
	StatusCheckmate
	StatusStalemate
	// StatusDrawn covers draws the rules engine declares on its own:
	// fivefold repetition, the seventy-five move rule, insufficient material.
	StatusDrawn
)

func (k StatusKind) String() string {
	switch k {
	case StatusCheckmate:
		return "checkmate"
	case StatusStalemate:
		return "stalemate"
	case StatusDrawn:
		return "drawn"
	default:
		return "ongoing"
	}
}

type Status struct {
	Kind StatusKind
	// Winner is meaningful only for StatusCheckmate.
	Winner Side
	Method string
}

// Position is an immutable board state. Apply returns a new Position and
// leaves the receiver untouched.
type Position struct {
	game *nchess.Game
}

// NewPosition returns the standard starting position.
func NewPosition() Position {
	return Position{game: nchess.NewGame()}
}

func PositionFromFEN(fen string) (Position, error) {
	fen = strings.TrimSpace(fen)
	if fen == "" {
		return NewPosition(), nil
	}
	opt, err := nchess.FEN(fen)
	if err != nil {
		return Position{}, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}
	return Position{game: nchess.NewGame(opt)}, nil
}

func (p Position) Turn() Side {
	return sideOf(p.game.Position().Turn())
}

func (p Position) FEN() string {
	return p.game.FEN()
}

// PieceAt reports the piece on sq, if any.
func (p Position) PieceAt(sq Square) (Piece, bool) {
	pc := p.game.Position().Board().Piece(sq)
	return pc, pc != nchess.NoPiece
}

// OwnPieceAt reports whether sq holds a piece belonging to side.
func (p Position) OwnPieceAt(sq Square, side Side) (Piece, bool) {
	pc, ok := p.PieceAt(sq)
	if !ok || pc.Color() != side.color() {
		return pc, false
	}
	return pc, true
}

func (p Position) LegalMoves() []Move {
	valid := p.game.ValidMoves()
	out := make([]Move, 0, len(valid))
	for i := range valid {
		out = append(out, Move{From: valid[i].S1(), To: valid[i].S2(), Promo: valid[i].Promo()})
	}
	return out
}

func (p Position) IsLegal(mv Move) bool {
	for _, legal := range p.LegalMoves() {
		if legal == mv {
			return true
		}
	}
	return false
}

// IsActive reports whether mv moves a pawn or lands on an occupied square.
// Evaluate before applying the move.
func (p Position) IsActive(mv Move) bool {
	if pc, ok := p.PieceAt(mv.From); ok && pc.Type() == nchess.Pawn {
		return true
	}
	_, occupied := p.PieceAt(mv.To)
	return occupied
}

// Apply validates mv and returns the resulting position.
func (p Position) Apply(mv Move) (Position, error) {
	if !p.IsLegal(mv) {
		return Position{}, fmt.Errorf("%w: %s", ErrIllegalMove, mv)
	}
	decoded, err := nchess.UCINotation{}.Decode(p.game.Position(), mv.String())
	if err != nil {
		return Position{}, fmt.Errorf("%w: %s: %v", ErrIllegalMove, mv, err)
	}
	next := p.game.Clone()
	if err := next.Move(decoded, nil); err != nil {
		return Position{}, fmt.Errorf("%w: %s: %v", ErrIllegalMove, mv, err)
	}
	return Position{game: next}, nil
}

func (p Position) Status() Status {
	switch p.game.Outcome() {
	case nchess.NoOutcome:
		return Status{Kind: StatusOngoing}
	case nchess.WhiteWon, nchess.BlackWon:
		// the side to move has been mated
		return Status{Kind: StatusCheckmate, Winner: p.Turn().Opponent(), Method: methodName(p.game.Method())}
	default:
		method := p.game.Method()
		if method == nchess.Stalemate {
			return Status{Kind: StatusStalemate, Method: methodName(method)}
		}
		return Status{Kind: StatusDrawn, Method: methodName(method)}
	}
}

func methodName(m nchess.Method) string {
	return strings.ToLower(m.String())
}
