package chess

import nchess "github.com/corentings/chess/v2"

var pieceValues = map[nchess.PieceType]int{
	nchess.Pawn:   1,
	nchess.Knight: 3,
	nchess.Bishop: 3,
	nchess.Rook:   5,
	nchess.Queen:  9,
}

// MaterialScore is the summed piece value left on the board per side.
type MaterialScore struct {
	White int
	Black int
}

func (m MaterialScore) Diff() int { return m.White - m.Black }

func (p Position) Material() MaterialScore {
	var score MaterialScore
	board := p.game.Position().Board()
	for file := nchess.FileA; file <= nchess.FileH; file++ {
		for rank := nchess.Rank1; rank <= nchess.Rank8; rank++ {
			piece := board.Piece(nchess.NewSquare(file, rank))
			if piece == nchess.NoPiece {
				continue
			}
			if piece.Color() == nchess.White {
				score.White += pieceValues[piece.Type()]
			} else {
				score.Black += pieceValues[piece.Type()]
			}
		}
	}
	return score
}

// History lists the moves played from the initial position.
func (p Position) History() []Move {
	moves := p.game.Moves()
	out := make([]Move, 0, len(moves))
	for i := range moves {
		out = append(out, Move{From: moves[i].S1(), To: moves[i].S2(), Promo: moves[i].Promo()})
	}
	return out
}

// PGN renders the game so far.
func (p Position) PGN() string {
	return p.game.String()
}
