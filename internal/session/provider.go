package session

import (
	"context"

	"github.com/park285/shake-chess/internal/chess"
)

type DecisionKind int

const (
	DecisionNoMove DecisionKind = iota
	DecisionCommit
	// DecisionFailed means no move this tick because the provider hit an
	// error; the provider will try again on a later tick.
	DecisionFailed
)

func (k DecisionKind) String() string {
	switch k {
	case DecisionCommit:
		return "commit"
	case DecisionFailed:
		return "failed"
	default:
		return "no_move"
	}
}

type Decision struct {
	Kind DecisionKind
	Move chess.Move
	Err  error
}

func noMove() Decision                  { return Decision{Kind: DecisionNoMove} }
func commitMove(mv chess.Move) Decision { return Decision{Kind: DecisionCommit, Move: mv} }
func failed(err error) Decision         { return Decision{Kind: DecisionFailed, Err: err} }

// MoveProvider decides, once per tick on its side's turn, whether a move is
// ready to commit.
type MoveProvider interface {
	Poll(ctx context.Context, pos chess.Position) Decision
	Reset()
	Kind() ProviderKind
}

// rejectionAware providers are told when a move they offered was refused by
// the rules engine.
type rejectionAware interface {
	Rejected(mv chess.Move, err error)
}
