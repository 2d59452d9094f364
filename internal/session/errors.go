package session

import (
	"errors"

	"github.com/park285/shake-chess/internal/chess"
)

var (
	// ErrIllegalMove is returned for candidates outside the legal move set.
	ErrIllegalMove = chess.ErrIllegalMove

	ErrTurnMismatch       = errors.New("turn selector out of sync with position")
	ErrNoLegalMoves       = errors.New("no legal moves to play")
	ErrNotHumanTurn       = errors.New("side to move is not controlled by a human")
	ErrNotPlaying         = errors.New("session is not playing")
	ErrUnknownMode        = errors.New("unknown game mode")
	ErrUnknownProvider    = errors.New("unknown player kind")
	ErrRemoteUnconfigured = errors.New("remote engine is not configured")
	ErrUnknownCommand     = errors.New("unknown command")
)
