package session

import (
	"context"

	"github.com/park285/shake-chess/internal/chess"
)

// Human turns board clicks into moves. Clicks are delivered by the tick
// goroutine; Poll hands each resolved candidate out once.
type Human struct {
	side       chess.Side
	selection  Selection
	pending    chess.Move
	hasPending bool
}

func NewHuman(side chess.Side) *Human {
	return &Human{side: side}
}

func (h *Human) Kind() ProviderKind { return KindHuman }

func (h *Human) Click(pos chess.Position, sq chess.Square) {
	if mv, ok := h.selection.Click(pos, h.side, sq); ok {
		h.pending, h.hasPending = mv, true
	}
}

// ClickOffBoard handles input that resolved to no square.
func (h *Human) ClickOffBoard() {
	h.selection.Clear()
}

func (h *Human) Selected() (chess.Square, bool) {
	sq, _, ok := h.selection.Selected()
	return sq, ok
}

func (h *Human) Poll(_ context.Context, _ chess.Position) Decision {
	if !h.hasPending {
		return noMove()
	}
	mv := h.pending
	h.pending, h.hasPending = chess.Move{}, false
	return commitMove(mv)
}

func (h *Human) Reset() {
	h.selection.Clear()
	h.pending, h.hasPending = chess.Move{}, false
}
