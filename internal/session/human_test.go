package session

import (
	"context"
	"testing"

	"github.com/park285/shake-chess/internal/chess"
)

func TestSelectionStateMachine(t *testing.T) {
	pos := chess.NewPosition()
	var s Selection

	if _, ok := s.Click(pos, chess.White, sq(t, "e5")); ok {
		t.Fatalf("empty square with nothing selected must be a no-op")
	}
	if _, ok := s.Click(pos, chess.White, sq(t, "e7")); ok {
		t.Fatalf("enemy piece with nothing selected must be a no-op")
	}
	if _, _, selected := s.Selected(); selected {
		t.Fatalf("nothing should be selected")
	}

	s.Click(pos, chess.White, sq(t, "d2"))
	s.Click(pos, chess.White, sq(t, "c2"))
	if got, _, _ := s.Selected(); got.String() != "c2" {
		t.Fatalf("reselect should switch to c2, got %s", got)
	}
	mv, ok := s.Click(pos, chess.White, sq(t, "c4"))
	if !ok || mv.String() != "c2c4" {
		t.Fatalf("want candidate c2c4, got %s (%v)", mv, ok)
	}
	if _, _, selected := s.Selected(); selected {
		t.Fatalf("candidate should clear the selection")
	}
}

func TestHumanPollDeliversOnce(t *testing.T) {
	pos := chess.NewPosition()
	h := NewHuman(chess.White)
	if d := h.Poll(context.Background(), pos); d.Kind != DecisionNoMove {
		t.Fatalf("no input yet: %s", d.Kind)
	}
	h.Click(pos, sq(t, "d2"))
	h.Click(pos, sq(t, "d4"))
	d := h.Poll(context.Background(), pos)
	if d.Kind != DecisionCommit || d.Move != chess.NewMove(sq(t, "d2"), sq(t, "d4")) {
		t.Fatalf("want commit d2d4, got %s %s", d.Kind, d.Move)
	}
	if d := h.Poll(context.Background(), pos); d.Kind != DecisionNoMove {
		t.Fatalf("candidate delivered twice")
	}

	h.Click(pos, sq(t, "g1"))
	h.Reset()
	if _, ok := h.Selected(); ok {
		t.Fatalf("reset should clear the selection")
	}
}

func TestTurnSelectorCommit(t *testing.T) {
	pos := chess.NewPosition()
	ts := NewTurnSelector(chess.White)

	if _, err := ts.Commit(pos, uci(t, "e2e5")); err == nil {
		t.Fatalf("illegal move accepted")
	}
	if ts.ToMove() != chess.White {
		t.Fatalf("rejection flipped the turn")
	}

	c, err := ts.Commit(pos, uci(t, "g1f3"))
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if c.Active {
		t.Fatalf("knight development is not active")
	}
	if ts.ToMove() != chess.Black || c.Position.Turn() != chess.Black {
		t.Fatalf("turn did not flip")
	}
	c, err = ts.Commit(c.Position, uci(t, "e7e5"))
	if err != nil || !c.Active {
		t.Fatalf("pawn move should be active (err=%v)", err)
	}
}

func TestRandomLocalAlwaysCommitsLegalMove(t *testing.T) {
	r := NewRandomLocal(1)
	pos := chess.NewPosition()
	for i := 0; i < 50; i++ {
		d := r.Poll(context.Background(), pos)
		if d.Kind != DecisionCommit {
			t.Fatalf("random provider returned %s", d.Kind)
		}
		if !pos.IsLegal(d.Move) {
			t.Fatalf("illegal move %s", d.Move)
		}
	}
}

func TestRandomLocalSeedIsDeterministic(t *testing.T) {
	a, b := NewRandomLocal(99), NewRandomLocal(99)
	pos := chess.NewPosition()
	for i := 0; i < 10; i++ {
		if a.Poll(context.Background(), pos).Move != b.Poll(context.Background(), pos).Move {
			t.Fatalf("same seed diverged at %d", i)
		}
	}
}

func TestParseModeAndOverrides(t *testing.T) {
	m, err := ParseMode("VS-AI")
	if err != nil || m.White != KindHuman || m.Black != KindRandom {
		t.Fatalf("vsai: %+v %v", m, err)
	}
	m, err = m.WithOverrides("", "stockfish")
	if err != nil || m.Black != KindRemote || m.Name != "custom" {
		t.Fatalf("override: %+v %v", m, err)
	}
	if _, err := ParseMode("blitz"); err == nil {
		t.Fatalf("unknown mode accepted")
	}
	if _, err := m.WithOverrides("robot", ""); err == nil {
		t.Fatalf("unknown provider accepted")
	}
}
