package session

import "testing"

func TestRepetitionGuardFiftyQuietPlies(t *testing.T) {
	g := NewRepetitionGuard()
	if g.ShouldDraw() {
		t.Fatalf("fresh guard must not draw")
	}
	for i := 0; i < InactivityWindow-1; i++ {
		g.Push(false)
		if g.ShouldDraw() {
			t.Fatalf("draw after %d quiet plies", i+1)
		}
	}
	g.Push(false)
	if !g.ShouldDraw() {
		t.Fatalf("expected draw after %d quiet plies", InactivityWindow)
	}
	if q := g.Quiet(); q != InactivityWindow {
		t.Fatalf("quiet = %d", q)
	}
}

func TestRepetitionGuardActivityRestartsWindow(t *testing.T) {
	g := NewRepetitionGuard()
	for i := 0; i < 30; i++ {
		g.Push(false)
	}
	g.Push(true)
	for i := 0; i < InactivityWindow-1; i++ {
		g.Push(false)
		if g.ShouldDraw() {
			t.Fatalf("draw while the capture is still inside the window (ply %d)", i+1)
		}
	}
	if q := g.Quiet(); q != InactivityWindow-1 {
		t.Fatalf("quiet = %d", q)
	}
	g.Push(false)
	if !g.ShouldDraw() {
		t.Fatalf("capture left the window; expected draw")
	}
}

// The guard draws iff none of the last W pushes (counting the initial fill)
// was true.
func TestRepetitionGuardMatchesSlidingWindow(t *testing.T) {
	pattern := []bool{true, false, false, true, false}
	g := NewRepetitionGuard()
	history := make([]bool, InactivityWindow)
	for i := range history {
		history[i] = true
	}
	for i := 0; i < 400; i++ {
		active := pattern[i%len(pattern)] && i < 120
		g.Push(active)
		history = append(history, active)
		want := true
		for _, a := range history[len(history)-InactivityWindow:] {
			if a {
				want = false
				break
			}
		}
		if got := g.ShouldDraw(); got != want {
			t.Fatalf("push %d: should_draw=%v want %v", i, got, want)
		}
	}
}

func TestRepetitionGuardReset(t *testing.T) {
	g := NewRepetitionGuard()
	for i := 0; i < InactivityWindow; i++ {
		g.Push(false)
	}
	g.Reset()
	if g.ShouldDraw() || g.Quiet() != 0 {
		t.Fatalf("reset should refill the window")
	}
}
