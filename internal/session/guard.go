package session

// InactivityWindow is the number of plies tracked by RepetitionGuard.
const InactivityWindow = 50

// RepetitionGuard records, per ply, whether the move was a capture or a
// pawn move. When a whole window passes without one, the game is drawn.
// The window starts filled with true so the draw cannot fire before
// InactivityWindow real plies have been recorded.
type RepetitionGuard struct {
	activity [InactivityWindow]bool
	next     int
}

func NewRepetitionGuard() *RepetitionGuard {
	g := &RepetitionGuard{}
	g.Reset()
	return g
}

// Push stores one ply's activity flag and advances the cursor.
func (g *RepetitionGuard) Push(active bool) {
	g.activity[g.next] = active
	g.next = (g.next + 1) % InactivityWindow
}

func (g *RepetitionGuard) ShouldDraw() bool {
	for _, a := range g.activity {
		if a {
			return false
		}
	}
	return true
}

// Quiet returns how many of the most recent plies were inactive, capped at
// the window size.
func (g *RepetitionGuard) Quiet() int {
	n := 0
	for i := 1; i <= InactivityWindow; i++ {
		idx := (g.next - i + InactivityWindow) % InactivityWindow
		if g.activity[idx] {
			break
		}
		n++
	}
	return n
}

func (g *RepetitionGuard) Reset() {
	for i := range g.activity {
		g.activity[i] = true
	}
	g.next = 0
}
