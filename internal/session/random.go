package session

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/park285/shake-chess/internal/chess"
)

// RandomLocal picks uniformly among the legal moves.
type RandomLocal struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomLocal seeds the chooser; seed 0 uses the clock.
func NewRandomLocal(seed int64) *RandomLocal {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandomLocal{rng: rand.New(rand.NewSource(seed))}
}

func (r *RandomLocal) Kind() ProviderKind { return KindRandom }

func (r *RandomLocal) Poll(_ context.Context, pos chess.Position) Decision {
	legal := pos.LegalMoves()
	if len(legal) == 0 {
		return failed(ErrNoLegalMoves)
	}
	r.mu.Lock()
	idx := r.rng.Intn(len(legal))
	r.mu.Unlock()
	return commitMove(legal[idx])
}

func (r *RandomLocal) Reset() {}
