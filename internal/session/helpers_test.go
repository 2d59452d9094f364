package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/park285/shake-chess/internal/chess"
)

func sq(t *testing.T, s string) chess.Square {
	t.Helper()
	v, err := chess.ParseSquare(s)
	if err != nil {
		t.Fatalf("square %q: %v", s, err)
	}
	return v
}

func uci(t *testing.T, s string) chess.Move {
	t.Helper()
	mv, err := chess.ParseUCI(s)
	if err != nil {
		t.Fatalf("move %q: %v", s, err)
	}
	return mv
}

// scripted replays a fixed list of moves, one per poll.
type scripted struct {
	moves []chess.Move
	next  int
	polls int
}

func (s *scripted) Kind() ProviderKind { return KindRandom }
func (s *scripted) Reset()             {}
func (s *scripted) Poll(_ context.Context, _ chess.Position) Decision {
	s.polls++
	if s.next >= len(s.moves) {
		return noMove()
	}
	mv := s.moves[s.next]
	s.next++
	return commitMove(mv)
}

type factoryFunc func(kind ProviderKind, side chess.Side) (MoveProvider, error)

func (f factoryFunc) NewProvider(kind ProviderKind, side chess.Side) (MoveProvider, error) {
	return f(kind, side)
}

// scriptedGame builds a controller whose sides replay the given UCI moves.
func scriptedGame(t *testing.T, white, black []string, opts ...func(*Config)) (*Controller, *scripted, *scripted) {
	t.Helper()
	w := &scripted{}
	for _, m := range white {
		w.moves = append(w.moves, uci(t, m))
	}
	b := &scripted{}
	for _, m := range black {
		b.moves = append(b.moves, uci(t, m))
	}
	cfg := Config{
		Mode: Mode{Name: "scripted", White: KindRandom, Black: KindRandom},
		Providers: factoryFunc(func(_ ProviderKind, side chess.Side) (MoveProvider, error) {
			if side == chess.White {
				return w, nil
			}
			return b, nil
		}),
	}
	for _, o := range opts {
		o(&cfg)
	}
	c, err := NewController(cfg)
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	return c, w, b
}

// blockingFetcher answers each BestMove call with the next value sent on
// release, or with the context error.
type blockingFetcher struct {
	mu      sync.Mutex
	fens    []string
	release chan fetchResult
	started chan struct{}
	exited  chan error
}

func newBlockingFetcher() *blockingFetcher {
	return &blockingFetcher{
		release: make(chan fetchResult),
		started: make(chan struct{}, 16),
		exited:  make(chan error, 16),
	}
}

func (f *blockingFetcher) BestMove(ctx context.Context, fen string) (chess.Move, error) {
	f.mu.Lock()
	f.fens = append(f.fens, fen)
	f.mu.Unlock()
	f.started <- struct{}{}
	select {
	case r := <-f.release:
		f.exited <- r.err
		return r.move, r.err
	case <-ctx.Done():
		f.exited <- ctx.Err()
		return chess.Move{}, ctx.Err()
	}
}

func (f *blockingFetcher) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.fens)
}

func waitSignal[T any](t *testing.T, ch <-chan T, what string) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
	var zero T
	return zero
}

// instantFetcher returns the same answer immediately.
type instantFetcher struct {
	mu    sync.Mutex
	move  chess.Move
	err   error
	count int
}

func (f *instantFetcher) BestMove(_ context.Context, _ string) (chess.Move, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.count++
	return f.move, f.err
}
