package observer

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/park285/shake-chess/pkg/sessiondto"
)

func TestWatcherFollowsSimulation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	hub := NewHub(nil)
	go hub.Run(ctx.Done())
	loop := newLoop(t, "sim", hub)
	go func() { _ = loop.Run(ctx) }()

	srv := httptest.NewServer(NewServer(loop, loop, hub).Routes())
	t.Cleanup(srv.Close)

	var (
		mu     sync.Mutex
		states []WatcherState
	)
	got := make(chan sessiondto.Snapshot, 64)
	wctx, wcancel := context.WithCancel(ctx)
	w := NewWatcher("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/",
		OnSnapshot(func(s sessiondto.Snapshot) {
			select {
			case got <- s:
			default:
			}
		}),
		OnState(func(s WatcherState) {
			mu.Lock()
			states = append(states, s)
			mu.Unlock()
		}),
	)
	done := make(chan error, 1)
	go func() { done <- w.Run(wctx) }()

	for {
		select {
		case s := <-got:
			if s.Ply >= 2 {
				wcancel()
				if err := <-done; !errors.Is(err, context.Canceled) {
					t.Fatalf("Run returned %v", err)
				}
				mu.Lock()
				defer mu.Unlock()
				if states[0] != WatcherConnecting || states[len(states)-1] != WatcherClosed {
					t.Fatalf("states %v", states)
				}
				return
			}
		case <-ctx.Done():
			t.Fatalf("no progress from simulation")
		}
	}
}

func TestWatcherGivesUp(t *testing.T) {
	srv := httptest.NewServer(nil)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/"
	srv.Close()

	w := NewWatcher(url, WithMaxAttempts(2))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := w.Run(ctx)
	if err == nil || errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("want give-up error, got %v", err)
	}
	if err := w.Send(ctx, sessiondto.Command{Type: sessiondto.CommandRestart}); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("Send = %v", err)
	}
}

func TestBackoffDuration(t *testing.T) {
	if backoffDuration(0) != 100*time.Millisecond || backoffDuration(3) != 400*time.Millisecond {
		t.Fatalf("unexpected backoff")
	}
	if backoffDuration(50) != backoffDuration(6) {
		t.Fatalf("backoff should cap")
	}
}
