package remoteengine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	nchess "github.com/corentings/chess/v2"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func TestParseBestMove(t *testing.T) {
	cases := []struct {
		in   string
		want string
		err  bool
	}{
		{in: "bestmove e2e4 ponder e7e5", want: "e2e4"},
		{in: "e2e4 e7e5 g1f3", want: "e2e4"},
		{in: "  BESTMOVE g1f3", want: "g1f3"},
		{in: "bestmove e7e8q", want: "e7e8q"},
		{in: "bestmove (none)", err: true},
		{in: "bestmove", err: true},
		{in: "", err: true},
		{in: "bestmove e2", err: true},
		{in: "bestmove e7e8x", err: true},
	}
	for _, tc := range cases {
		mv, err := ParseBestMove(tc.in)
		if tc.err {
			if !errors.Is(err, ErrMalformedMove) {
				t.Fatalf("%q: want ErrMalformedMove, got %v", tc.in, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: %v", tc.in, err)
		}
		if mv.String() != tc.want {
			t.Fatalf("%q: got %s want %s", tc.in, mv, tc.want)
		}
	}
}

func TestBestMoveParsesServiceResponse(t *testing.T) {
	var (
		mu     sync.Mutex
		gotFEN string
		gotDep string
		gotKey string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotFEN = r.URL.Query().Get("fen")
		gotDep = r.URL.Query().Get("depth")
		gotKey = r.Header.Get("X-Api-Key")
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"success":true,"evaluation":0.3,"mate":null,"bestmove":"bestmove e2e4 ponder e7e5","continuation":"e2e4 e7e5"}`)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL,
		WithDepth(8),
		WithHeaderProvider(func() map[string]string { return map[string]string{"X-Api-Key": "k1"} }),
	)
	mv, err := c.BestMove(context.Background(), startFEN)
	if err != nil {
		t.Fatalf("best move: %v", err)
	}
	if mv.From.String() != "e2" || mv.To.String() != "e4" || mv.Promo != nchess.NoPieceType {
		t.Fatalf("unexpected move %+v", mv)
	}

	mu.Lock()
	defer mu.Unlock()
	if gotFEN != startFEN {
		t.Fatalf("server saw fen %q", gotFEN)
	}
	if gotDep != "8" || gotKey != "k1" {
		t.Fatalf("depth=%q key=%q", gotDep, gotKey)
	}
}

func TestBestMoveErrors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{name: "server error", status: http.StatusBadGateway, body: "upstream down", want: ErrUnavailable},
		{name: "not json", status: http.StatusOK, body: "<html>", want: ErrMalformedResponse},
		{name: "explicit failure", status: http.StatusOK, body: `{"success":false,"data":"Invalid fen"}`, want: ErrMalformedResponse},
		{name: "missing move", status: http.StatusOK, body: `{"success":true}`, want: ErrMalformedResponse},
		{name: "no legal move", status: http.StatusOK, body: `{"success":true,"bestmove":"bestmove (none)"}`, want: ErrMalformedMove},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				fmt.Fprint(w, tc.body)
			}))
			t.Cleanup(srv.Close)

			_, err := NewClient(srv.URL).BestMove(context.Background(), startFEN)
			if !errors.Is(err, tc.want) {
				t.Fatalf("want %v, got %v", tc.want, err)
			}
		})
	}
}

func TestBestMoveTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-time.After(2 * time.Second):
		}
		fmt.Fprint(w, `{"bestmove":"bestmove e2e4"}`)
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	c := NewClient(srv.URL, WithTimeout(50*time.Millisecond))
	_, err := c.BestMove(context.Background(), startFEN)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("want ErrUnavailable, got %v", err)
	}
}

func TestBestMoveCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewClient("http://127.0.0.1:1").BestMove(ctx, startFEN)
	if !errors.Is(err, ErrUnavailable) || !errors.Is(err, context.Canceled) {
		t.Fatalf("want unavailable+canceled, got %v", err)
	}
}

func TestRequestURLKeepsExistingQuery(t *testing.T) {
	c := NewClient("https://example.test/api?key=abc", WithDepth(0))
	got := c.requestURL("8/8/8/8/8/8/8/K6k w - - 0 1")
	want := "https://example.test/api?key=abc&fen=8%2F8%2F8%2F8%2F8%2F8%2F8%2FK6k+w+-+-+0+1"
	if got != want {
		t.Fatalf("got %s\nwant %s", got, want)
	}
}

func TestClientOptions(t *testing.T) {
	c := NewClient("", WithMaxConnsPerHost(2), WithTimeout(0), WithDepth(5))
	if c.baseURL != DefaultURL {
		t.Fatalf("base url = %s", c.baseURL)
	}
	if c.http.MaxConnsPerHost != 2 || c.depth != 5 {
		t.Fatalf("options not applied: conns=%d depth=%d", c.http.MaxConnsPerHost, c.depth)
	}
	if c.defaultTimeout != 10*time.Second {
		t.Fatalf("zero timeout should keep the default, got %s", c.defaultTimeout)
	}
}
