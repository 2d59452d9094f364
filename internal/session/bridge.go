package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/park285/shake-chess/internal/chess"
)

// Fetcher performs the blocking lookup of a move for a FEN position.
type Fetcher interface {
	BestMove(ctx context.Context, fen string) (chess.Move, error)
}

// evicter is implemented by fetchers that remember answers, so a refused
// answer is not served again.
type evicter interface {
	Evict(ctx context.Context, fen string)
}

const evictTimeout = 2 * time.Second

type BridgeState int

const (
	BridgeIdle BridgeState = iota
	BridgePending
	BridgeReady
	BridgeFailed
)

func (s BridgeState) String() string {
	switch s {
	case BridgePending:
		return "pending"
	case BridgeReady:
		return "ready"
	case BridgeFailed:
		return "failed"
	default:
		return "idle"
	}
}

type BridgeOptions struct {
	// Timeout bounds one request. Zero means no deadline.
	Timeout time.Duration
	// RetryDelay is the minimum time spent in BridgeFailed before the next
	// request is launched.
	RetryDelay time.Duration
	Logger     *zap.Logger
	Now        func() time.Time
}

type fetchResult struct {
	move chess.Move
	err  error
}

// AsyncMoveBridge runs at most one Fetcher call at a time in the background
// and hands each result to the tick goroutine exactly once.
//
// Every request gets its own channel of capacity one. The worker sends its
// single result there and exits; Poll receives without blocking. Reset
// cancels the request and drops the channel, so a late result is never seen.
type AsyncMoveBridge struct {
	fetcher    Fetcher
	timeout    time.Duration
	retryDelay time.Duration
	logger     *zap.Logger
	now        func() time.Time

	mu       sync.Mutex
	state    BridgeState
	inflight chan fetchResult
	cancel   context.CancelFunc
	failedAt time.Time
	lastErr  error
	lastFEN  string
	requests uint64
}

func NewAsyncMoveBridge(fetcher Fetcher, opts BridgeOptions) *AsyncMoveBridge {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &AsyncMoveBridge{
		fetcher:    fetcher,
		timeout:    opts.Timeout,
		retryDelay: opts.RetryDelay,
		logger:     logger,
		now:        now,
	}
}

// Poll never blocks. It launches a request when idle, reports NoMove while
// the request is outstanding and returns Commit once for its result.
func (b *AsyncMoveBridge) Poll(ctx context.Context, pos chess.Position) Decision {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BridgeFailed:
		if b.now().Sub(b.failedAt) < b.retryDelay {
			return noMove()
		}
		b.state = BridgeIdle
		fallthrough
	case BridgeIdle:
		b.launchLocked(ctx, pos.FEN())
		return noMove()
	}

	select {
	case res := <-b.inflight:
		b.finishLocked()
		if res.err != nil {
			b.failLocked(res.err)
			return failed(res.err)
		}
		b.lastErr = nil
		return commitMove(res.move)
	default:
		return noMove()
	}
}

func (b *AsyncMoveBridge) launchLocked(parent context.Context, fen string) {
	if parent == nil {
		parent = context.Background()
	}
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if b.timeout > 0 {
		ctx, cancel = context.WithTimeout(parent, b.timeout)
	} else {
		ctx, cancel = context.WithCancel(parent)
	}
	ch := make(chan fetchResult, 1)
	b.inflight, b.cancel, b.state = ch, cancel, BridgePending
	b.lastFEN = fen
	b.requests++
	seq := b.requests
	b.logger.Debug("bridge_request_started", zap.Uint64("seq", seq), zap.String("fen", fen))

	fetcher := b.fetcher
	go func() {
		mv, err := fetcher.BestMove(ctx, fen)
		ch <- fetchResult{move: mv, err: err}
	}()
}

func (b *AsyncMoveBridge) finishLocked() {
	if b.cancel != nil {
		b.cancel()
	}
	b.inflight, b.cancel = nil, nil
	b.state = BridgeIdle
}

func (b *AsyncMoveBridge) failLocked(err error) {
	b.state = BridgeFailed
	b.failedAt = b.now()
	b.lastErr = err
	b.logger.Warn("bridge_request_failed", zap.Uint64("seq", b.requests), zap.Error(err))
}

// Rejected records that the last delivered move was refused, so the retry
// delay applies before asking again.
func (b *AsyncMoveBridge) Rejected(mv chess.Move, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != BridgeIdle {
		return
	}
	b.logger.Warn("bridge_move_rejected", zap.String("move", mv.String()), zap.Error(err))
	b.failLocked(err)
	if ev, ok := b.fetcher.(evicter); ok && b.lastFEN != "" {
		fen := b.lastFEN
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), evictTimeout)
			defer cancel()
			ev.Evict(ctx, fen)
		}()
	}
}

// Reset cancels any outstanding request and returns to idle.
func (b *AsyncMoveBridge) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cancel != nil {
		b.cancel()
	}
	b.inflight, b.cancel = nil, nil
	b.state = BridgeIdle
	b.failedAt = time.Time{}
	b.lastErr = nil
}

// State reports the current lifecycle state. A result that has arrived but
// has not been polled yet shows as BridgeReady.
func (b *AsyncMoveBridge) State() BridgeState {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == BridgePending && len(b.inflight) > 0 {
		return BridgeReady
	}
	return b.state
}

func (b *AsyncMoveBridge) LastError() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastErr
}

// Requests is the number of requests launched so far.
func (b *AsyncMoveBridge) Requests() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.requests
}
