package movecache

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/park285/shake-chess/internal/chess"
)

// Upstream is the uncached move source.
type Upstream interface {
	BestMove(ctx context.Context, fen string) (chess.Move, error)
}

// Fetcher answers from the store when it can and otherwise asks upstream,
// remembering answers that are legal in the queried position. Store failures
// never fail a lookup.
type Fetcher struct {
	upstream  Upstream
	store     Store
	ttl       time.Duration
	namespace string
	logger    *zap.Logger
}

type FetcherOption func(*Fetcher)

// WithNamespace separates entries produced under different settings, such
// as search depth.
func WithNamespace(ns string) FetcherOption { return func(f *Fetcher) { f.namespace = ns } }

func WithTTL(ttl time.Duration) FetcherOption { return func(f *Fetcher) { f.ttl = ttl } }

func WithLogger(l *zap.Logger) FetcherOption {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

func NewFetcher(upstream Upstream, store Store, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		upstream: upstream,
		store:    store,
		ttl:      24 * time.Hour,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Fetcher) key(fen string) string {
	if f.namespace == "" {
		return PositionKey(fen)
	}
	return f.namespace + ":" + PositionKey(fen)
}

func (f *Fetcher) BestMove(ctx context.Context, fen string) (chess.Move, error) {
	key := f.key(fen)
	pos, perr := chess.PositionFromFEN(fen)
	if perr != nil {
		// nothing to check answers against; go straight upstream
		f.logger.Debug("move_cache_bypass", zap.String("fen", fen), zap.Error(perr))
		return f.upstream.BestMove(ctx, fen)
	}

	if raw, ok, err := f.store.Get(ctx, key); err != nil {
		f.logger.Warn("move_cache_get_error", zap.Error(err))
	} else if ok {
		mv, err := chess.ParseUCI(raw)
		if err == nil && pos.IsLegal(mv) {
			f.logger.Debug("move_cache_hit", zap.String("key", key), zap.String("move", raw))
			return mv, nil
		}
		f.logger.Warn("move_cache_bad_entry", zap.String("key", key), zap.String("value", raw))
		f.evict(ctx, key)
	}

	mv, err := f.upstream.BestMove(ctx, fen)
	if err != nil {
		return chess.Move{}, err
	}
	if !pos.IsLegal(mv) {
		return chess.Move{}, fmt.Errorf("upstream answer %s: %w", mv, chess.ErrIllegalMove)
	}
	if err := f.store.Set(ctx, key, mv.String(), f.ttl); err != nil {
		f.logger.Warn("move_cache_set_error", zap.Error(err))
	}
	return mv, nil
}

// Evict forgets the cached answer for fen.
func (f *Fetcher) Evict(ctx context.Context, fen string) {
	f.evict(ctx, f.key(fen))
}

func (f *Fetcher) evict(ctx context.Context, key string) {
	if err := f.store.Delete(ctx, key); err != nil {
		f.logger.Warn("move_cache_delete_error", zap.String("key", key), zap.Error(err))
	}
}
