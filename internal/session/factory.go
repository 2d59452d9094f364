package session

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/park285/shake-chess/internal/chess"
)

// ProviderFactory builds the provider for one side of a new game.
type ProviderFactory interface {
	NewProvider(kind ProviderKind, side chess.Side) (MoveProvider, error)
}

// Providers is the default ProviderFactory.
type Providers struct {
	// Seed for RandomLocal; 0 seeds from the clock. Black uses Seed+1 so
	// the two sides do not mirror each other in sim mode.
	Seed       int64
	Fetcher    Fetcher
	Timeout    time.Duration
	RetryDelay time.Duration
	Logger     *zap.Logger
}

func (p *Providers) NewProvider(kind ProviderKind, side chess.Side) (MoveProvider, error) {
	switch kind {
	case KindHuman:
		return NewHuman(side), nil
	case KindRandom:
		seed := p.Seed
		if seed != 0 && side == chess.Black {
			seed++
		}
		return NewRandomLocal(seed), nil
	case KindRemote:
		if p.Fetcher == nil {
			return nil, ErrRemoteUnconfigured
		}
		logger := p.Logger
		if logger == nil {
			logger = zap.NewNop()
		}
		bridge := NewAsyncMoveBridge(p.Fetcher, BridgeOptions{
			Timeout:    p.Timeout,
			RetryDelay: p.RetryDelay,
			Logger:     logger.With(zap.String("side", side.String())),
		})
		return NewRemoteEngine(bridge), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, kind)
	}
}
