package session

import (
	"context"

	"github.com/park285/shake-chess/internal/chess"
)

// RemoteEngine sources moves from a remote service through an
// AsyncMoveBridge.
type RemoteEngine struct {
	bridge *AsyncMoveBridge
}

func NewRemoteEngine(bridge *AsyncMoveBridge) *RemoteEngine {
	return &RemoteEngine{bridge: bridge}
}

func (r *RemoteEngine) Kind() ProviderKind { return KindRemote }

func (r *RemoteEngine) Poll(ctx context.Context, pos chess.Position) Decision {
	return r.bridge.Poll(ctx, pos)
}

func (r *RemoteEngine) Reset() { r.bridge.Reset() }

func (r *RemoteEngine) Rejected(mv chess.Move, err error) { r.bridge.Rejected(mv, err) }

func (r *RemoteEngine) Bridge() *AsyncMoveBridge { return r.bridge }
