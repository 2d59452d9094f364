package observer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/park285/shake-chess/pkg/sessiondto"
)

type WatcherState string

const (
	WatcherConnecting   WatcherState = "connecting"
	WatcherConnected    WatcherState = "connected"
	WatcherReconnecting WatcherState = "reconnecting"
	WatcherFailed       WatcherState = "failed"
	WatcherClosed       WatcherState = "closed"
)

var ErrNotConnected = errors.New("watcher not connected")

// Watcher follows a session's /ws/ stream and reconnects with backoff when
// the connection drops.
type Watcher struct {
	url         string
	maxAttempts int
	dialTimeout time.Duration
	logger      *zap.Logger

	onSnapshot func(sessiondto.Snapshot)
	onEvent    func(EventPayload)
	onState    func(WatcherState)

	mu   sync.Mutex
	conn *websocket.Conn
}

type WatcherOption func(*Watcher)

func OnSnapshot(fn func(sessiondto.Snapshot)) WatcherOption {
	return func(w *Watcher) { w.onSnapshot = fn }
}

func OnEvent(fn func(EventPayload)) WatcherOption {
	return func(w *Watcher) { w.onEvent = fn }
}

func OnState(fn func(WatcherState)) WatcherOption {
	return func(w *Watcher) { w.onState = fn }
}

// WithMaxAttempts bounds consecutive failed connection attempts; 0 retries
// forever.
func WithMaxAttempts(n int) WatcherOption {
	return func(w *Watcher) { w.maxAttempts = n }
}

func WithWatcherLogger(l *zap.Logger) WatcherOption {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

func NewWatcher(url string, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		url:         url,
		dialTimeout: 10 * time.Second,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run blocks until ctx is done or the attempt budget is spent.
func (w *Watcher) Run(ctx context.Context) error {
	failures := 0
	for {
		w.setState(WatcherConnecting)
		connected, err := w.follow(ctx)
		if ctx.Err() != nil {
			w.setState(WatcherClosed)
			return ctx.Err()
		}
		if connected {
			failures = 0
		}
		failures++
		w.logger.Debug("watcher_disconnected", zap.Int("attempt", failures), zap.Error(err))
		if w.maxAttempts > 0 && failures >= w.maxAttempts {
			w.setState(WatcherFailed)
			return fmt.Errorf("watcher: giving up after %d attempts: %w", failures, err)
		}
		w.setState(WatcherReconnecting)
		select {
		case <-ctx.Done():
			w.setState(WatcherClosed)
			return ctx.Err()
		case <-time.After(backoffDuration(failures)):
		}
	}
}

// Send forwards a command over the live connection.
func (w *Watcher) Send(ctx context.Context, cmd sessiondto.Command) error {
	w.mu.Lock()
	conn := w.conn
	w.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}
	return wsjson.Write(ctx, conn, cmd)
}

func (w *Watcher) follow(ctx context.Context) (bool, error) {
	dialCtx, cancel := context.WithTimeout(ctx, w.dialTimeout)
	conn, _, err := websocket.Dial(dialCtx, w.url, &websocket.DialOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	cancel()
	if err != nil {
		return false, err
	}
	conn.SetReadLimit(1 << 20)

	w.mu.Lock()
	w.conn = conn
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		w.conn = nil
		w.mu.Unlock()
		conn.Close(websocket.StatusNormalClosure, "")
	}()
	w.setState(WatcherConnected)

	for {
		var msg Message
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			return true, err
		}
		w.dispatch(msg)
	}
}

func (w *Watcher) dispatch(msg Message) {
	switch msg.Type {
	case MessageSnapshot:
		if w.onSnapshot == nil {
			return
		}
		var snap sessiondto.Snapshot
		if err := json.Unmarshal(msg.Payload, &snap); err != nil {
			w.logger.Warn("watcher_bad_snapshot", zap.Error(err))
			return
		}
		w.onSnapshot(snap)
	case MessageEvent:
		if w.onEvent == nil {
			return
		}
		var ev EventPayload
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			w.logger.Warn("watcher_bad_event", zap.Error(err))
			return
		}
		w.onEvent(ev)
	default:
		w.logger.Debug("watcher_message_ignored", zap.String("type", msg.Type))
	}
}

func (w *Watcher) setState(s WatcherState) {
	if w.onState != nil {
		w.onState(s)
	}
}

func backoffDuration(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	return time.Duration(1<<uint(attempt-1)) * 100 * time.Millisecond
}
