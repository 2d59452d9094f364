package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/park285/shake-chess/internal/chess"
	"github.com/park285/shake-chess/pkg/sessiondto"
)

const commandQueueSize = 64

// Loop drives a Controller from a ticker. It is the only goroutine that
// touches the controller; other goroutines queue commands with Submit and
// read the last published snapshot.
type Loop struct {
	controller *Controller
	interval   time.Duration
	commands   chan sessiondto.Command
	logger     *zap.Logger

	mu       sync.RWMutex
	snapshot sessiondto.Snapshot
}

func NewLoop(controller *Controller, interval time.Duration, logger *zap.Logger) *Loop {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	l := &Loop{
		controller: controller,
		interval:   interval,
		commands:   make(chan sessiondto.Command, commandQueueSize),
		logger:     logger,
	}
	l.snapshot = controller.Snapshot()
	return l
}

// Submit queues cmd for the next tick. It returns false when the queue is
// full.
func (l *Loop) Submit(cmd sessiondto.Command) bool {
	select {
	case l.commands <- cmd:
		return true
	default:
		l.logger.Warn("command_dropped", zap.String("type", cmd.Type))
		return false
	}
}

// Snapshot returns the state published after the most recent tick.
func (l *Loop) Snapshot() sessiondto.Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snapshot
}

func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	l.logger.Info("session_loop_started", zap.Duration("interval", l.interval))
	for {
		select {
		case <-ctx.Done():
			l.controller.resetProviders()
			l.logger.Info("session_loop_stopped")
			return ctx.Err()
		case <-ticker.C:
			l.Step(ctx)
		}
	}
}

// Step drains queued commands, ticks the controller once and publishes the
// resulting snapshot.
func (l *Loop) Step(ctx context.Context) {
drain:
	for {
		select {
		case cmd := <-l.commands:
			if err := l.apply(cmd); err != nil {
				l.logger.Debug("command_failed", zap.String("type", cmd.Type), zap.Error(err))
			}
		default:
			break drain
		}
	}
	l.controller.Tick(ctx)
	snap := l.controller.Snapshot()
	l.mu.Lock()
	l.snapshot = snap
	l.mu.Unlock()
}

func (l *Loop) apply(cmd sessiondto.Command) error {
	switch strings.ToLower(strings.TrimSpace(cmd.Type)) {
	case sessiondto.CommandClick:
		if strings.TrimSpace(cmd.Square) == "" {
			return l.controller.ClickOffBoard()
		}
		sq, err := chess.ParseSquare(cmd.Square)
		if err != nil {
			return l.controller.ClickOffBoard()
		}
		return l.controller.Click(sq)
	case sessiondto.CommandRestart:
		l.controller.Restart()
		return nil
	case sessiondto.CommandMenu:
		l.controller.ReturnToMenu()
		return nil
	case sessiondto.CommandStart:
		mode := l.controller.Mode()
		if strings.TrimSpace(cmd.Mode) != "" {
			m, err := ParseMode(cmd.Mode)
			if err != nil {
				return err
			}
			mode = m
		}
		return l.controller.Start(mode)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Type)
	}
}
