package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/park285/shake-chess/internal/chess"
	"github.com/park285/shake-chess/pkg/sessiondto"
)

type Phase int

const (
	PhaseMenu Phase = iota
	PhasePlaying
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhasePlaying:
		return "playing"
	case PhaseEnded:
		return "ended"
	default:
		return "menu"
	}
}

type ResultKind int

const (
	ResultOngoing ResultKind = iota
	ResultWin
	ResultDraw
)

func (k ResultKind) String() string {
	switch k {
	case ResultWin:
		return "win"
	case ResultDraw:
		return "draw"
	default:
		return "ongoing"
	}
}

type EndReason string

const (
	ReasonNone       EndReason = ""
	ReasonCheckmate  EndReason = "checkmate"
	ReasonStalemate  EndReason = "stalemate"
	ReasonInactivity EndReason = "inactivity"
	ReasonRulesDraw  EndReason = "rules_draw"
)

// Result is set once when a game ends and stays fixed until reset.
type Result struct {
	Kind   ResultKind
	Winner chess.Side
	Reason EndReason
	// Method is the rules engine's name for a ReasonRulesDraw ending.
	Method string
}

type EventType string

const (
	EventStarted        EventType = "started"
	EventTurnCompleted  EventType = "turn_completed"
	EventEnded          EventType = "ended"
	EventReset          EventType = "reset"
	EventMenu           EventType = "menu"
	EventSelection      EventType = "selection"
	EventMoveRejected   EventType = "move_rejected"
	EventProviderFailed EventType = "provider_failed"
)

type Event struct {
	Type     EventType
	Side     chess.Side
	Move     chess.Move
	Err      error
	Snapshot sessiondto.Snapshot
}

// Listener receives controller events on the tick goroutine. It must not
// block.
type Listener interface {
	OnSessionEvent(Event)
}

type ListenerFunc func(Event)

func (f ListenerFunc) OnSessionEvent(e Event) { f(e) }

// Messages renders headline text; *msgcat.Catalog satisfies it.
type Messages interface {
	Render(key string, data any) (string, error)
}

type Config struct {
	Mode      Mode
	StartFEN  string
	Providers ProviderFactory
	Messages  Messages
	Listener  Listener
	Logger    *zap.Logger
	// StartInMenu leaves the controller in PhaseMenu until Start is called.
	StartInMenu bool
	// AutoRestart starts a new game this long after one ends; zero disables.
	AutoRestart time.Duration
	Now         func() time.Time
}

// Controller owns a game session and advances it one tick at a time. All
// methods must be called from a single goroutine.
type Controller struct {
	id        string
	mode      Mode
	startFEN  string
	start     chess.Position
	factory   ProviderFactory
	messages  Messages
	listener  Listener
	logger    *zap.Logger
	autoStart time.Duration
	now       func() time.Time

	pos       chess.Position
	guard     *RepetitionGuard
	turn      *TurnSelector
	providers [2]MoveProvider
	phase     Phase
	result    Result
	ply       int
	lastMove  *chess.Move
	lastErr   error
	endedAt   time.Time
}

func NewController(cfg Config) (*Controller, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	factory := cfg.Providers
	if factory == nil {
		factory = &Providers{Logger: logger}
	}
	start, err := chess.PositionFromFEN(cfg.StartFEN)
	if err != nil {
		return nil, err
	}
	c := &Controller{
		mode:      cfg.Mode,
		startFEN:  cfg.StartFEN,
		start:     start,
		factory:   factory,
		messages:  cfg.Messages,
		listener:  cfg.Listener,
		logger:    logger,
		autoStart: cfg.AutoRestart,
		now:       now,
		guard:     NewRepetitionGuard(),
		turn:      NewTurnSelector(start.Turn()),
	}
	if c.mode.Name == "" {
		c.mode = presets["vsai"]
	}
	if cfg.StartInMenu {
		c.resetBoard()
		c.phase = PhaseMenu
		return c, nil
	}
	if err := c.Start(c.mode); err != nil {
		return nil, err
	}
	return c, nil
}

// Start begins a new game in mode. Any running game is discarded.
func (c *Controller) Start(mode Mode) error {
	var providers [2]MoveProvider
	for _, side := range []chess.Side{chess.White, chess.Black} {
		p, err := c.factory.NewProvider(mode.For(side), side)
		if err != nil {
			return fmt.Errorf("%s player: %w", side, err)
		}
		providers[side] = p
	}
	c.resetProviders()
	c.providers = providers
	c.mode = mode
	c.resetBoard()
	c.phase = PhasePlaying
	c.logger.Info("session_started",
		zap.String("session_id", c.id),
		zap.String("mode", mode.Name),
		zap.String("white", string(mode.White)),
		zap.String("black", string(mode.Black)),
	)
	c.emit(Event{Type: EventStarted, Side: c.turn.ToMove()})
	// a custom start position may already be decided
	c.evaluate()
	return nil
}

// Restart begins a new game with the current mode.
func (c *Controller) Restart() {
	if c.phase == PhaseMenu {
		return
	}
	c.resetProviders()
	c.resetBoard()
	c.phase = PhasePlaying
	c.logger.Info("session_restarted", zap.String("session_id", c.id))
	c.emit(Event{Type: EventReset, Side: c.turn.ToMove()})
	c.evaluate()
}

// ReturnToMenu abandons the current game.
func (c *Controller) ReturnToMenu() {
	c.resetProviders()
	c.resetBoard()
	c.phase = PhaseMenu
	c.emit(Event{Type: EventMenu})
}

func (c *Controller) resetBoard() {
	c.id = uuid.NewString()
	c.pos = c.start
	c.guard.Reset()
	c.turn.Reset(c.start.Turn())
	c.result = Result{}
	c.ply = 0
	c.lastMove = nil
	c.lastErr = nil
	c.endedAt = time.Time{}
}

func (c *Controller) resetProviders() {
	for _, p := range c.providers {
		if p != nil {
			p.Reset()
		}
	}
}

// Tick advances the session by at most one committed move.
func (c *Controller) Tick(ctx context.Context) {
	switch c.phase {
	case PhaseEnded:
		if c.autoStart > 0 && c.now().Sub(c.endedAt) >= c.autoStart {
			c.Restart()
		}
		return
	case PhaseMenu:
		return
	}

	side := c.turn.ToMove()
	provider := c.providers[side]
	decision := provider.Poll(ctx, c.pos)
	switch decision.Kind {
	case DecisionNoMove:
		return
	case DecisionFailed:
		c.lastErr = decision.Err
		c.logger.Warn("provider_failed",
			zap.String("session_id", c.id),
			zap.String("side", side.String()),
			zap.String("provider", string(provider.Kind())),
			zap.Error(decision.Err),
		)
		c.emit(Event{Type: EventProviderFailed, Side: side, Err: decision.Err})
		return
	}

	commit, err := c.turn.Commit(c.pos, decision.Move)
	if err != nil {
		c.logger.Debug("move_rejected",
			zap.String("session_id", c.id),
			zap.String("side", side.String()),
			zap.String("move", decision.Move.String()),
			zap.Error(err),
		)
		if ra, ok := provider.(rejectionAware); ok {
			ra.Rejected(decision.Move, err)
		}
		if !errors.Is(err, ErrIllegalMove) {
			c.lastErr = err
		}
		c.emit(Event{Type: EventMoveRejected, Side: side, Move: decision.Move, Err: err})
		return
	}

	c.pos = commit.Position
	c.guard.Push(commit.Active)
	c.ply++
	mv := commit.Move
	c.lastMove = &mv
	c.lastErr = nil
	c.logger.Info("session_move",
		zap.String("session_id", c.id),
		zap.String("side", side.String()),
		zap.String("provider", string(provider.Kind())),
		zap.String("move", mv.String()),
		zap.Int("ply", c.ply),
		zap.Bool("active", commit.Active),
	)
	c.emit(Event{Type: EventTurnCompleted, Side: side, Move: mv})
	c.evaluate()
}

// evaluate checks the end conditions in order: inactivity window, then the
// rules engine's verdict.
func (c *Controller) evaluate() {
	if c.phase != PhasePlaying {
		return
	}
	if c.guard.ShouldDraw() {
		c.end(Result{Kind: ResultDraw, Reason: ReasonInactivity})
		return
	}
	st := c.pos.Status()
	switch st.Kind {
	case chess.StatusStalemate:
		c.end(Result{Kind: ResultDraw, Reason: ReasonStalemate})
	case chess.StatusCheckmate:
		c.end(Result{Kind: ResultWin, Winner: c.pos.Turn().Opponent(), Reason: ReasonCheckmate})
	case chess.StatusDrawn:
		c.end(Result{Kind: ResultDraw, Reason: ReasonRulesDraw, Method: st.Method})
	}
}

func (c *Controller) end(r Result) {
	c.result = r
	c.phase = PhaseEnded
	c.endedAt = c.now()
	c.resetProviders()
	fields := []zap.Field{
		zap.String("session_id", c.id),
		zap.String("result", r.Kind.String()),
		zap.String("reason", string(r.Reason)),
		zap.Int("ply", c.ply),
	}
	if r.Kind == ResultWin {
		fields = append(fields, zap.String("winner", r.Winner.String()))
	}
	c.logger.Info("session_ended", fields...)
	c.emit(Event{Type: EventEnded, Side: r.Winner})
}

// Click routes a board click to the human playing the side to move.
func (c *Controller) Click(sq chess.Square) error {
	h, err := c.activeHuman()
	if err != nil {
		return err
	}
	h.Click(c.pos, sq)
	c.emit(Event{Type: EventSelection, Side: c.turn.ToMove()})
	return nil
}

// ClickOffBoard clears the active human's selection.
func (c *Controller) ClickOffBoard() error {
	h, err := c.activeHuman()
	if err != nil {
		return err
	}
	h.ClickOffBoard()
	c.emit(Event{Type: EventSelection, Side: c.turn.ToMove()})
	return nil
}

func (c *Controller) activeHuman() (*Human, error) {
	if c.phase != PhasePlaying {
		return nil, ErrNotPlaying
	}
	h, ok := c.Provider(c.turn.ToMove()).(*Human)
	if !ok {
		return nil, ErrNotHumanTurn
	}
	return h, nil
}

func (c *Controller) SessionID() string        { return c.id }
func (c *Controller) Phase() Phase             { return c.phase }
func (c *Controller) Result() Result           { return c.result }
func (c *Controller) Position() chess.Position { return c.pos }
func (c *Controller) Mode() Mode               { return c.mode }
func (c *Controller) ToMove() chess.Side       { return c.turn.ToMove() }
func (c *Controller) Ply() int                 { return c.ply }

// Provider returns the provider playing side, or nil in the menu.
func (c *Controller) Provider(side chess.Side) MoveProvider { return c.providers[side] }

func (c *Controller) emit(e Event) {
	if c.listener == nil {
		return
	}
	e.Snapshot = c.Snapshot()
	c.listener.OnSessionEvent(e)
}
