package observer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/park285/shake-chess/internal/chess"
	"github.com/park285/shake-chess/internal/session"
	"github.com/park285/shake-chess/pkg/sessiondto"
)

// CommandSink accepts commands for the session loop; *session.Loop
// satisfies it.
type CommandSink interface {
	Submit(sessiondto.Command) bool
}

// SnapshotSource returns the latest published session state.
type SnapshotSource interface {
	Snapshot() sessiondto.Snapshot
}

type ModeInfo struct {
	Name        string `json:"name"`
	White       string `json:"white"`
	Black       string `json:"black"`
	Description string `json:"description,omitempty"`
	Remote      bool   `json:"remote"`
}

type Server struct {
	sink     CommandSink
	source   SnapshotSource
	hub      *Hub
	messages session.Messages
	logger   *zap.Logger

	originPatterns []string
	pingInterval   time.Duration
	writeTimeout   time.Duration
}

type ServerOption func(*Server)

func WithMessages(m session.Messages) ServerOption {
	return func(s *Server) { s.messages = m }
}

func WithServerLogger(l *zap.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithOriginPatterns allows cross-origin websocket spectators.
func WithOriginPatterns(patterns ...string) ServerOption {
	return func(s *Server) { s.originPatterns = patterns }
}

func WithPingInterval(d time.Duration) ServerOption {
	return func(s *Server) {
		if d > 0 {
			s.pingInterval = d
		}
	}
}

func NewServer(sink CommandSink, source SnapshotSource, hub *Hub, opts ...ServerOption) *Server {
	s := &Server{
		sink:         sink,
		source:       source,
		hub:          hub,
		logger:       zap.NewNop(),
		pingInterval: 30 * time.Second,
		writeTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "spectators": s.hub.ClientCount()})
	})
	r.Get("/api/modes", s.handleModes)
	r.Route("/api/session", func(r chi.Router) {
		r.Get("/", s.handleSnapshot)
		r.Post("/click", s.handleClick)
		r.Post("/restart", s.handleSimple(sessiondto.CommandRestart))
		r.Post("/menu", s.handleSimple(sessiondto.CommandMenu))
		r.Post("/start", s.handleStart)
	})
	r.Get("/ws/", s.handleWS)
	return r
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.source.Snapshot())
}

func (s *Server) handleModes(w http.ResponseWriter, r *http.Request) {
	names := session.ModeNames()
	out := make([]ModeInfo, 0, len(names))
	for _, name := range names {
		m, err := session.ParseMode(name)
		if err != nil {
			continue
		}
		info := ModeInfo{
			Name:   m.Name,
			White:  string(m.White),
			Black:  string(m.Black),
			Remote: m.Uses(session.KindRemote),
		}
		if s.messages != nil {
			if desc, err := s.messages.Render("mode."+m.Name, nil); err == nil {
				info.Description = strings.TrimSpace(desc)
			}
		}
		out = append(out, info)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Square string `json:"square"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "invalid payload")
		return
	}
	sq := strings.TrimSpace(body.Square)
	if sq != "" {
		if _, err := chess.ParseSquare(sq); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_square", err.Error())
			return
		}
	}
	s.submit(w, sessiondto.Command{Type: sessiondto.CommandClick, Square: sq})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Mode string `json:"mode"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_payload", "invalid payload")
			return
		}
	}
	if strings.TrimSpace(body.Mode) != "" {
		if _, err := session.ParseMode(body.Mode); err != nil {
			writeError(w, http.StatusBadRequest, "unknown_mode", err.Error())
			return
		}
	}
	s.submit(w, sessiondto.Command{Type: sessiondto.CommandStart, Mode: body.Mode})
}

func (s *Server) handleSimple(typ string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.submit(w, sessiondto.Command{Type: typ})
	}
}

// submit queues cmd and answers with the current snapshot; the command takes
// effect on the next tick.
func (s *Server) submit(w http.ResponseWriter, cmd sessiondto.Command) {
	if !s.sink.Submit(cmd) {
		writeError(w, http.StatusServiceUnavailable, "queue_full", "session is busy")
		return
	}
	writeJSON(w, http.StatusAccepted, s.source.Snapshot())
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: s.originPatterns})
	if err != nil {
		s.logger.Debug("observer_ws_accept_failed", zap.Error(err))
		return
	}
	defer conn.Close(websocket.StatusInternalError, "closing")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	c := s.hub.register()
	defer s.hub.unregister(c)

	if err := s.writeMessage(ctx, conn, MessageSnapshot, s.source.Snapshot()); err != nil {
		return
	}

	go s.readCommands(ctx, cancel, conn)

	ping := time.NewTicker(s.pingInterval)
	defer ping.Stop()
	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case data, ok := <-c.send:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "server shutting down")
				return
			}
			wctx, wcancel := context.WithTimeout(ctx, s.writeTimeout)
			err := conn.Write(wctx, websocket.MessageText, data)
			wcancel()
			if err != nil {
				return
			}
		case <-ping.C:
			pctx, pcancel := context.WithTimeout(ctx, s.writeTimeout)
			err := conn.Ping(pctx)
			pcancel()
			if err != nil {
				s.logger.Debug("observer_ws_ping_failed", zap.Error(err))
				return
			}
		}
	}
}

// readCommands lets a websocket client drive the session with the same
// commands the HTTP routes accept.
func (s *Server) readCommands(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn) {
	defer cancel()
	for {
		var cmd sessiondto.Command
		if err := wsjson.Read(ctx, conn, &cmd); err != nil {
			var ce websocket.CloseError
			if !errors.As(err, &ce) && ctx.Err() == nil {
				s.logger.Debug("observer_ws_read_failed", zap.Error(err))
			}
			return
		}
		if !s.sink.Submit(cmd) {
			_ = s.writeMessage(ctx, conn, "error", sessiondto.ErrorResponse{Code: "queue_full", Message: "session is busy"})
		}
	}
}

func (s *Server) writeMessage(ctx context.Context, conn *websocket.Conn, typ string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	wctx, cancel := context.WithTimeout(ctx, s.writeTimeout)
	defer cancel()
	return wsjson.Write(wctx, conn, Message{Type: typ, Payload: raw})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, sessiondto.ErrorResponse{Code: code, Message: msg})
}
