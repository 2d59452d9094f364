package observer

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/park285/shake-chess/internal/session"
	"github.com/park285/shake-chess/pkg/sessiondto"
)

const (
	MessageSnapshot = "snapshot"
	MessageEvent    = "event"

	broadcastQueueSize = 32
	clientQueueSize    = 16
)

// Message is the envelope written to spectators.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// EventPayload describes a controller event without the snapshot, which is
// sent in its own message.
type EventPayload struct {
	Event string `json:"event"`
	Side  string `json:"side,omitempty"`
	Move  string `json:"move,omitempty"`
	Error string `json:"error,omitempty"`
}

// Hub fans session updates out to connected spectators. Slow clients lose
// messages instead of stalling the broadcaster.
type Hub struct {
	mu        sync.Mutex
	clients   map[*client]struct{}
	broadcast chan []byte
	logger    *zap.Logger
}

type client struct {
	id   string
	send chan []byte
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:   make(map[*client]struct{}),
		broadcast: make(chan []byte, broadcastQueueSize),
		logger:    logger,
	}
}

func (h *Hub) Run(done <-chan struct{}) {
	for {
		select {
		case <-done:
			h.mu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			return
		case data := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- data:
				default:
				}
			}
			h.mu.Unlock()
		}
	}
}

// OnSessionEvent publishes the event and the snapshot taken with it.
func (h *Hub) OnSessionEvent(e session.Event) {
	payload := EventPayload{Event: string(e.Type)}
	switch e.Type {
	case session.EventTurnCompleted, session.EventMoveRejected:
		payload.Side = e.Side.String()
		payload.Move = e.Move.String()
	case session.EventProviderFailed, session.EventSelection:
		payload.Side = e.Side.String()
	}
	if e.Err != nil {
		payload.Error = e.Err.Error()
	}
	h.Publish(MessageEvent, payload)
	h.PublishSnapshot(e.Snapshot)
}

func (h *Hub) PublishSnapshot(s sessiondto.Snapshot) {
	h.Publish(MessageSnapshot, s)
}

// Publish queues a message for every client. It never blocks.
func (h *Hub) Publish(typ string, payload any) {
	data, err := encode(typ, payload)
	if err != nil {
		h.logger.Warn("observer_encode_failed", zap.String("type", typ), zap.Error(err))
		return
	}
	select {
	case h.broadcast <- data:
	default:
		h.logger.Debug("observer_broadcast_dropped", zap.String("type", typ))
	}
}

func (h *Hub) register() *client {
	c := &client{id: uuid.NewString(), send: make(chan []byte, clientQueueSize)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("observer_client_joined", zap.String("client", c.id), zap.Int("clients", n))
	return c
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	h.logger.Debug("observer_client_left", zap.String("client", c.id))
}

func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func encode(typ string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Message{Type: typ, Payload: raw})
}
