package gateway

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/playperu/triviaroom/internal/game"
)

const outboxSize = 64

// frame is the wire envelope for both directions.
type frame struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Hub maps connection ids to their outbound queues. It implements
// game.Notifier.
type Hub struct {
	logger *slog.Logger

	mu    sync.RWMutex
	conns map[string]chan []byte
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger: logger,
		conns:  make(map[string]chan []byte),
	}
}

// Register returns the outbound queue for a new connection.
func (h *Hub) Register(connID string) <-chan []byte {
	ch := make(chan []byte, outboxSize)
	h.mu.Lock()
	h.conns[connID] = ch
	h.mu.Unlock()
	return ch
}

func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	delete(h.conns, connID)
	h.mu.Unlock()
}

// Notify queues ev for connID. Slow connections lose messages rather than
// stall the room that is broadcasting.
func (h *Hub) Notify(connID string, ev game.Event) {
	data, err := json.Marshal(frame{Event: ev.Name, Data: ev.Data})
	if err != nil {
		h.logger.Error("encoding event", "event", ev.Name, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	ch, ok := h.conns[connID]
	if !ok {
		return
	}
	select {
	case ch <- data:
	default:
		h.logger.Warn("dropping event for slow connection", "conn", connID, "event", ev.Name)
	}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}
