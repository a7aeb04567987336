package notification

import (
	"sync"

	"eduvibe/internal/metrics"

	"go.uber.org/zap"
)

// Client is the part of a websocket connection the hub writes to.
type Client interface {
	WriteJSON(v interface{}) error
}

// Hub tracks live websocket clients per user and pushes notifications to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[Client]struct{}
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewHub(logger *zap.Logger, m *metrics.Metrics) *Hub {
	return &Hub{
		clients: make(map[string]map[Client]struct{}),
		logger:  logger,
		metrics: m,
	}
}

func (h *Hub) Register(userID string, c Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[userID]
	if !ok {
		set = make(map[Client]struct{})
		h.clients[userID] = set
	}
	set[c] = struct{}{}
	h.metrics.AddWebsocketConnections(1)
}

func (h *Hub) Unregister(userID string, c Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[userID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, userID)
	}
	h.metrics.AddWebsocketConnections(-1)
}

// Connected returns the number of live clients for userID.
func (h *Hub) Connected(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Send writes msg to every client of userID and drops clients whose write fails.
func (h *Hub) Send(userID string, msg interface{}) int {
	h.mu.RLock()
	targets := make([]Client, 0, len(h.clients[userID]))
	for c := range h.clients[userID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, c := range targets {
		if err := c.WriteJSON(msg); err != nil {
			h.logger.Debug("dropping websocket client", zap.String("user_id", userID), zap.Error(err))
			h.Unregister(userID, c)
			continue
		}
		delivered++
	}
	return delivered
}
