package ws

import (
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/example/quickchat/internal/logger"
)

// Sender is the minimal interface the hub needs from a connection: the
// ability to accept an event for delivery. Send must not block; a full or
// dead connection reports an error and the frame is dropped for it.
type Sender interface {
	Send(e Event) error
}

// Hub owns the set of live connections and drives the presence registry.
// Connect and Disconnect serialize the registry mutation and the following
// presence broadcast under one lock, so no connection ever observes a
// broadcast that is stale relative to the mutation that produced it.
type Hub struct {
	mu       sync.Mutex
	presence *Registry
	conns    map[string]Sender
	nextID   int64
}

// NewHub returns a hub bound to the given presence registry.
func NewHub(presence *Registry) *Hub {
	return &Hub{
		presence: presence,
		conns:    make(map[string]Sender),
	}
}

// Connect issues a connection id for s, registers presence when the
// connection carries an identity, and broadcasts the online set. An empty
// userID is an anonymous connection: it receives broadcasts but never
// appears in presence.
func (h *Hub) Connect(userID string, s Sender) string {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	connID := "c" + strconv.FormatInt(h.nextID, 10)
	h.conns[connID] = s

	if userID != "" {
		h.presence.Register(userID, connID)
	}
	h.broadcastOnlineLocked()

	logger.Info("socket connected",
		zap.String("conn", connID), zap.String("user", userID))
	return connID
}

// Disconnect tears a connection down: the delivery listener is removed
// unconditionally, presence is unregistered through the stale-guard, and
// the online set is broadcast again. Safe to call for connections that
// never registered presence.
func (h *Hub) Disconnect(userID, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.conns, connID)
	if userID != "" {
		h.presence.Unregister(userID, connID)
	}
	h.broadcastOnlineLocked()

	logger.Info("socket disconnected",
		zap.String("conn", connID), zap.String("user", userID))
}

// SendTo delivers an event to a single connection. Reports whether a
// connection with that id exists and accepted the event.
func (h *Hub) SendTo(connID string, e Event) bool {
	h.mu.Lock()
	s, ok := h.conns[connID]
	h.mu.Unlock()

	if !ok {
		return false
	}
	if err := s.Send(e); err != nil {
		logger.Warn("live delivery failed",
			zap.String("conn", connID), zap.Error(err))
		return false
	}
	return true
}

// ConnCount returns the number of live connections, identified or not.
func (h *Hub) ConnCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// broadcastOnlineLocked pushes the current online set to every connection.
// A failing connection is logged and skipped; it must never prevent the
// remaining connections from receiving the broadcast.
func (h *Hub) broadcastOnlineLocked() {
	e := Event{Name: EventOnlineUsers, Data: h.presence.Snapshot()}
	for connID, s := range h.conns {
		if err := s.Send(e); err != nil {
			logger.Warn("presence broadcast dropped",
				zap.String("conn", connID), zap.Error(err))
		}
	}
}
