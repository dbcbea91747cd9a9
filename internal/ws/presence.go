// Package ws implements the real-time side of the chat server: the online
// presence registry, the WebSocket connection lifecycle and the live
// delivery of newly created messages.
package ws

import "sync"

// Registry maps user ids to their active connection id. Membership in the
// map is the sole definition of "online". A user holds at most one
// connection id at a time; connecting again replaces the previous mapping
// (last-connected-wins).
//
// The registry is an injectable component, constructed once at process start
// and shared by the hub and the dispatcher. It is safe for concurrent use:
// gorilla/websocket runs every connection's handshake and teardown on its
// own goroutine, so the mutations are not naturally serialized.
type Registry struct {
	mu     sync.RWMutex
	online map[string]string
}

// NewRegistry returns an empty presence registry.
func NewRegistry() *Registry {
	return &Registry{online: make(map[string]string)}
}

// Register unconditionally maps userID to connID, replacing any previous
// connection id for that user.
func (r *Registry) Register(userID, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.online[userID] = connID
}

// Unregister removes the mapping only if the stored connection id still
// equals connID. A disconnect from a superseded connection must not clobber
// the registration of a newer one. Reports whether a mapping was removed.
func (r *Registry) Unregister(userID, connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.online[userID] != connID {
		return false
	}
	delete(r.online, userID)
	return true
}

// Lookup returns the active connection id for userID, if any.
func (r *Registry) Lookup(userID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	connID, ok := r.online[userID]
	return connID, ok
}

// Snapshot returns all currently online user ids, in no particular order.
// Receivers must treat it as a full replacement of their known online set.
func (r *Registry) Snapshot() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]string, 0, len(r.online))
	for userID := range r.online {
		users = append(users, userID)
	}
	return users
}
