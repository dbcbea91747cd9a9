package ws

// Dispatcher pushes a just-persisted message to the live connections of its
// participants. It is deliberately decoupled from persistence: the caller
// persists first and dispatches after, and a dispatch miss never rolls
// anything back — the stored record stays the durable source of truth.
type Dispatcher struct {
	presence *Registry
	hub      *Hub
}

// NewDispatcher returns a dispatcher reading the given registry and
// emitting through the given hub.
func NewDispatcher(presence *Registry, hub *Hub) *Dispatcher {
	return &Dispatcher{presence: presence, hub: hub}
}

// Dispatch emits a newMessage event carrying message to the receiver's
// connection and, when online on a distinct connection, to the sender's own
// connection (a second device or tab). When sender and receiver resolve to
// the same connection the event is emitted exactly once, and when neither
// is online it is dropped silently: delivery is best-effort, at most once.
// Returns the number of connections that accepted the event.
func (d *Dispatcher) Dispatch(senderID, receiverID string, message any) int {
	e := Event{Name: EventNewMessage, Data: message}
	delivered := 0

	receiverConn, receiverOnline := d.presence.Lookup(receiverID)
	if receiverOnline && d.hub.SendTo(receiverConn, e) {
		delivered++
	}

	senderConn, senderOnline := d.presence.Lookup(senderID)
	if senderOnline && (!receiverOnline || senderConn != receiverConn) {
		if d.hub.SendTo(senderConn, e) {
			delivered++
		}
	}

	return delivered
}
