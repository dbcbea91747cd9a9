package ws

// Event names on the wire. They match what the web client listens for.
const (
	// EventOnlineUsers carries the full set of online user ids. Sent to
	// every connection after each presence mutation.
	EventOnlineUsers = "getOnlineUsers"

	// EventNewMessage carries a freshly persisted message view. Sent to the
	// receiver's connection and, when distinct, the sender's.
	EventNewMessage = "newMessage"
)

// Event is the envelope for every server→client socket frame.
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data,omitempty"`
}
