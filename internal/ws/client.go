package ws

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/example/quickchat/internal/logger"
)

const (
	// Time allowed to write a frame to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong from the peer.
	pongWait = 60 * time.Second

	// Ping interval; must be less than pongWait.
	pingPeriod = 54 * time.Second

	// Clients only push data through HTTP, so inbound socket frames stay tiny.
	maxMessageSize = 512

	// Outgoing frames buffered per connection before sends start failing.
	sendBuffer = 64
)

// Client wraps one WebSocket connection. Its lifecycle is
// CONNECTING → CONNECTED → CLOSED: run() binds it to the hub, the pumps keep
// it alive, and the read pump's exit — clean close, network error or ping
// timeout alike — runs the single teardown path.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID string
	connID string
	send   chan []byte
	done   chan struct{}
}

// NewClient returns a client for an upgraded connection. userID may be
// empty for connections that presented no valid identity.
func NewClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
	}
}

// Send implements Sender. The event is marshalled and enqueued without
// blocking; a full buffer means the connection is too slow to keep up and
// the frame is dropped for it.
func (c *Client) Send(e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	select {
	case c.send <- payload:
		return nil
	default:
		return errors.New("send buffer full")
	}
}

// run binds the client to the hub and starts both pumps. It returns
// immediately; the pumps own the connection from here on.
func (c *Client) run() {
	c.connID = c.hub.Connect(c.userID, c)
	go c.writePump()
	go c.readPump()
}

// readPump consumes inbound frames until the connection dies. The client
// sends messages over HTTP, so payloads are discarded; the read loop exists
// to detect disconnects and answer pings. Its exit triggers teardown.
func (c *Client) readPump() {
	defer func() {
		c.hub.Disconnect(c.userID, c.connID)
		close(c.done)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure) {
				logger.Warn("socket read error",
					zap.String("conn", c.connID), zap.Error(err))
			}
			return
		}
	}
}

// writePump moves queued events onto the wire and keeps the connection
// alive with periodic pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
			return
		}
	}
}
