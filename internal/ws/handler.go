package ws

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/example/quickchat/internal/logger"
)

// IdentityFunc resolves a handshake token to a user id. The handshake takes
// a verified token rather than a raw user id so a client cannot claim to be
// someone it holds no token for.
type IdentityFunc func(token string) (string, error)

// ServeWS returns the WebSocket handshake handler. A missing or invalid
// token does not reject the connection — such sessions are tolerated, they
// just never enter presence and are never a dispatch target.
func ServeWS(hub *Hub, identity IdentityFunc, allowedOrigins []string) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}

	return func(c *gin.Context) {
		userID := ""
		if token := c.Query("token"); token != "" {
			id, err := identity(token)
			if err != nil {
				logger.Warn("socket handshake token rejected", zap.Error(err))
			} else {
				userID = id
			}
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the HTTP error response.
			logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		NewClient(hub, conn, userID).run()
	}
}

// originChecker allows any origin when the allowlist is empty, matching the
// permissive CORS policy of the HTTP surface; otherwise the Origin header
// must match an entry exactly. Requests without an Origin header (non-browser
// clients) always pass.
func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}
