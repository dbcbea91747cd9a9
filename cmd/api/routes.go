package main

import (
	"github.com/gin-gonic/gin"

	"github.com/example/quickchat/internal/middleware"
	"github.com/example/quickchat/internal/ws"
)

// routes assembles the gin engine: the HTTP API, auth gating, rate limiting
// on the credential endpoints, and the WebSocket handshake.
func (s *Server) routes(limiter *middleware.LimiterStore, allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), cors())

	r.GET("/api/status", s.status)

	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/signup", middleware.RateLimit(limiter), s.signup)
		authGroup.POST("/login", middleware.RateLimit(limiter), s.login)
		authGroup.GET("/check-auth", s.requireAuth(), s.checkAuth)
		authGroup.PUT("/update-profile", s.requireAuth(), s.updateProfile)
	}

	msgGroup := r.Group("/api/messages", s.requireAuth())
	{
		msgGroup.GET("/users", s.sidebarUsers)
		msgGroup.GET("/:id", s.getMessages)
		msgGroup.POST("/send/:id", s.sendMessage)
		msgGroup.PUT("/mark-seen/:id", s.markSeen)
	}

	// The socket handshake authenticates through its query token; identity
	// resolution runs against the same JWT keys as the HTTP routes.
	r.GET("/ws", ws.ServeWS(s.hub, func(token string) (string, error) {
		claims, err := s.auth.VerifyToken(token)
		if err != nil {
			return "", err
		}
		return claims.UserID, nil
	}, allowedOrigins))

	return r
}
