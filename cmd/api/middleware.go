package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/example/quickchat/internal/data"
)

// context key under which requireAuth stores the resolved user
const userContextKey = "authUser"

// requireAuth verifies the JWT supplied in the custom "token" request header
// and loads the corresponding user before any handler runs. A token whose
// user no longer exists is as unauthenticated as no token at all.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("token")
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false, "message": "no token provided",
			})
			return
		}

		claims, err := s.auth.VerifyToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false, "message": "invalid or expired token",
			})
			return
		}

		id, err := bson.ObjectIDFromHex(claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false, "message": "invalid or expired token",
			})
			return
		}

		user, err := s.users.GetUserByID(c.Request.Context(), id)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false, "message": "user not found",
			})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// currentUser returns the user requireAuth resolved for this request.
func currentUser(c *gin.Context) *data.User {
	v, _ := c.Get(userContextKey)
	user, _ := v.(*data.User)
	return user
}

// cors mirrors the original deployment's permissive policy: the static web
// client may be served from anywhere.
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, token")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
