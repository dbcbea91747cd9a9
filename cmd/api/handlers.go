package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/quickchat/internal/auth"
	"github.com/example/quickchat/internal/data"
	"github.com/example/quickchat/internal/logger"
)

// fail writes the standard error envelope.
func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// status reports liveness.
func (s *Server) status(c *gin.Context) {
	c.String(http.StatusOK, "server is live")
}

// signup handles user registration: hashes the password, stores the user and
// returns a JWT token alongside the created account.
func (s *Server) signup(c *gin.Context) {
	var req struct {
		FullName string `json:"fullName"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Bio      string `json:"bio"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FullName == "" || req.Email == "" || req.Password == "" || req.Bio == "" {
		fail(c, http.StatusBadRequest, "all fields are required")
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user, err := s.users.CreateUser(c.Request.Context(), req.FullName, req.Email, hashed, req.Bio)
	if err != nil {
		if errors.Is(err, data.ErrDuplicateUser) {
			fail(c, http.StatusBadRequest, "account already exists")
			return
		}
		logger.Error("create user failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "failed to create user")
		return
	}

	token, _, err := s.auth.GenerateToken(user.ID, user.Email)
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to generate token")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"message":  "account created successfully",
		"userData": user,
		"token":    token,
	})
}

// login authenticates a user and returns a JWT token.
func (s *Server) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		fail(c, http.StatusBadRequest, "all fields are required")
		return
	}

	user, err := s.users.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, data.ErrUserNotFound) {
			fail(c, http.StatusBadRequest, "account does not exist")
			return
		}
		logger.Error("login lookup failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "failed to log in")
		return
	}

	if err := auth.CheckPassword(user.Password, req.Password); err != nil {
		fail(c, http.StatusBadRequest, "invalid credentials")
		return
	}

	token, _, err := s.auth.GenerateToken(user.ID, user.Email)
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to generate token")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "login successful",
		"userData": user,
		"token":    token,
	})
}

// checkAuth echoes the user the auth middleware resolved.
func (s *Server) checkAuth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "user": currentUser(c)})
}

// updateProfile updates the caller's display fields. A profilePic payload is
// a base64 data URI; it goes through the image store and only the resulting
// URL is persisted.
func (s *Server) updateProfile(c *gin.Context) {
	var req struct {
		ProfilePic string `json:"profilePic"`
		FullName   string `json:"fullName"`
		Bio        string `json:"bio"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	user := currentUser(c)

	picURL := ""
	if req.ProfilePic != "" {
		if s.media == nil {
			fail(c, http.StatusInternalServerError, "image uploads not configured")
			return
		}
		url, err := s.media.Upload(c.Request.Context(), req.ProfilePic, "quickchat/profile-pictures")
		if err != nil {
			logger.Error("profile picture upload failed", zap.Error(err))
			fail(c, http.StatusInternalServerError, "error uploading image")
			return
		}
		picURL = url
	}

	updated, err := s.users.UpdateProfile(c.Request.Context(), user.ID, req.FullName, req.Bio, picURL)
	if err != nil {
		logger.Error("update profile failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "failed to update profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "profile updated successfully",
		"userData": updated,
	})
}
