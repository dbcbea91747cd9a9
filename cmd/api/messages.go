package main

import (
	"errors"
	"html"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"

	"github.com/example/quickchat/internal/data"
	"github.com/example/quickchat/internal/logger"
)

// sidebarUsers lists every other user together with the viewer's per-sender
// unseen message counts, the data the client's sidebar hydrates from at
// session start.
func (s *Server) sidebarUsers(c *gin.Context) {
	viewer := currentUser(c)

	users, err := s.users.ListOthers(c.Request.Context(), viewer.ID)
	if err != nil {
		logger.Error("sidebar user listing failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "failed to fetch users")
		return
	}

	counts, err := s.msgs.CountUnseenPerSender(c.Request.Context(), viewer.ID)
	if err != nil {
		logger.Error("unseen count query failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "failed to fetch users")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"users":          users,
		"unseenMessages": counts,
	})
}

// getMessages returns the viewer's conversation with the peer in ascending
// order and, as a side effect, marks the peer's unseen messages to the
// viewer as seen — opening a thread implies having read it.
func (s *Server) getMessages(c *gin.Context) {
	viewer := currentUser(c)

	peerID, err := bson.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid user id")
		return
	}

	messages, err := s.msgs.GetConversation(c.Request.Context(), viewer.ID, peerID)
	if err != nil {
		logger.Error("conversation query failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "failed to fetch messages")
		return
	}

	if err := s.msgs.MarkConversationSeen(c.Request.Context(), viewer.ID, peerID); err != nil {
		// history still serves; the seen flags catch up on the next read
		logger.Error("mark conversation seen failed", zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "messages": messages})
}

// markSeen flips the seen flag of a single message, the acknowledgement the
// client issues when a live-delivered message lands in the open thread.
func (s *Server) markSeen(c *gin.Context) {
	id, err := bson.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		fail(c, http.StatusNotFound, "message not found")
		return
	}

	if err := s.msgs.MarkSeen(c.Request.Context(), id); err != nil {
		if errors.Is(err, data.ErrMessageNotFound) {
			fail(c, http.StatusNotFound, "message not found")
			return
		}
		logger.Error("mark seen failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "failed to mark message seen")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// sendMessage persists a message to the peer and then hands it to the
// dispatcher. Persistence failures abort the request; a dispatch miss never
// does — the record is durable and retrievable on the next history load.
func (s *Server) sendMessage(c *gin.Context) {
	sender := currentUser(c)

	receiverID, err := bson.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid recipient id")
		return
	}

	var req struct {
		Text  string `json:"text"`
		Image string `json:"image"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" && req.Image == "" {
		fail(c, http.StatusBadRequest, "message must contain text or an image")
		return
	}

	receiver, err := s.users.GetUserByID(c.Request.Context(), receiverID)
	if err != nil {
		if errors.Is(err, data.ErrUserNotFound) {
			fail(c, http.StatusNotFound, "recipient not found")
			return
		}
		logger.Error("recipient lookup failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "failed to send message")
		return
	}

	imageURL := ""
	if req.Image != "" {
		if s.media == nil {
			fail(c, http.StatusInternalServerError, "image uploads not configured")
			return
		}
		imageURL, err = s.media.Upload(c.Request.Context(), req.Image, "quickchat/messages")
		if err != nil {
			logger.Error("message image upload failed", zap.Error(err))
			fail(c, http.StatusInternalServerError, "error uploading image")
			return
		}
	}

	saved, err := s.msgs.SaveMessage(c.Request.Context(), sender.ID, receiverID, html.EscapeString(req.Text), imageURL)
	if err != nil {
		if errors.Is(err, data.ErrEmptyMessage) {
			fail(c, http.StatusBadRequest, "message must contain text or an image")
			return
		}
		logger.Error("save message failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "failed to send message")
		return
	}

	view := &data.MessageView{
		Message:  saved,
		Sender:   sender.Profile(),
		Receiver: receiver.Profile(),
	}

	// Best-effort live delivery; zero reachable connections is a normal
	// outcome, not a failed send.
	s.dispatch.Dispatch(sender.ID.Hex(), receiverID.Hex(), view)

	c.JSON(http.StatusCreated, gin.H{"success": true, "newMessage": view})
}
