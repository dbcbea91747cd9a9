package main

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/example/quickchat/internal/auth"
	"github.com/example/quickchat/internal/data"
	"github.com/example/quickchat/internal/media"
	"github.com/example/quickchat/internal/ws"
)

// userStore is the subset of data.UsersStore the handlers use.
type userStore interface {
	CreateUser(ctx context.Context, fullName, email, hashedPassword, bio string) (*data.User, error)
	GetUserByEmail(ctx context.Context, email string) (*data.User, error)
	GetUserByID(ctx context.Context, id bson.ObjectID) (*data.User, error)
	ListOthers(ctx context.Context, viewerID bson.ObjectID) ([]*data.User, error)
	UpdateProfile(ctx context.Context, id bson.ObjectID, fullName, bio, profilePicURL string) (*data.User, error)
}

// messageStore is the subset of data.MessagesStore the handlers use.
type messageStore interface {
	SaveMessage(ctx context.Context, senderID, receiverID bson.ObjectID, text, imageURL string) (*data.Message, error)
	GetConversation(ctx context.Context, viewerID, peerID bson.ObjectID) ([]*data.Message, error)
	MarkConversationSeen(ctx context.Context, viewerID, peerID bson.ObjectID) error
	MarkSeen(ctx context.Context, id bson.ObjectID) error
	CountUnseenPerSender(ctx context.Context, viewerID bson.ObjectID) (map[string]int64, error)
}

// Server holds the handlers' dependencies: the stores, auth, the socket hub
// and the delivery dispatcher.
type Server struct {
	users    userStore
	msgs     messageStore
	auth     *auth.JWTManager
	hub      *ws.Hub
	dispatch *ws.Dispatcher
	media    media.Uploader
}

// newServer returns a ready-to-use Server wired with its collaborators.
func newServer(users userStore, msgs messageStore, authMgr *auth.JWTManager, hub *ws.Hub, dispatch *ws.Dispatcher, uploader media.Uploader) *Server {
	return &Server{
		users:    users,
		msgs:     msgs,
		auth:     authMgr,
		hub:      hub,
		dispatch: dispatch,
		media:    uploader,
	}
}
