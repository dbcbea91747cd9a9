package data

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User maps to the users collection.
type User struct {
	ID         bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	FullName   string        `bson:"full_name" json:"fullName"`
	Email      string        `bson:"email" json:"email"`
	Password   string        `bson:"password" json:"-"`
	ProfilePic string        `bson:"profile_pic" json:"profilePic"`
	Bio        string        `bson:"bio" json:"bio"`
	CreatedAt  time.Time     `bson:"created_at" json:"createdAt"`
	UpdatedAt  time.Time     `bson:"updated_at" json:"updatedAt"`
}

// Profile is the public subset of User embedded in message views.
type Profile struct {
	ID         bson.ObjectID `json:"_id"`
	FullName   string        `json:"fullName"`
	ProfilePic string        `json:"profilePic"`
}

// Profile returns the user's public display attributes.
func (u *User) Profile() *Profile {
	return &Profile{ID: u.ID, FullName: u.FullName, ProfilePic: u.ProfilePic}
}

// Message maps to the messages collection. The payload is immutable after
// creation; only the seen flag ever changes, and only false→true.
type Message struct {
	ID         bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	SenderID   bson.ObjectID `bson:"sender_id" json:"senderId"`
	ReceiverID bson.ObjectID `bson:"receiver_id" json:"receiverId"`
	Text       string        `bson:"text,omitempty" json:"text,omitempty"`
	Image      string        `bson:"image,omitempty" json:"image,omitempty"`
	Seen       bool          `bson:"seen" json:"seen"`
	CreatedAt  time.Time     `bson:"created_at" json:"createdAt"`
}

// MessageView is a Message joined with the display attributes of its
// participants, the shape clients receive over HTTP and the socket.
type MessageView struct {
	*Message
	Sender   *Profile `json:"sender,omitempty"`
	Receiver *Profile `json:"receiver,omitempty"`
}
