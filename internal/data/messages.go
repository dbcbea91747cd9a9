package data

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

var (
	// ErrEmptyMessage is returned when a send carries neither text nor image.
	ErrEmptyMessage = errors.New("message must contain text or an image")
	// ErrMessageNotFound is returned when a message id resolves to nothing.
	ErrMessageNotFound = errors.New("message not found")
)

// MessagesStore provides message database operations.
type MessagesStore struct {
	coll *mongo.Collection
}

// NewMessagesStore returns a MessagesStore using the given collection.
func NewMessagesStore(coll *mongo.Collection) *MessagesStore {
	return &MessagesStore{coll: coll}
}

// SaveMessage inserts a message document and returns the saved record.
// At least one of text/imageURL must be non-empty.
func (m *MessagesStore) SaveMessage(ctx context.Context, senderID, receiverID bson.ObjectID, text, imageURL string) (*Message, error) {
	if text == "" && imageURL == "" {
		return nil, ErrEmptyMessage
	}

	msg := &Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       text,
		Image:      imageURL,
		Seen:       false,
		CreatedAt:  time.Now(),
	}

	result, err := m.coll.InsertOne(ctx, msg)
	if err != nil {
		return nil, err
	}

	msg.ID = result.InsertedID.(bson.ObjectID)
	return msg, nil
}

// GetConversation returns every message between the viewer and the peer in
// ascending created_at order. It is a pure read; pair it with
// MarkConversationSeen when the viewer opens the thread.
func (m *MessagesStore) GetConversation(ctx context.Context, viewerID, peerID bson.ObjectID) ([]*Message, error) {
	filter := bson.M{
		"$or": bson.A{
			bson.M{"sender_id": viewerID, "receiver_id": peerID},
			bson.M{"sender_id": peerID, "receiver_id": viewerID},
		},
	}

	opts := options.Find().SetSort(bson.M{"created_at": 1})

	cursor, err := m.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []*Message
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkConversationSeen flips seen on every unseen message the peer sent to
// the viewer. Opening a thread implies having seen its contents.
func (m *MessagesStore) MarkConversationSeen(ctx context.Context, viewerID, peerID bson.ObjectID) error {
	_, err := m.coll.UpdateMany(ctx,
		bson.M{"sender_id": peerID, "receiver_id": viewerID, "seen": false},
		bson.M{"$set": bson.M{"seen": true}},
	)
	return err
}

// MarkSeen flips seen on a single message. Idempotent: marking an already
// seen message succeeds without effect.
func (m *MessagesStore) MarkSeen(ctx context.Context, id bson.ObjectID) error {
	result, err := m.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"seen": true}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// CountUnseenPerSender returns, for every sender with at least one unseen
// message addressed to the viewer, the number of such messages. Keys are
// sender ObjectIDs in hex form.
func (m *MessagesStore) CountUnseenPerSender(ctx context.Context, viewerID bson.ObjectID) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{
			{Key: "receiver_id", Value: viewerID},
			{Key: "seen", Value: false},
		}}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$sender_id"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := m.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		SenderID bson.ObjectID `bson:"_id"`
		Count    int64         `bson:"count"`
	}
	if err = cursor.All(ctx, &results); err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(results))
	for _, r := range results {
		counts[r.SenderID.Hex()] = r.Count
	}
	return counts, nil
}
