package data

import (
	"context"
	"errors"
	"os"
	"testing"

	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestSaveMessageRejectsEmptyPayload(t *testing.T) {
	// validation happens before any collection access, so a nil store works
	msgs := NewMessagesStore(nil)

	_, err := msgs.SaveMessage(context.Background(), bson.NewObjectID(), bson.NewObjectID(), "", "")
	if !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
}

func TestMessagesSaveAndQuery(t *testing.T) {
	// no env loader; require MONGODB_URI set externally for integration tests
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set; skipping integration test")
	}

	c := setupDB(t)
	defer func() { _ = c.Close(context.Background()) }()

	ctx := context.Background()
	msgs := NewMessagesStore(c.MessagesCollection())

	alice := bson.NewObjectID()
	bob := bson.NewObjectID()

	first, err := msgs.SaveMessage(ctx, alice, bob, "hi bob", "")
	if err != nil {
		t.Fatalf("SaveMessage failed: %v", err)
	}
	if first.Seen {
		t.Fatal("new message must start unseen")
	}

	if _, err = msgs.SaveMessage(ctx, bob, alice, "hello alice", ""); err != nil {
		t.Fatalf("SaveMessage 2 failed: %v", err)
	}

	history, err := msgs.GetConversation(ctx, alice, bob)
	if err != nil {
		t.Fatalf("GetConversation failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(history))
	}
	if !history[0].CreatedAt.Before(history[1].CreatedAt) && !history[0].CreatedAt.Equal(history[1].CreatedAt) {
		t.Fatal("expected ascending created_at order")
	}

	// bob has one unseen message from alice
	counts, err := msgs.CountUnseenPerSender(ctx, bob)
	if err != nil {
		t.Fatalf("CountUnseenPerSender failed: %v", err)
	}
	if counts[alice.Hex()] != 1 {
		t.Fatalf("expected unseen count 1 for alice, got %d", counts[alice.Hex()])
	}

	// bob opens the thread: alice→bob messages flip to seen
	if err := msgs.MarkConversationSeen(ctx, bob, alice); err != nil {
		t.Fatalf("MarkConversationSeen failed: %v", err)
	}

	counts, err = msgs.CountUnseenPerSender(ctx, bob)
	if err != nil {
		t.Fatalf("CountUnseenPerSender (after seen) failed: %v", err)
	}
	if len(counts) != 0 {
		t.Fatalf("expected no unseen counts after opening thread, got %v", counts)
	}

	// re-reading returns the same records, now seen, with no further change
	history, err = msgs.GetConversation(ctx, bob, alice)
	if err != nil {
		t.Fatalf("GetConversation (re-read) failed: %v", err)
	}
	for _, m := range history {
		if m.SenderID == alice && !m.Seen {
			t.Fatalf("message %s from alice should be seen", m.ID.Hex())
		}
	}
}

func TestMarkSeen(t *testing.T) {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set; skipping integration test")
	}

	c := setupDB(t)
	defer func() { _ = c.Close(context.Background()) }()

	ctx := context.Background()
	msgs := NewMessagesStore(c.MessagesCollection())

	saved, err := msgs.SaveMessage(ctx, bson.NewObjectID(), bson.NewObjectID(), "ping", "")
	if err != nil {
		t.Fatalf("SaveMessage failed: %v", err)
	}

	if err := msgs.MarkSeen(ctx, saved.ID); err != nil {
		t.Fatalf("MarkSeen failed: %v", err)
	}
	// idempotent
	if err := msgs.MarkSeen(ctx, saved.ID); err != nil {
		t.Fatalf("MarkSeen (repeat) failed: %v", err)
	}

	if err := msgs.MarkSeen(ctx, bson.NewObjectID()); !errors.Is(err, ErrMessageNotFound) {
		t.Fatalf("expected ErrMessageNotFound for unknown id, got %v", err)
	}
}
