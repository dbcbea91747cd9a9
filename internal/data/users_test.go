package data

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/example/quickchat/internal/db"
)

func setupDB(t *testing.T) *db.Client {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set; skipping integration test")
	}

	ctx := context.Background()
	c, err := db.New(ctx, uri)
	if err != nil {
		t.Fatalf("db.New failed: %v", err)
	}

	// ensure clean collections in case previous runs left data
	_ = c.UsersCollection().Drop(ctx)
	_ = c.MessagesCollection().Drop(ctx)

	if err := c.CreateIndexes(ctx); err != nil {
		t.Fatalf("CreateIndexes failed: %v", err)
	}

	return c
}

func TestUsersCreateAndGet(t *testing.T) {
	c := setupDB(t)
	defer func() { _ = c.Close(context.Background()) }()

	users := NewUsersStore(c.UsersCollection())

	ctx := context.Background()
	email := time.Now().UTC().Format("20060102-150405") + "-integration@example.com"

	user, err := users.CreateUser(ctx, "Integration Tester", email, "hashed-password", "just testing")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if user.Email != email {
		t.Fatalf("expected email %s got %s", email, user.Email)
	}

	// duplicate signup must surface ErrDuplicateUser
	if _, err := users.CreateUser(ctx, "Imposter", email, "other-hash", ""); !errors.Is(err, ErrDuplicateUser) {
		t.Fatalf("expected ErrDuplicateUser, got %v", err)
	}

	// lookup is case-insensitive via normalization
	u2, err := users.GetUserByEmail(ctx, "  "+email+" ")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if u2.Email != email {
		t.Fatalf("GetUserByEmail returned wrong email: %s", u2.Email)
	}

	got, err := users.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if got.Email != email {
		t.Fatalf("GetUserByID returned wrong email: %s", got.Email)
	}
}

func TestUsersListOthersAndUpdateProfile(t *testing.T) {
	c := setupDB(t)
	defer func() { _ = c.Close(context.Background()) }()

	users := NewUsersStore(c.UsersCollection())
	ctx := context.Background()

	alice, err := users.CreateUser(ctx, "Alice", "alice-list@example.com", "h", "")
	if err != nil {
		t.Fatalf("CreateUser alice failed: %v", err)
	}
	if _, err := users.CreateUser(ctx, "Bob", "bob-list@example.com", "h", ""); err != nil {
		t.Fatalf("CreateUser bob failed: %v", err)
	}

	others, err := users.ListOthers(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListOthers failed: %v", err)
	}
	if len(others) != 1 || others[0].Email != "bob-list@example.com" {
		t.Fatalf("ListOthers should return only bob, got %d entries", len(others))
	}
	if others[0].Password != "" {
		t.Fatal("ListOthers must not return password hashes")
	}

	updated, err := users.UpdateProfile(ctx, alice.ID, "Alice B.", "hello", "https://cdn.example.com/pic.png")
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	if updated.FullName != "Alice B." || updated.Bio != "hello" || updated.ProfilePic == "" {
		t.Fatalf("UpdateProfile returned stale document: %+v", updated)
	}

	// empty pic URL keeps the existing picture
	updated, err = users.UpdateProfile(ctx, alice.ID, "Alice B.", "hello again", "")
	if err != nil {
		t.Fatalf("UpdateProfile (no pic) failed: %v", err)
	}
	if updated.ProfilePic != "https://cdn.example.com/pic.png" {
		t.Fatalf("empty pic URL should not clear the profile picture, got %q", updated.ProfilePic)
	}
}
