// Package data provides DB models and stores.
package data

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/example/quickchat/internal/normalize"
)

var (
	// ErrUserNotFound is returned when a user id or email resolves to nothing.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateUser is returned when a signup reuses an existing email.
	ErrDuplicateUser = errors.New("user already exists")
)

// UsersStore performs user DB operations.
type UsersStore struct {
	coll *mongo.Collection
}

// NewUsersStore returns a UsersStore using the provided collection.
func NewUsersStore(coll *mongo.Collection) *UsersStore {
	return &UsersStore{coll: coll}
}

// CreateUser inserts a new user document. The password must already be hashed.
func (u *UsersStore) CreateUser(ctx context.Context, fullName, email, hashedPassword, bio string) (*User, error) {
	user := &User{
		FullName:  fullName,
		Email:     normalize.Email(email),
		Password:  hashedPassword,
		Bio:       bio,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	result, err := u.coll.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateUser
		}
		return nil, err
	}

	user.ID = result.InsertedID.(bson.ObjectID)
	return user, nil
}

// GetUserByEmail finds a user by (normalized) email.
func (u *UsersStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := u.coll.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByID finds a user by ObjectID.
func (u *UsersStore) GetUserByID(ctx context.Context, id bson.ObjectID) (*User, error) {
	var user User
	err := u.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ListOthers returns every user except the viewer, for the sidebar listing.
// Password hashes are excluded at the query level.
func (u *UsersStore) ListOthers(ctx context.Context, viewerID bson.ObjectID) ([]*User, error) {
	opts := options.Find().SetProjection(bson.M{"password": 0})

	cursor, err := u.coll.Find(ctx, bson.M{"_id": bson.M{"$ne": viewerID}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []*User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateProfile updates the mutable profile fields and returns the updated
// document. An empty profilePicURL leaves the current picture untouched.
func (u *UsersStore) UpdateProfile(ctx context.Context, id bson.ObjectID, fullName, bio, profilePicURL string) (*User, error) {
	set := bson.M{
		"full_name":  fullName,
		"bio":        bio,
		"updated_at": time.Now(),
	}
	if profilePicURL != "" {
		set["profile_pic"] = profilePicURL
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user User
	err := u.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
