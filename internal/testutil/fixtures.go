package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/natpac/tripcollect/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a confirmed password user and returns it.
func (f *Fixtures) CreateUser(ctx context.Context, email string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		Email:        email,
		PasswordHash: "$2a$10$fixture-hash-not-checkable",
		AuthMethod:   "password",
		ConfirmedAt:  &now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateProfile inserts a profile row for the user with the given consent.
func (f *Fixtures) CreateProfile(ctx context.Context, userID primitive.ObjectID, consent bool) models.Profile {
	f.t.Helper()

	p := models.Profile{
		UserID:    userID,
		Consent:   consent,
		UpdatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("profiles").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test profile: %v", err)
	}
	return p
}

// CreateTrip inserts a trip with the required fields and returns it.
func (f *Fixtures) CreateTrip(ctx context.Context, userID primitive.ObjectID, origin, destination, mode string) models.Trip {
	f.t.Helper()

	trip := models.Trip{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		Origin:      origin,
		Destination: destination,
		Mode:        mode,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := f.db.Collection("trips").InsertOne(ctx, trip); err != nil {
		f.t.Fatalf("failed to create test trip: %v", err)
	}
	return trip
}
