package tripstore

import (
	"context"
	"errors"
	"time"

	"github.com/natpac/tripcollect/internal/app/store/mongoerr"
	"github.com/natpac/tripcollect/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("trips")}
}

var (
	errMissingUser   = errors.New("trip must belong to a user")
	errMissingFields = errors.New("origin, destination, and mode are required")
	errBadMode       = errors.New("unknown travel mode")
)

// Insert persists a new trip. The invariant that origin, destination, and
// mode are present on every stored trip is enforced here as the last line
// of defense; the form handler validates first and never calls the store
// with an incomplete trip.
func (s *Store) Insert(ctx context.Context, t models.Trip) (models.Trip, error) {
	if t.UserID.IsZero() {
		return models.Trip{}, errMissingUser
	}
	if t.Origin == "" || t.Destination == "" || t.Mode == "" {
		return models.Trip{}, errMissingFields
	}
	if !models.IsValidMode(t.Mode) {
		return models.Trip{}, errBadMode
	}

	t.ID = primitive.NewObjectID()
	t.CreatedAt = time.Now()

	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return models.Trip{}, err
	}
	return t, nil
}

// ListByUser returns the user's trips, newest first. A missing trips
// collection reads as an empty slice, not an error.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Trip, error) {
	return s.list(ctx, bson.M{"user_id": userID})
}

// ListAll returns every trip in the system, newest first, for the research
// view. Filtering happens in memory on the handler side, mirroring the
// fetch-all-then-filter shape of the listing screens.
func (s *Store) ListAll(ctx context.Context) ([]models.Trip, error) {
	return s.list(ctx, bson.M{})
}

func (s *Store) list(ctx context.Context, filter bson.M) ([]models.Trip, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		if mongoerr.IsNamespaceNotFound(err) {
			return []models.Trip{}, nil
		}
		return nil, err
	}
	defer cur.Close(ctx)

	trips := []models.Trip{}
	if err := cur.All(ctx, &trips); err != nil {
		if mongoerr.IsNamespaceNotFound(err) {
			return []models.Trip{}, nil
		}
		return nil, err
	}
	return trips, nil
}
