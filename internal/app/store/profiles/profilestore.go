package profilestore

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
	return &Store{c: db.Collection("profiles")}
}

// Get loads the profile for a user. Returns mongo.ErrNoDocuments when the
// user has no profile row (possible when the best-effort insert at sign-up
// failed); callers treat that as consent=false.
func (s *Store) Get(ctx context.Context, userID primitive.ObjectID) (*models.Profile, error) {
	var p models.Profile
	if err := s.c.FindOne(ctx, bson.M{"_id": userID}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// HasConsented resolves the consent flag, tolerating every absence mode: a
// missing row, a missing collection, or a user id that never got a
// profile all come back (false, nil).
func (s *Store) HasConsented(ctx context.Context, userID primitive.ObjectID) (bool, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) || mongoerr.IsNamespaceNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return p.Consent, nil
}

// Init creates the user's profile row with consent=false if it does not
// already exist. An existing row, consented or not, is left untouched.
func (s *Store) Init(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$setOnInsert": bson.M{
			"consent":    false,
			"updated_at": time.Now(),
		}},
		options.Update().SetUpsert(true),
	)
	return err
}

// SetConsent upserts the profile with the given consent value. Granting
// twice is a no-op beyond bumping updated_at.
func (s *Store) SetConsent(ctx context.Context, userID primitive.ObjectID, consent bool) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{
			"consent":    consent,
			"updated_at": time.Now(),
		}},
		options.Update().SetUpsert(true),
	)
	return err
}
