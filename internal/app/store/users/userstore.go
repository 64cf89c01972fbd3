package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/natpac/tripcollect/internal/app/store/mongoerr"
	"github.com/natpac/tripcollect/internal/app/system/authutil"
	"github.com/natpac/tripcollect/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by normalized email. Returns
// mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": authutil.NormalizeEmail(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("an account with this email already exists")
	// ErrTokenNotFound is returned by ConfirmByToken for unknown or already-used tokens.
	ErrTokenNotFound = errors.New("confirmation link is invalid or already used")

	errBadAuthMethod = errors.New(`auth method must be "password"|"google"`)
)

// Create inserts a new user after normalizing & validating fields.
// Profile creation is the caller's concern (sign-up does it best-effort).
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.Email = authutil.NormalizeEmail(u.Email)

	switch u.AuthMethod {
	case "password", "google":
		// ok
	default:
		return models.User{}, errBadAuthMethod
	}

	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if mongoerr.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// ConfirmByToken marks the account holding this confirmation token as
// confirmed and clears the token so the link is single-use.
func (s *Store) ConfirmByToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrTokenNotFound
	}

	now := time.Now()
	var u models.User
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"confirm_token": token},
		bson.M{
			"$set":   bson.M{"confirmed_at": now, "updated_at": now},
			"$unset": bson.M{"confirm_token": ""},
		},
	).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	u.ConfirmedAt = &now
	u.ConfirmToken = ""
	return &u, nil
}
