// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a registered trip-data contributor.
//
// NOTE:
//   - Consent is not embedded on User. Use the profiles collection to
//     discover whether a user has acknowledged the data-sharing notice.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"` // lowercased; unique
	PasswordHash string             `bson:"password_hash,omitempty" json:"-"`
	AuthMethod   string             `bson:"auth_method,omitempty" json:"auth_method,omitempty"` // password | google

	// Email confirmation. ConfirmedAt is nil until the sign-up link is
	// followed; ConfirmToken is cleared once used.
	ConfirmedAt  *time.Time `bson:"confirmed_at,omitempty" json:"confirmed_at,omitempty"`
	ConfirmToken string     `bson:"confirm_token,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Confirmed reports whether the account's email address has been verified.
func (u *User) Confirmed() bool { return u.ConfirmedAt != nil }
