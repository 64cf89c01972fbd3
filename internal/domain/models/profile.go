// internal/domain/models/profile.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Profile carries per-user study metadata that lives outside the account
// record. Today that is just the data-sharing consent flag.
//
// The profile row is created best-effort at sign-up and upserted when
// consent is granted; a missing profile is treated as Consent=false
// everywhere, so readers must tolerate its absence.
type Profile struct {
	UserID    primitive.ObjectID `bson:"_id" json:"user_id"`
	Consent   bool               `bson:"consent" json:"consent"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}
