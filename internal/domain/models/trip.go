// internal/domain/models/trip.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Trip is a single recorded journey. Origin, Destination, and Mode are
// always present on a persisted trip; the remaining fields are optional
// and stored as null/absent when the contributor left them blank.
//
// Trips are append-only: the application never updates or deletes them.
type Trip struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID `bson:"user_id" json:"user_id"`
	TripNumber string             `bson:"trip_number,omitempty" json:"trip_number,omitempty"`

	Origin      string `bson:"origin" json:"origin"`
	Destination string `bson:"destination" json:"destination"`
	Mode        string `bson:"mode" json:"mode"`

	StartTime  *time.Time `bson:"start_time,omitempty" json:"start_time,omitempty"`
	EndTime    *time.Time `bson:"end_time,omitempty" json:"end_time,omitempty"`
	Companions string     `bson:"companions,omitempty" json:"companions,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
