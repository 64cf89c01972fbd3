// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/natpac/tripcollect/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the user's email, Mongo ObjectID, and a found flag.
// If no user is present in context or the user ID is malformed, it returns
// "", NilObjectID, false. This ensures callers can trust that ok=true means
// a valid, authenticated user with a valid ObjectID.
func UserCtx(r *http.Request) (email string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session - fail closed for security.
		// This should not happen in normal operation; indicates session corruption.
		return "", primitive.NilObjectID, false
	}
	return user.Email, userID, true
}

// HasConsented reports whether the current request's user has acknowledged
// the data-sharing notice. False for anonymous requests.
func HasConsented(r *http.Request) bool {
	user, ok := auth.CurrentUser(r)
	return ok && user.Consent
}
