// Package mongoerr classifies driver errors the stores care about.
package mongoerr

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// namespaceNotFound is the server code returned when a command targets a
// collection that has not been created yet.
const namespaceNotFound = 26

// IsNamespaceNotFound reports whether err means the target collection does
// not exist. Read paths treat this as an empty result rather than an
// error: a freshly provisioned database has no trips collection until the
// first insert, and the listings must render normally before that.
func IsNamespaceNotFound(err error) bool {
	if err == nil {
		return false
	}
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Code == namespaceNotFound
	}
	return false
}

// IsDup reports whether err is a unique-index violation (duplicate key).
// Sign-up uses this to distinguish "email already registered" from other
// write failures.
func IsDup(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
