package mongoerr

import (
	"errors"
	"fmt"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
)

func TestIsNamespaceNotFound_Nil(t *testing.T) {
	if IsNamespaceNotFound(nil) {
		t.Error("expected nil error to not match")
	}
}

func TestIsNamespaceNotFound_Code26(t *testing.T) {
	err := mongo.CommandError{Code: 26, Message: "ns does not exist"}
	if !IsNamespaceNotFound(err) {
		t.Error("expected code 26 to match")
	}
}

func TestIsNamespaceNotFound_Wrapped(t *testing.T) {
	err := fmt.Errorf("list trips: %w", mongo.CommandError{Code: 26, Message: "ns does not exist"})
	if !IsNamespaceNotFound(err) {
		t.Error("expected wrapped code 26 to match")
	}
}

func TestIsNamespaceNotFound_OtherCode(t *testing.T) {
	err := mongo.CommandError{Code: 13, Message: "unauthorized"}
	if IsNamespaceNotFound(err) {
		t.Error("expected other command errors to not match")
	}
}

func TestIsNamespaceNotFound_PlainError(t *testing.T) {
	if IsNamespaceNotFound(errors.New("connection reset")) {
		t.Error("expected a plain error to not match")
	}
}
