// Package economy exposes the funds facts the betting engine depends on but
// does not compute: a user's available balance lives with the economy
// collaborator and is queried as a read-only precondition.
package economy

import (
	"context"
	"errors"
)

// ErrUserNotFound is an error when no funds record exists for the user
var ErrUserNotFound = errors.New("user funds not found")

// Provider supplies a user's available funds
type Provider interface {
	AvailableFunds(ctx context.Context, userID string) (int, error)
}
