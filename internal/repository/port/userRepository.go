package repository

import (
	"context"
	"errors"
	"time"
)

// User is the account record as seen by this service.
type User struct {
	ID          string
	Email       string
	DisplayName string
	Plan        string // "free" or "premium", from the subscription service
	CreatedAt   time.Time
}

// ErrUserNotFound signals a lookup for an id with no account.
var ErrUserNotFound = errors.New("repository: user not found")

// UserRepository exposes the account lookups the realtime core needs.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*User, error)

	// Plan returns the user's subscription tier, defaulting to "free" when
	// the user has no subscription row.
	Plan(ctx context.Context, id string) (string, error)
}
