package port

import (
	"errors"
	"time"
)

// Claims is the identity extracted from a verified access token.
type Claims struct {
	UserID    string
	ExpiresAt time.Time
}

// ErrInvalidToken covers every verification failure: bad signature, expired,
// malformed, missing subject. Callers close the connection with an
// unauthenticated code and never retry.
var ErrInvalidToken = errors.New("auth: invalid token")

// TokenVerifier verifies an access token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*Claims, error)
}
