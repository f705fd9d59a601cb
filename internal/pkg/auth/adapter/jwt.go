package adapter

import (
	"errors"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"

	"github.com/philipsolarz/chat-backend-sub000/internal/pkg/auth/port"
)

// JWTVerifier validates HMAC-signed access tokens issued by the auth
// service. The user id is carried in the standard subject claim.
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier constructs a verifier with the given signing secret.
func NewJWTVerifier(secret []byte) *JWTVerifier {
	return &JWTVerifier{secret: secret}
}

// NewJWTVerifierFromEnv reads the secret from AUTH_JWT_SECRET.
func NewJWTVerifierFromEnv() (*JWTVerifier, error) {
	secret := os.Getenv("AUTH_JWT_SECRET")
	if secret == "" {
		return nil, errors.New("auth: AUTH_JWT_SECRET environment variable is not set")
	}
	return NewJWTVerifier([]byte(secret)), nil
}

var _ port.TokenVerifier = (*JWTVerifier)(nil)

// Verify parses and validates the token, returning the claims on success.
func (v *JWTVerifier) Verify(token string) (*port.Claims, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, port.ErrInvalidToken
	}

	subject, err := parsed.Claims.GetSubject()
	if err != nil || subject == "" {
		return nil, port.ErrInvalidToken
	}

	claims := &port.Claims{UserID: subject}
	if exp, err := parsed.Claims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	return claims, nil
}
