// Package auth verifies caller credentials at the transport boundary.
// The engine trusts the resulting identity unconditionally; issuing tokens
// belongs to the identity provider, not this service.
package auth

import (
	"time"

	"answerhub-service/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// Identity is the verified claim set the engine consumes.
type Identity struct {
	UserID  string
	IsAdmin bool
}

// Verifier authenticates a bearer credential.
type Verifier interface {
	Verify(token string) (Identity, error)
}

// Claims mirrors the token payload: subject carries the user ID.
type Claims struct {
	IsAdmin bool `json:"isAdmin"`
	jwt.RegisteredClaims
}

// HS256Verifier validates HMAC-signed bearer tokens.
type HS256Verifier struct {
	secret []byte
}

func NewHS256Verifier(secret string) *HS256Verifier {
	return &HS256Verifier{secret: []byte(secret)}
}

func (v *HS256Verifier) Verify(tokenStr string) (Identity, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrUnauthorized
		}
		return v.secret, nil
	})
	if err != nil {
		return Identity{}, domain.ErrUnauthorized
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return Identity{}, domain.ErrUnauthorized
	}
	return Identity{UserID: claims.Subject, IsAdmin: claims.IsAdmin}, nil
}

// Sign issues a token for the given identity. Used by tests and local
// tooling; production tokens come from the identity provider.
func (v *HS256Verifier) Sign(identity Identity, ttl time.Duration) (string, error) {
	claims := &Claims{
		IsAdmin: identity.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UserID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
