// Package auth provides reusable JWT utilities with no HTTP dependencies.
// Tokens are issued by an external identity provider; this package only
// validates them and extracts the acting user.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMissingUser is returned for tokens that do not name a user
var ErrMissingUser = errors.New("token has no user claim")

// Claims represents the claims in the JWT token.
type Claims struct {
	User  string   `json:"user"`
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// HasRole checks if the claims carry role
func (c *Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// ValidateToken validates a JWT token string and returns the claims if valid.
// It verifies the signature using the provided secret and ensures the token
// uses the expected HS256 signing method.
func ValidateToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Verify the signing method to prevent algorithm confusion attacks
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("expected HS256 signing method, got %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.User == "" {
		return nil, ErrMissingUser
	}

	return claims, nil
}

// IssueToken signs an HS256 token for user. Used by the console's dev login
// and by tests; production tokens come from the identity provider.
func IssueToken(user string, roles []string, secret string, ttl time.Duration) (string, error) {
	if user == "" {
		return "", ErrMissingUser
	}
	now := time.Now()
	claims := Claims{
		User:  user,
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
