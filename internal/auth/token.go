// Package auth verifies optional bearer tokens so logged quiz answers can be
// attributed to a user. Tokens are HS256 JWTs carrying a user_id claim.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/openhome-school/backend/internal/apperrors"
)

// DefaultTTL matches the lifetime of tokens minted by the login layer.
const DefaultTTL = 72 * time.Hour

// IssueToken signs a token for userID valid for ttl.
func IssueToken(secret []byte, userID int64, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", apperrors.ErrorWithContextf(apperrors.ErrInvalidInput, "jwt secret is not configured")
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     now.Add(ttl).Unix(),
		"iat":     now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseToken verifies tokenString and returns its user id.
func ParseToken(secret []byte, tokenString string) (int64, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return 0, apperrors.WrapErrorf(apperrors.ErrUnauthorized, "invalid token: %v", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, apperrors.ErrorWithContextf(apperrors.ErrUnauthorized, "unexpected claims type")
	}
	// JSON numbers decode as float64
	raw, ok := claims["user_id"].(float64)
	if !ok {
		return 0, apperrors.ErrorWithContextf(apperrors.ErrUnauthorized, "token has no user_id")
	}
	if raw != float64(int64(raw)) || raw <= 0 {
		return 0, apperrors.ErrorWithContextf(apperrors.ErrUnauthorized, "malformed user_id %v", raw)
	}
	return int64(raw), nil
}

var errNoBearer = errors.New("no bearer token")

func bearerToken(header string) (string, error) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
		return "", fmt.Errorf("%w in %q", errNoBearer, header)
	}
	return header[len(prefix):], nil
}
