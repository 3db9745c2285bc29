// Package auth implements the token primitives for both credential schemes:
// signed JWT access tokens, opaque random tokens with one-way digests, and
// password hashing.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/kemalyaa/webinar-session-jwt/internal/common"
)

// Token type claims. A refresh credential is opaque and never decoded, so
// the only signed type in circulation is "access"; the claim still exists to
// reject any signed token minted for another purpose.
const (
	TokenTypeAccess = "access"
)

// Claims is the JWT claim set: registered claims plus an explicit token
// type. Subject carries the user id.
type Claims struct {
	jwt.RegisteredClaims
	TokenType string `json:"type"`
}

// CreateAccessToken produces a signed, time-bound access token for userID.
func CreateAccessToken(userID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		TokenType: TokenTypeAccess,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// DecodeToken verifies signature and expiry and returns the claims.
// It fails with common.ErrTokenExpired for expired tokens and
// common.ErrInvalidToken for anything malformed, signed with the wrong key,
// or carrying an unexpected type claim. The type check defends against
// token confusion: a token minted for one purpose must not validate as
// another even though its signature is fine.
func DecodeToken(tokenString string, expectedType string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, common.ErrInvalidToken
		}
		return secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}
	if claims.TokenType != expectedType {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
