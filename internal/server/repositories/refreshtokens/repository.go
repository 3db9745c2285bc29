// Package refreshtokens declares the repository contract for managing
// refresh tokens in persistent storage.
package refreshtokens

import (
	"context"
	"time"

	"github.com/kemalyaa/webinar-session-jwt/internal/server/models"
)

// Repository defines operations for issuing, retrieving, and consuming
// refresh tokens.
type Repository interface {
	// Create stores a new refresh token digest for userID with a fixed expiry.
	Create(ctx context.Context, userID string, tokenHash string, expiresAt time.Time) error

	// GetByHash looks up a refresh token by its digest and returns its
	// metadata, including the revoked flag. Implementations should return
	// a not-found error when the token is absent.
	GetByHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)

	// Delete removes a refresh token by id and reports whether a row was
	// actually deleted. The report is what makes rotation exactly-once:
	// of two concurrent consumers of the same token, only one observes
	// found == true.
	Delete(ctx context.Context, id string) (found bool, err error)

	// DeleteExpired removes all tokens whose expiry is at or before now and
	// returns the number of rows removed. Intended for an external periodic
	// job; nothing in-process schedules it.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
