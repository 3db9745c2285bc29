// Package sessions declares the repository contract for opaque user
// sessions in persistent storage.
package sessions

import (
	"context"
	"time"

	"github.com/kemalyaa/webinar-session-jwt/internal/server/models"
)

// Repository defines operations for issuing, retrieving, extending, and
// deleting opaque sessions.
type Repository interface {
	// Create stores a new session for userID. Only the token digest is
	// persisted; created_at and last_refreshed_at are set at insertion.
	Create(ctx context.Context, userID string, tokenHash string, expiresAt time.Time) (*models.UserSession, error)

	// GetByHash looks up a session by the digest of its bearer secret.
	// Implementations should return a not-found error when absent.
	GetByHash(ctx context.Context, tokenHash string) (*models.UserSession, error)

	// UpdateSlidingState persists a rolling extension: the new sliding
	// deadline and the time the extension happened.
	UpdateSlidingState(ctx context.Context, id string, expiresAt, lastRefreshedAt time.Time) error

	// Delete removes a session by id. Deleting a non-existent session is
	// not an error.
	Delete(ctx context.Context, id string) error
}
