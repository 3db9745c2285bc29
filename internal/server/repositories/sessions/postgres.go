// Package sessions provides a PostgreSQL-backed repository for opaque user
// sessions used by the cookie-based authentication scheme.
package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kemalyaa/webinar-session-jwt/internal/common"
	"github.com/kemalyaa/webinar-session-jwt/internal/dbx"
	"github.com/kemalyaa/webinar-session-jwt/internal/server/models"
)

// PostgresRepository implements CRUD operations for sessions over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new session row for userID keyed by the token digest.
func (r *PostgresRepository) Create(ctx context.Context, userID string, tokenHash string, expiresAt time.Time) (*models.UserSession, error) {
	query := `
		INSERT INTO user_sessions (id, user_id, token_hash, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, last_refreshed_at
	`
	session := &models.UserSession{
		ID:        uuid.NewString(),
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
	}
	err := r.db.QueryRowContext(ctx, query,
		session.ID, userID, tokenHash, expiresAt).Scan(&session.CreatedAt, &session.LastRefreshedAt)

	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}

	return session, nil
}

// GetByHash returns the session row for the given token digest.
// If not found, it returns common.ErrorNotFound.
func (r *PostgresRepository) GetByHash(ctx context.Context, tokenHash string) (*models.UserSession, error) {
	query := `
		SELECT id, user_id, token_hash, created_at, last_refreshed_at, expires_at
		FROM user_sessions
		WHERE token_hash = $1
	`
	session := &models.UserSession{}
	err := r.db.QueryRowContext(ctx, query, tokenHash).Scan(
		&session.ID, &session.UserID, &session.TokenHash,
		&session.CreatedAt, &session.LastRefreshedAt, &session.ExpiresAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return session, nil
}

// UpdateSlidingState persists the mutable sliding-expiry fields of a session.
func (r *PostgresRepository) UpdateSlidingState(ctx context.Context, id string, expiresAt, lastRefreshedAt time.Time) error {
	query := `
		UPDATE user_sessions
		SET expires_at = $2, last_refreshed_at = $3
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, id, expiresAt, lastRefreshedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Delete removes a session by id.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `
		DELETE FROM user_sessions
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
