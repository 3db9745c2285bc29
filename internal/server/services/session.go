package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kemalyaa/webinar-session-jwt/internal/common"
	"github.com/kemalyaa/webinar-session-jwt/internal/server/auth"
	"github.com/kemalyaa/webinar-session-jwt/internal/server/config"
	"github.com/kemalyaa/webinar-session-jwt/internal/server/models"
	"github.com/kemalyaa/webinar-session-jwt/internal/server/repositories/repomanager"
)

// SessionService implements the opaque-cookie credential scheme: sessions
// with a sliding deadline that rolls forward on use, capped by an absolute
// ceiling anchored at creation.
type SessionService struct {
	db              *sql.DB
	repomanager     repomanager.RepositoryManager
	absoluteTimeout time.Duration
	rollingInterval time.Duration
	extendWindow    time.Duration
}

// NewSessionService creates a SessionService bound to db with the session
// lifetime settings from cfg.
func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *SessionService {
	return &SessionService{
		db:              db,
		repomanager:     m,
		absoluteTimeout: cfg.SessionAbsoluteTimeout,
		rollingInterval: cfg.SessionRollingInterval,
		extendWindow:    cfg.SessionExtendWindow,
	}
}

// Login verifies the credentials and issues a new session. The returned raw
// token is shown to the client exactly once; only its digest is stored. The
// initial deadline is the extend window, clipped to the absolute ceiling.
func (s *SessionService) Login(ctx context.Context, name string, password string) (*models.User, string, error) {
	user, err := getUserByCredentials(ctx, s.repomanager.Users(s.db), name, password)
	if err != nil {
		return nil, "", err
	}

	raw, hash, err := auth.GenerateSessionToken()
	if err != nil {
		return nil, "", fmt.Errorf("error generating session token: %w", err)
	}

	now := time.Now()
	expiresAt := now.Add(s.extendWindow)
	if ceiling := now.Add(s.absoluteTimeout); ceiling.Before(expiresAt) {
		expiresAt = ceiling
	}

	if _, err := s.repomanager.Sessions(s.db).Create(ctx, user.ID, hash, expiresAt); err != nil {
		return nil, "", fmt.Errorf("error creating session: %w", err)
	}

	return user, raw, nil
}

// Authenticate resolves a raw session token to its user, enforcing both
// expiry rules and rolling the sliding deadline forward when enough time has
// passed since the last extension. Expired and orphaned sessions are deleted
// on the spot rather than by a background sweep.
//
// The absolute ceiling is checked before the rolling extension so that a
// session past its ceiling can never be extended, and the sliding deadline is
// checked after so a fresh extension counts in the same request.
func (s *SessionService) Authenticate(ctx context.Context, rawToken string) (*models.User, error) {
	if rawToken == "" {
		return nil, common.ErrNoSessionCookie
	}

	repo := s.repomanager.Sessions(s.db)

	session, err := repo.GetByHash(ctx, auth.HashSessionToken(rawToken))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrSessionNotFound
		}
		return nil, fmt.Errorf("error retrieving session: %w", err)
	}

	now := time.Now()

	absoluteDeadline := session.CreatedAt.Add(s.absoluteTimeout)
	if !now.Before(absoluteDeadline) {
		if err := repo.Delete(ctx, session.ID); err != nil {
			return nil, fmt.Errorf("error deleting session: %w", err)
		}
		return nil, common.ErrSessionExpired
	}

	// Throttled rolling extension: at most one write per rolling interval.
	if now.Sub(session.LastRefreshedAt) >= s.rollingInterval {
		expiresAt := now.Add(s.extendWindow)
		if absoluteDeadline.Before(expiresAt) {
			expiresAt = absoluteDeadline
		}
		if err := repo.UpdateSlidingState(ctx, session.ID, expiresAt, now); err != nil {
			return nil, fmt.Errorf("error extending session: %w", err)
		}
		session.ExpiresAt = expiresAt
		session.LastRefreshedAt = now
	}

	if !now.Before(session.ExpiresAt) {
		if err := repo.Delete(ctx, session.ID); err != nil {
			return nil, fmt.Errorf("error deleting session: %w", err)
		}
		return nil, common.ErrSessionExpired
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// The account is gone; the session is garbage.
			if err := repo.Delete(ctx, session.ID); err != nil {
				return nil, fmt.Errorf("error deleting session: %w", err)
			}
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}

	return user, nil
}

// Logout deletes the session identified by rawToken. A missing cookie or an
// unknown token is not an error: logout is idempotent.
func (s *SessionService) Logout(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return nil
	}

	repo := s.repomanager.Sessions(s.db)

	session, err := repo.GetByHash(ctx, auth.HashSessionToken(rawToken))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return fmt.Errorf("error retrieving session: %w", err)
	}

	if err := repo.Delete(ctx, session.ID); err != nil {
		return fmt.Errorf("error deleting session: %w", err)
	}

	return nil
}
