package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kemalyaa/webinar-session-jwt/internal/common"
	"github.com/kemalyaa/webinar-session-jwt/internal/dbx"
	"github.com/kemalyaa/webinar-session-jwt/internal/server/auth"
	"github.com/kemalyaa/webinar-session-jwt/internal/server/config"
	"github.com/kemalyaa/webinar-session-jwt/internal/server/models"
	"github.com/kemalyaa/webinar-session-jwt/internal/server/repositories/repomanager"
)

// TokenPair is what the JWT scheme hands to a client: a short-lived signed
// access token and an opaque single-use refresh token.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// JWTService implements the token-pair credential scheme: stateless access
// tokens verified by signature alone, and stored refresh tokens rotated on
// every use.
type JWTService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	secretKey                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

// NewJWTService creates a JWTService bound to db with the token lifetime
// settings from cfg.
func NewJWTService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *JWTService {
	return &JWTService{
		db:                           db,
		repomanager:                  m,
		secretKey:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// Login verifies the credentials and mints a fresh token pair.
func (s *JWTService) Login(ctx context.Context, name string, password string) (*TokenPair, error) {
	user, err := getUserByCredentials(ctx, s.repomanager.Users(s.db), name, password)
	if err != nil {
		return nil, err
	}

	return s.generateTokenPair(ctx, s.db, user.ID)
}

// Refresh exchanges a refresh token for a new pair, consuming it in the
// process. Rotation is exactly-once: the consumed row is deleted inside the
// same transaction that records the replacement, and a delete that finds no
// row means a concurrent refresh already won, so this one fails.
func (s *JWTService) Refresh(ctx context.Context, rawToken string) (*TokenPair, error) {
	repo := s.repomanager.RefreshTokens(s.db)

	token, err := repo.GetByHash(ctx, auth.HashSessionToken(rawToken))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrRefreshTokenNotFound
		}
		return nil, fmt.Errorf("error retrieving refresh token: %w", err)
	}

	// A revoked token is treated exactly like an unknown one.
	if token.Revoked {
		return nil, common.ErrRefreshTokenNotFound
	}

	if !time.Now().Before(token.ExpiresAt) {
		if _, err := repo.Delete(ctx, token.ID); err != nil {
			return nil, fmt.Errorf("error deleting refresh token: %w", err)
		}
		return nil, common.ErrRefreshTokenExpired
	}

	var pair *TokenPair

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		found, err := s.repomanager.RefreshTokens(tx).Delete(ctx, token.ID)
		if err != nil {
			return fmt.Errorf("error consuming refresh token: %w", err)
		}
		if !found {
			return common.ErrRefreshTokenNotFound
		}

		user, err := s.repomanager.Users(tx).GetByID(ctx, token.UserID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrUserNotFound
			}
			return fmt.Errorf("error retrieving user: %w", err)
		}

		pair, err = s.generateTokenPair(ctx, tx, user.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return pair, nil
}

// Authenticate resolves a raw access token to its user. Verification is by
// signature, expiry, and type claim; the database is touched only to load
// the user.
func (s *JWTService) Authenticate(ctx context.Context, rawToken string) (*models.User, error) {
	claims, err := auth.DecodeToken(rawToken, auth.TokenTypeAccess, s.secretKey)
	if err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}

	return user, nil
}

// generateTokenPair mints a signed access token and a stored opaque refresh
// token for userID, using db as the handle so it can run inside a rotation
// transaction.
func (s *JWTService) generateTokenPair(ctx context.Context, db dbx.DBTX, userID string) (*TokenPair, error) {
	accessToken, err := auth.CreateAccessToken(userID, s.secretKey, s.accessTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("error signing access token: %w", err)
	}

	raw, hash, err := auth.GenerateSessionToken()
	if err != nil {
		return nil, fmt.Errorf("error generating refresh token: %w", err)
	}

	expiresAt := time.Now().Add(s.refreshTokenValidityDuration)
	if err := s.repomanager.RefreshTokens(db).Create(ctx, userID, hash, expiresAt); err != nil {
		return nil, fmt.Errorf("error storing refresh token: %w", err)
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: raw}, nil
}
