// Package services implements the application logic of the auth server:
// account registration and the two credential schemes (opaque cookie
// sessions and JWT access/refresh pairs) on top of the repository layer.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kemalyaa/webinar-session-jwt/internal/common"
	"github.com/kemalyaa/webinar-session-jwt/internal/server/auth"
	"github.com/kemalyaa/webinar-session-jwt/internal/server/models"
	"github.com/kemalyaa/webinar-session-jwt/internal/server/repositories/repomanager"
)

// UserService manages user accounts.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// NewUserService creates a UserService bound to db.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager) *UserService {
	return &UserService{db: db, repomanager: m}
}

// Register creates a new account with the given name and password. The
// password is stored only as a bcrypt digest. Returns
// common.ErrUserAlreadyExists when the name is taken.
func (s *UserService) Register(ctx context.Context, name string, password string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	_, err := repo.GetByName(ctx, name)
	if err == nil {
		return nil, common.ErrUserAlreadyExists
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error checking user name: %w", err)
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user, err := repo.Create(ctx, &models.User{Name: name, PasswordHash: passwordHash})
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}
