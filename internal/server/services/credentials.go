package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/kemalyaa/webinar-session-jwt/internal/common"
	"github.com/kemalyaa/webinar-session-jwt/internal/server/auth"
	"github.com/kemalyaa/webinar-session-jwt/internal/server/models"
	"github.com/kemalyaa/webinar-session-jwt/internal/server/repositories/users"
)

// getUserByCredentials resolves a name/password pair to a user. An unknown
// name and a wrong password both collapse to common.ErrInvalidCredentials so
// the response never reveals which half was wrong.
func getUserByCredentials(ctx context.Context, repo users.Repository, name string, password string) (*models.User, error) {
	user, err := repo.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}

	if !auth.VerifyPassword(password, user.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}

	return user, nil
}
