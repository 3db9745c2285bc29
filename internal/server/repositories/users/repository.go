// Package users declares the repository contract for the user store.
package users

import (
	"context"

	"github.com/kemalyaa/webinar-session-jwt/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByName(ctx context.Context, name string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}
