package users

import (
	"context"

	"github.com/dkarlovs/tacpanel/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	Count(ctx context.Context) (int64, error)
	UpdatePassword(ctx context.Context, id string, hashedPassword string) error
	UpdateTOTP(ctx context.Context, id string, secret string, enabled bool) error
}
