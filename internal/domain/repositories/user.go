package repositories

import (
	"context"

	"testdeck/internal/domain/models"
)

// UserRepository handles user persistence
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}
