package repositories

import (
	"context"

	"testdeck/internal/domain/models"
)

// ProjectRepository handles project persistence
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, id, ownerID string) (*models.Project, error)
	// Exists checks project existence regardless of owner (collaborator lookup
	// for folder creation)
	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, ownerID string) ([]models.Project, error)
	Update(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, id, ownerID string) (*models.Project, error)
}
