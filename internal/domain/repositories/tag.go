package repositories

import (
	"context"

	"testdeck/internal/domain/models"
)

// TagRepository handles tag persistence and test-case tag links
type TagRepository interface {
	Create(ctx context.Context, tag *models.Tag) error
	GetByID(ctx context.Context, id string) (*models.Tag, error)
	ListByProject(ctx context.Context, projectID string) ([]models.Tag, error)
	Delete(ctx context.Context, id string) error
	Attach(ctx context.Context, caseID, tagID string) error
	Detach(ctx context.Context, caseID, tagID string) error
	ListByCase(ctx context.Context, caseID string) ([]models.Tag, error)
}
