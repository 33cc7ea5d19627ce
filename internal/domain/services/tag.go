package services

import (
	"context"

	"testdeck/internal/domain/models"
)

// TagService handles tag business logic
type TagService interface {
	CreateTag(ctx context.Context, req *CreateTagRequest) (*models.Tag, error)
	ListByProject(ctx context.Context, projectID string) ([]models.Tag, error)
	DeleteTag(ctx context.Context, id string) error
	AttachTag(ctx context.Context, caseID, tagID string) error
	DetachTag(ctx context.Context, caseID, tagID string) error
}

// CreateTagRequest represents a tag creation request
type CreateTagRequest struct {
	ProjectID string `json:"project_id"`
	Name      string `json:"name"`
}
