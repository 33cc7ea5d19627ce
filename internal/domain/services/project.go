package services

import (
	"context"

	"testdeck/internal/domain/models"
)

// ProjectService handles project business logic
type ProjectService interface {
	CreateProject(ctx context.Context, req *CreateProjectRequest) (*models.Project, error)
	GetProject(ctx context.Context, id, ownerID string) (*models.Project, error)
	ListProjects(ctx context.Context, ownerID string) ([]models.Project, error)
	UpdateProject(ctx context.Context, id, ownerID string, req *UpdateProjectRequest) (*models.Project, error)
	DeleteProject(ctx context.Context, id, ownerID string) error
}

// CreateProjectRequest represents a project creation request
type CreateProjectRequest struct {
	Name    string `json:"name"`
	OwnerID string `json:"-"`
}

// UpdateProjectRequest represents a project update request
type UpdateProjectRequest struct {
	Name string `json:"name"`
}
