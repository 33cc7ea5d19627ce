package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"testdeck/internal/config"
	"testdeck/internal/domain"
	"testdeck/internal/domain/models"
	"testdeck/internal/domain/repositories"
	"testdeck/internal/domain/services"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// projectService implements the ProjectService interface
type projectService struct {
	projectRepo repositories.ProjectRepository
	logger      *slog.Logger
}

// NewProjectService creates a new project service
func NewProjectService(projectRepo repositories.ProjectRepository, logger *slog.Logger) services.ProjectService {
	return &projectService{
		projectRepo: projectRepo,
		logger:      logger,
	}
}

// CreateProject creates a new project
func (s *projectService) CreateProject(ctx context.Context, req *services.CreateProjectRequest) (*models.Project, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, config.MaxProjectNameLength)),
		validation.Field(&req.OwnerID, validation.Required),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	now := time.Now()
	project := &models.Project{
		OwnerID:   req.OwnerID,
		Name:      req.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info("project created", "id", project.ID, "name", project.Name, "owner_id", project.OwnerID)

	return project, nil
}

// GetProject retrieves a project by ID
func (s *projectService) GetProject(ctx context.Context, id, ownerID string) (*models.Project, error) {
	return s.projectRepo.GetByID(ctx, id, ownerID)
}

// ListProjects retrieves all projects for an owner
func (s *projectService) ListProjects(ctx context.Context, ownerID string) ([]models.Project, error) {
	return s.projectRepo.List(ctx, ownerID)
}

// UpdateProject renames a project
func (s *projectService) UpdateProject(ctx context.Context, id, ownerID string, req *services.UpdateProjectRequest) (*models.Project, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validation.Validate(req.Name,
		validation.Required.Error("name is required"),
		validation.Length(1, config.MaxProjectNameLength),
	); err != nil {
		return nil, fmt.Errorf("%w: name %v", domain.ErrValidation, err)
	}

	project, err := s.projectRepo.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	project.Name = req.Name
	project.UpdatedAt = time.Now()

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info("project updated", "id", project.ID, "name", project.Name)

	return project, nil
}

// DeleteProject soft-deletes a project
func (s *projectService) DeleteProject(ctx context.Context, id, ownerID string) error {
	project, err := s.projectRepo.Delete(ctx, id, ownerID)
	if err != nil {
		return err
	}

	s.logger.Info("project deleted", "id", project.ID, "name", project.Name)

	return nil
}
