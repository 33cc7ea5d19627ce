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

// tagService implements the TagService interface
type tagService struct {
	tagRepo     repositories.TagRepository
	caseRepo    repositories.TestCaseRepository
	projectRepo repositories.ProjectRepository
	logger      *slog.Logger
}

// NewTagService creates a new tag service
func NewTagService(
	tagRepo repositories.TagRepository,
	caseRepo repositories.TestCaseRepository,
	projectRepo repositories.ProjectRepository,
	logger *slog.Logger,
) services.TagService {
	return &tagService{
		tagRepo:     tagRepo,
		caseRepo:    caseRepo,
		projectRepo: projectRepo,
		logger:      logger,
	}
}

// CreateTag creates a new tag in a project
func (s *tagService) CreateTag(ctx context.Context, req *services.CreateTagRequest) (*models.Tag, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validation.ValidateStruct(req,
		validation.Field(&req.ProjectID, validation.Required),
		validation.Field(&req.Name, validation.Required, validation.Length(1, config.MaxTagNameLength)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	exists, err := s.projectRepo.Exists(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("project %s: %w", req.ProjectID, domain.ErrNotFound)
	}

	tag := &models.Tag{
		ProjectID: req.ProjectID,
		Name:      req.Name,
		CreatedAt: time.Now(),
	}

	if err := s.tagRepo.Create(ctx, tag); err != nil {
		return nil, err
	}

	s.logger.Info("tag created", "id", tag.ID, "name", tag.Name, "project_id", tag.ProjectID)

	return tag, nil
}

// ListByProject lists a project's tags
func (s *tagService) ListByProject(ctx context.Context, projectID string) ([]models.Tag, error) {
	return s.tagRepo.ListByProject(ctx, projectID)
}

// DeleteTag deletes a tag and its case links
func (s *tagService) DeleteTag(ctx context.Context, id string) error {
	if err := s.tagRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("tag deleted", "id", id)

	return nil
}

// AttachTag links a tag to a test case in the same project
func (s *tagService) AttachTag(ctx context.Context, caseID, tagID string) error {
	tc, err := s.caseRepo.GetByID(ctx, caseID)
	if err != nil {
		return err
	}

	tag, err := s.tagRepo.GetByID(ctx, tagID)
	if err != nil {
		return err
	}

	if tag.ProjectID != tc.ProjectID {
		return fmt.Errorf("%w: tag belongs to a different project", domain.ErrValidation)
	}

	return s.tagRepo.Attach(ctx, caseID, tagID)
}

// DetachTag removes a tag from a test case
func (s *tagService) DetachTag(ctx context.Context, caseID, tagID string) error {
	return s.tagRepo.Detach(ctx, caseID, tagID)
}
