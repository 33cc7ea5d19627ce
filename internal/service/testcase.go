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
	"testdeck/internal/statuses"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// testCaseService implements the TestCaseService interface. Cases carry a
// dense in-folder position assigned with the same append rule folders use.
type testCaseService struct {
	caseRepo   repositories.TestCaseRepository
	folderRepo repositories.FolderRepository
	tagRepo    repositories.TagRepository
	txManager  repositories.TransactionManager
	registry   *statuses.Registry
	logger     *slog.Logger
}

// NewTestCaseService creates a new test case service
func NewTestCaseService(
	caseRepo repositories.TestCaseRepository,
	folderRepo repositories.FolderRepository,
	tagRepo repositories.TagRepository,
	txManager repositories.TransactionManager,
	registry *statuses.Registry,
	logger *slog.Logger,
) services.TestCaseService {
	return &testCaseService{
		caseRepo:   caseRepo,
		folderRepo: folderRepo,
		tagRepo:    tagRepo,
		txManager:  txManager,
		registry:   registry,
		logger:     logger,
	}
}

// CreateTestCase appends a case at the end of its folder
func (s *testCaseService) CreateTestCase(ctx context.Context, req *services.CreateTestCaseRequest) (*models.TestCase, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	folder, err := s.folderRepo.GetByID(ctx, req.FolderID)
	if err != nil {
		return nil, fmt.Errorf("folder: %w", err)
	}

	priority := req.Priority
	if priority == "" {
		priority = s.registry.DefaultPriority()
	}

	now := time.Now()
	tc := &models.TestCase{
		ProjectID:   folder.ProjectID,
		FolderID:    folder.ID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    priority,
		CreatedBy:   req.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		maxPos, err := s.caseRepo.MaxPosition(txCtx, folder.ID)
		if err != nil {
			return err
		}
		tc.Position = maxPos + 1

		return s.caseRepo.Create(txCtx, tc)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("test case created",
		"id", tc.ID,
		"title", tc.Title,
		"folder_id", tc.FolderID,
		"position", tc.Position,
	)

	return tc, nil
}

// BulkCreateTestCases inserts several cases into one folder in a single
// transaction with consecutive positions
func (s *testCaseService) BulkCreateTestCases(ctx context.Context, req *services.BulkCreateTestCasesRequest) ([]models.TestCase, error) {
	if len(req.Cases) == 0 {
		return nil, fmt.Errorf("%w: at least one case is required", domain.ErrValidation)
	}
	if len(req.Cases) > config.MaxBulkCases {
		return nil, fmt.Errorf("%w: at most %d cases per request", domain.ErrValidation, config.MaxBulkCases)
	}

	folder, err := s.folderRepo.GetByID(ctx, req.FolderID)
	if err != nil {
		return nil, fmt.Errorf("folder: %w", err)
	}

	now := time.Now()
	cases := make([]models.TestCase, 0, len(req.Cases))
	for i, item := range req.Cases {
		title := strings.TrimSpace(item.Title)
		if err := validation.Validate(title,
			validation.Required.Error("title is required"),
			validation.Length(1, config.MaxTestCaseTitleLength),
		); err != nil {
			return nil, fmt.Errorf("%w: case %d: title %v", domain.ErrValidation, i, err)
		}

		priority := item.Priority
		if priority == "" {
			priority = s.registry.DefaultPriority()
		} else if !s.registry.ValidPriority(priority) {
			return nil, fmt.Errorf("%w: case %d: unknown priority %q", domain.ErrValidation, i, priority)
		}

		cases = append(cases, models.TestCase{
			ProjectID:   folder.ProjectID,
			FolderID:    folder.ID,
			Title:       title,
			Description: item.Description,
			Priority:    priority,
			CreatedBy:   req.CreatedBy,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		maxPos, err := s.caseRepo.MaxPosition(txCtx, folder.ID)
		if err != nil {
			return err
		}

		for i := range cases {
			cases[i].Position = maxPos + 1 + i
			if err := s.caseRepo.Create(txCtx, &cases[i]); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("test cases bulk created", "folder_id", folder.ID, "count", len(cases))

	return cases, nil
}

// GetTestCase retrieves a test case with its tags
func (s *testCaseService) GetTestCase(ctx context.Context, id string) (*models.TestCase, error) {
	tc, err := s.caseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	tags, err := s.tagRepo.ListByCase(ctx, tc.ID)
	if err != nil {
		return nil, err
	}
	tc.Tags = tags

	return tc, nil
}

// UpdateTestCase updates a case's editable fields
func (s *testCaseService) UpdateTestCase(ctx context.Context, id string, req *services.UpdateTestCaseRequest) (*models.TestCase, error) {
	if req.Title == nil && req.Description == nil && req.Priority == nil {
		return nil, fmt.Errorf("%w: at least one field must be provided", domain.ErrValidation)
	}

	tc, err := s.caseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if err := validation.Validate(title,
			validation.Required.Error("title is required"),
			validation.Length(1, config.MaxTestCaseTitleLength),
		); err != nil {
			return nil, fmt.Errorf("%w: title %v", domain.ErrValidation, err)
		}
		tc.Title = title
	}
	if req.Description != nil {
		tc.Description = *req.Description
	}
	if req.Priority != nil {
		if !s.registry.ValidPriority(*req.Priority) {
			return nil, fmt.Errorf("%w: unknown priority %q", domain.ErrValidation, *req.Priority)
		}
		tc.Priority = *req.Priority
	}

	tc.UpdatedAt = time.Now()

	if err := s.caseRepo.Update(ctx, tc); err != nil {
		return nil, err
	}

	s.logger.Info("test case updated", "id", tc.ID, "title", tc.Title)

	return tc, nil
}

// DeleteTestCase removes a case and closes the position gap it leaves in its
// folder, atomically
func (s *testCaseService) DeleteTestCase(ctx context.Context, id string) error {
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		tc, err := s.caseRepo.GetByID(txCtx, id)
		if err != nil {
			return err
		}

		if err := s.caseRepo.Delete(txCtx, id); err != nil {
			return err
		}

		return s.caseRepo.ClosePositionGap(txCtx, tc.FolderID, tc.Position)
	})
	if err != nil {
		return err
	}

	s.logger.Info("test case deleted", "id", id)

	return nil
}

// ListByFolder returns the folder's cases ordered by position
func (s *testCaseService) ListByFolder(ctx context.Context, folderID string) ([]models.TestCase, error) {
	if _, err := s.folderRepo.GetByID(ctx, folderID); err != nil {
		return nil, fmt.Errorf("folder: %w", err)
	}

	return s.caseRepo.ListByFolder(ctx, folderID)
}

// validateCreateRequest validates a test case creation request
func (s *testCaseService) validateCreateRequest(req *services.CreateTestCaseRequest) error {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.FolderID, validation.Required),
		validation.Field(&req.Title,
			validation.Required,
			validation.Length(1, config.MaxTestCaseTitleLength),
		),
	); err != nil {
		return err
	}

	if req.Priority != "" && !s.registry.ValidPriority(req.Priority) {
		return fmt.Errorf("unknown priority %q", req.Priority)
	}

	return nil
}
