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
	"github.com/google/uuid"
)

// testRunService implements the TestRunService interface. Run entries are
// point-in-time copies of case and folder titles taken at creation; later
// renames do not change a run.
type testRunService struct {
	runRepo     repositories.TestRunRepository
	caseRepo    repositories.TestCaseRepository
	folderRepo  repositories.FolderRepository
	projectRepo repositories.ProjectRepository
	txManager   repositories.TransactionManager
	registry    *statuses.Registry
	logger      *slog.Logger
}

// NewTestRunService creates a new test run service
func NewTestRunService(
	runRepo repositories.TestRunRepository,
	caseRepo repositories.TestCaseRepository,
	folderRepo repositories.FolderRepository,
	projectRepo repositories.ProjectRepository,
	txManager repositories.TransactionManager,
	registry *statuses.Registry,
	logger *slog.Logger,
) services.TestRunService {
	return &testRunService{
		runRepo:     runRepo,
		caseRepo:    caseRepo,
		folderRepo:  folderRepo,
		projectRepo: projectRepo,
		txManager:   txManager,
		registry:    registry,
		logger:      logger,
	}
}

// CreateRun snapshots the selected test cases into run entries
func (s *testRunService) CreateRun(ctx context.Context, req *services.CreateRunRequest) (*models.TestRun, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validation.ValidateStruct(req,
		validation.Field(&req.ProjectID, validation.Required),
		validation.Field(&req.Name, validation.Required, validation.Length(1, config.MaxRunNameLength)),
		validation.Field(&req.CaseIDs, validation.Required),
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

	cases, err := s.caseRepo.GetByIDs(ctx, req.CaseIDs)
	if err != nil {
		return nil, err
	}
	if len(cases) != len(req.CaseIDs) {
		return nil, fmt.Errorf("%w: %d of %d selected test cases not found", domain.ErrValidation, len(req.CaseIDs)-len(cases), len(req.CaseIDs))
	}
	for _, tc := range cases {
		if tc.ProjectID != req.ProjectID {
			return nil, fmt.Errorf("%w: test case %s belongs to a different project", domain.ErrValidation, tc.ID)
		}
	}

	// Resolve folder titles once for the snapshot copies.
	folderTitles := make(map[string]string)
	for _, tc := range cases {
		if _, ok := folderTitles[tc.FolderID]; ok {
			continue
		}
		folder, err := s.folderRepo.GetByID(ctx, tc.FolderID)
		if err != nil {
			return nil, err
		}
		folderTitles[tc.FolderID] = folder.Title
	}

	now := time.Now()
	run := &models.TestRun{
		ProjectID: req.ProjectID,
		Name:      req.Name,
		CreatedBy: req.CreatedBy,
		CreatedAt: now,
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.runRepo.Create(txCtx, run); err != nil {
			return err
		}

		for _, tc := range cases {
			entry := &models.RunEntry{
				ID:          uuid.NewString(),
				RunID:       run.ID,
				CaseID:      tc.ID,
				CaseTitle:   tc.Title,
				FolderTitle: folderTitles[tc.FolderID],
				Status:      s.registry.DefaultStatus(),
				UpdatedAt:   now,
			}
			if err := s.runRepo.CreateEntry(txCtx, entry); err != nil {
				return err
			}
			run.Entries = append(run.Entries, *entry)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("test run created",
		"id", run.ID,
		"name", run.Name,
		"project_id", run.ProjectID,
		"entry_count", len(run.Entries),
	)

	return run, nil
}

// GetRun retrieves a run with its entries
func (s *testRunService) GetRun(ctx context.Context, id string) (*models.TestRun, error) {
	run, err := s.runRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	entries, err := s.runRepo.ListEntries(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	run.Entries = entries

	return run, nil
}

// ListByProject lists a project's runs without entries
func (s *testRunService) ListByProject(ctx context.Context, projectID string) ([]models.TestRun, error) {
	exists, err := s.projectRepo.Exists(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("project %s: %w", projectID, domain.ErrNotFound)
	}

	return s.runRepo.ListByProject(ctx, projectID)
}

// SetEntryStatus updates one entry's execution status
func (s *testRunService) SetEntryStatus(ctx context.Context, runID, entryID string, req *services.SetEntryStatusRequest) (*models.RunEntry, error) {
	if !s.registry.ValidStatus(req.Status) {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, req.Status)
	}

	// Scope the entry to its run before writing.
	if _, err := s.runRepo.GetEntry(ctx, runID, entryID); err != nil {
		return nil, err
	}

	entry, err := s.runRepo.UpdateEntryStatus(ctx, entryID, req.Status)
	if err != nil {
		return nil, err
	}

	s.logger.Info("run entry status updated", "run_id", runID, "entry_id", entryID, "status", entry.Status)

	return entry, nil
}
