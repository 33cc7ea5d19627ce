package repositories

import (
	"context"

	"testdeck/internal/domain/models"
)

// TestRunRepository handles run and run-entry persistence
type TestRunRepository interface {
	Create(ctx context.Context, run *models.TestRun) error
	GetByID(ctx context.Context, id string) (*models.TestRun, error)
	ListByProject(ctx context.Context, projectID string) ([]models.TestRun, error)
	CreateEntry(ctx context.Context, entry *models.RunEntry) error
	GetEntry(ctx context.Context, runID, entryID string) (*models.RunEntry, error)
	ListEntries(ctx context.Context, runID string) ([]models.RunEntry, error)
	UpdateEntryStatus(ctx context.Context, entryID, status string) (*models.RunEntry, error)
}
