package services

import (
	"context"

	"testdeck/internal/domain/models"
)

// TestRunService handles run snapshotting and status tracking
type TestRunService interface {
	// CreateRun snapshots the selected test cases into run entries
	CreateRun(ctx context.Context, req *CreateRunRequest) (*models.TestRun, error)
	GetRun(ctx context.Context, id string) (*models.TestRun, error)
	ListByProject(ctx context.Context, projectID string) ([]models.TestRun, error)
	SetEntryStatus(ctx context.Context, runID, entryID string, req *SetEntryStatusRequest) (*models.RunEntry, error)
}

// CreateRunRequest represents a run creation request
type CreateRunRequest struct {
	ProjectID string   `json:"project_id"`
	Name      string   `json:"name"`
	CaseIDs   []string `json:"case_ids"`
	CreatedBy string   `json:"-"`
}

// SetEntryStatusRequest updates one run entry's execution status
type SetEntryStatusRequest struct {
	Status string `json:"status"`
}
