package repositories

import (
	"context"

	"testdeck/internal/domain/models"
)

// TestCaseRepository handles test case persistence
type TestCaseRepository interface {
	Create(ctx context.Context, tc *models.TestCase) error
	GetByID(ctx context.Context, id string) (*models.TestCase, error)
	Update(ctx context.Context, tc *models.TestCase) error
	Delete(ctx context.Context, id string) error
	// ListByFolder returns the folder's test cases ordered by position
	ListByFolder(ctx context.Context, folderID string) ([]models.TestCase, error)
	// GetByIDs resolves a batch of test cases (run snapshotting)
	GetByIDs(ctx context.Context, ids []string) ([]models.TestCase, error)
	// MaxPosition returns the highest position inside a folder, -1 if empty
	MaxPosition(ctx context.Context, folderID string) (int, error)
	// ClosePositionGap decrements positions above the removed slot in a folder
	ClosePositionGap(ctx context.Context, folderID string, abovePosition int) error
}
