package services

import (
	"context"

	"testdeck/internal/domain/models"
)

// TestCaseService handles test case business logic
type TestCaseService interface {
	CreateTestCase(ctx context.Context, req *CreateTestCaseRequest) (*models.TestCase, error)
	// BulkCreateTestCases inserts several cases into one folder in a single
	// transaction, assigning consecutive positions
	BulkCreateTestCases(ctx context.Context, req *BulkCreateTestCasesRequest) ([]models.TestCase, error)
	GetTestCase(ctx context.Context, id string) (*models.TestCase, error)
	UpdateTestCase(ctx context.Context, id string, req *UpdateTestCaseRequest) (*models.TestCase, error)
	DeleteTestCase(ctx context.Context, id string) error
	ListByFolder(ctx context.Context, folderID string) ([]models.TestCase, error)
}

// CreateTestCaseRequest represents a test case creation request
type CreateTestCaseRequest struct {
	FolderID    string `json:"folder_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	CreatedBy   string `json:"-"`
}

// BulkCreateTestCasesRequest creates several cases in one folder at once
type BulkCreateTestCasesRequest struct {
	FolderID  string             `json:"folder_id"`
	Cases     []BulkTestCaseItem `json:"cases"`
	CreatedBy string             `json:"-"`
}

// BulkTestCaseItem is one case of a bulk creation request
type BulkTestCaseItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// UpdateTestCaseRequest represents a test case update request
type UpdateTestCaseRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Priority    *string `json:"priority,omitempty"`
}
