package services

import (
	"context"

	"testdeck/internal/domain/models"
	"testdeck/internal/httputil"
)

// FolderService is the folder hierarchy manager: creation with append
// positioning, rename, reposition (move/reorder) under the dense-ordering
// invariant, forest listing and ancestor path lookup.
type FolderService interface {
	// CreateFolder appends a folder as the last child of the given parent
	// (root level when no parent is given)
	CreateFolder(ctx context.Context, req *CreateFolderRequest) (*models.Folder, error)

	// RenameFolder updates the title only
	RenameFolder(ctx context.Context, id string, req *RenameFolderRequest) (*models.Folder, error)

	// MoveFolder relocates a folder to a new parent and/or sibling index,
	// restoring dense positions in both affected sibling groups atomically
	MoveFolder(ctx context.Context, id string, req *MoveFolderRequest) (*models.Folder, error)

	// ReorderFolder moves a folder within its current parent
	ReorderFolder(ctx context.Context, id string, req *ReorderFolderRequest) (*models.Folder, error)

	// ListProjectFolders returns the project's folder forest as a nested
	// structure ordered by position at every level
	ListProjectFolders(ctx context.Context, projectID string) (*models.FolderForest, error)

	// GetAncestorPath returns the path from the root down to and including
	// the given folder
	GetAncestorPath(ctx context.Context, id string) ([]models.Folder, error)
}

// CreateFolderRequest represents a folder creation request
type CreateFolderRequest struct {
	ProjectID      string  `json:"project_id"`
	Title          string  `json:"title"`
	ParentFolderID *string `json:"parent_folder_id,omitempty"` // nil for root level
	CreatedBy      string  `json:"-"`                          // set from the authenticated user
}

// RenameFolderRequest represents a rename request
type RenameFolderRequest struct {
	Title string `json:"title"`
}

// MoveFolderRequest represents a reposition request. TargetParentID is
// tri-state: absent keeps the current parent, explicit null moves to root.
type MoveFolderRequest struct {
	TargetParentID httputil.OptionalString `json:"target_parent_id"`
	Position       *int                    `json:"position"`
}

// ReorderFolderRequest moves a folder within its current parent
type ReorderFolderRequest struct {
	Position *int `json:"position"`
}
