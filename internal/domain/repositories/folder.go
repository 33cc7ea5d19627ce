package repositories

import (
	"context"

	"testdeck/internal/domain/models"
)

// FolderRepository persists folder rows and the position bookkeeping the
// hierarchy service builds on. Implementations must honor a transaction
// stored in the context so that gap closure, space making and placement
// commit or roll back as one unit.
type FolderRepository interface {
	// Create inserts a folder with its assigned position
	Create(ctx context.Context, folder *models.Folder) error

	// GetByID retrieves a folder by ID
	GetByID(ctx context.Context, id string) (*models.Folder, error)

	// UpdateTitle renames a folder in place; position and parent are untouched
	UpdateTitle(ctx context.Context, id, title string) (*models.Folder, error)

	// ListByProject returns every folder in a project ordered by parent then position
	ListByProject(ctx context.Context, projectID string) ([]models.Folder, error)

	// CountByProject returns the total folder count in a project
	CountByProject(ctx context.Context, projectID string) (int, error)

	// MaxPosition returns the highest position in a sibling group, -1 if empty
	MaxPosition(ctx context.Context, projectID string, parentFolderID *string) (int, error)

	// CountSiblings counts a sibling group's members, excluding excludeID if non-empty
	CountSiblings(ctx context.Context, projectID string, parentFolderID *string, excludeID string) (int, error)

	// IsDescendant reports whether candidateID is reachable from folderID via child links
	IsDescendant(ctx context.Context, folderID, candidateID string) (bool, error)

	// ClosePositionGap decrements by one every position greater than abovePosition
	// in the given sibling group
	ClosePositionGap(ctx context.Context, projectID string, parentFolderID *string, abovePosition int) error

	// OpenPositionGap increments by one every position at or above fromPosition in
	// the given sibling group, excluding the folder being moved
	OpenPositionGap(ctx context.Context, projectID string, parentFolderID *string, fromPosition int, excludeID string) error

	// SetLocation places a folder at the given parent and position
	SetLocation(ctx context.Context, id string, parentFolderID *string, position int) error
}
