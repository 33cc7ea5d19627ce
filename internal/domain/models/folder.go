package models

import "time"

// Folder is a node in a per-project tree. Position is a zero-based, dense,
// unique-per-sibling-group integer expressing display order; a sibling group
// is every folder sharing the same (project_id, parent_folder_id), with a
// NULL parent designating the root level.
type Folder struct {
	ID             string    `json:"id" db:"id"`
	ProjectID      string    `json:"project_id" db:"project_id"`
	ParentFolderID *string   `json:"parent_folder_id" db:"parent_folder_id"` // NULL = root level
	Title          string    `json:"title" db:"title"`
	Position       int       `json:"position" db:"position"`
	CreatedBy      string    `json:"created_by" db:"created_by"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// FolderTreeNode represents a folder in the project tree with nested children,
// each children slice ordered by ascending position.
type FolderTreeNode struct {
	ID             string            `json:"id"`
	Title          string            `json:"title"`
	ParentFolderID *string           `json:"parent_folder_id"`
	Position       int               `json:"position"`
	CreatedAt      time.Time         `json:"created_at"`
	Children       []*FolderTreeNode `json:"children"` // Pointers for proper nesting
}

// FolderForest is the root of a project's folder tree.
type FolderForest struct {
	Folders []*FolderTreeNode `json:"folders"`
}
