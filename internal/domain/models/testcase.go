package models

import "time"

// TestCase lives inside a folder and carries a dense in-folder position using
// the same append rule as folders.
type TestCase struct {
	ID          string    `json:"id" db:"id"`
	ProjectID   string    `json:"project_id" db:"project_id"`
	FolderID    string    `json:"folder_id" db:"folder_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Priority    string    `json:"priority" db:"priority"`
	Position    int       `json:"position" db:"position"`
	CreatedBy   string    `json:"created_by" db:"created_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
	Tags        []Tag     `json:"tags,omitempty"`
}
