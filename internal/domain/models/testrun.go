package models

import "time"

// TestRun groups a point-in-time snapshot of test cases for execution.
type TestRun struct {
	ID        string     `json:"id" db:"id"`
	ProjectID string     `json:"project_id" db:"project_id"`
	Name      string     `json:"name" db:"name"`
	CreatedBy string     `json:"created_by" db:"created_by"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	ClosedAt  *time.Time `json:"closed_at,omitempty" db:"closed_at"`
	Entries   []RunEntry `json:"entries,omitempty"`
}

// RunEntry is a snapshot of one test case at run-creation time. CaseTitle and
// FolderTitle are copies, not live references: later renames of the source
// case or folder do not change the run.
type RunEntry struct {
	ID          string    `json:"id" db:"id"`
	RunID       string    `json:"run_id" db:"run_id"`
	CaseID      string    `json:"case_id" db:"case_id"`
	CaseTitle   string    `json:"case_title" db:"case_title"`
	FolderTitle string    `json:"folder_title" db:"folder_title"`
	Status      string    `json:"status" db:"status"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
