package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"testdeck/internal/domain"
	"testdeck/internal/domain/models"
	"testdeck/internal/domain/repositories"
)

// PostgresTestRunRepository implements the TestRunRepository interface
type PostgresTestRunRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewTestRunRepository creates a new test run repository
func NewTestRunRepository(config *RepositoryConfig) repositories.TestRunRepository {
	return &PostgresTestRunRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create creates a new run
func (r *PostgresTestRunRepository) Create(ctx context.Context, run *models.TestRun) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (project_id, name, created_by, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, r.tables.Runs)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		run.ProjectID,
		run.Name,
		run.CreatedBy,
		run.CreatedAt,
	).Scan(&run.ID, &run.CreatedAt)

	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}

	return nil
}

// GetByID retrieves a run by ID (entries not included)
func (r *PostgresTestRunRepository) GetByID(ctx context.Context, id string) (*models.TestRun, error) {
	query := fmt.Sprintf(`
		SELECT id, project_id, name, created_by, created_at, closed_at
		FROM %s
		WHERE id = $1
	`, r.tables.Runs)

	var run models.TestRun
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&run.ID,
		&run.ProjectID,
		&run.Name,
		&run.CreatedBy,
		&run.CreatedAt,
		&run.ClosedAt,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("run %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get run: %w", err)
	}

	return &run, nil
}

// ListByProject lists a project's runs, newest first
func (r *PostgresTestRunRepository) ListByProject(ctx context.Context, projectID string) ([]models.TestRun, error) {
	query := fmt.Sprintf(`
		SELECT id, project_id, name, created_by, created_at, closed_at
		FROM %s
		WHERE project_id = $1
		ORDER BY created_at DESC
	`, r.tables.Runs)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []models.TestRun
	for rows.Next() {
		var run models.TestRun
		err := rows.Scan(
			&run.ID,
			&run.ProjectID,
			&run.Name,
			&run.CreatedBy,
			&run.CreatedAt,
			&run.ClosedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	if runs == nil {
		runs = []models.TestRun{}
	}

	return runs, nil
}

// CreateEntry inserts one snapshot entry
func (r *PostgresTestRunRepository) CreateEntry(ctx context.Context, entry *models.RunEntry) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, run_id, case_id, case_title, folder_title, status, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, r.tables.RunEntries)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query,
		entry.ID,
		entry.RunID,
		entry.CaseID,
		entry.CaseTitle,
		entry.FolderTitle,
		entry.Status,
		entry.UpdatedAt,
	); err != nil {
		return fmt.Errorf("create run entry: %w", err)
	}

	return nil
}

// GetEntry retrieves one entry scoped to its run
func (r *PostgresTestRunRepository) GetEntry(ctx context.Context, runID, entryID string) (*models.RunEntry, error) {
	query := fmt.Sprintf(`
		SELECT id, run_id, case_id, case_title, folder_title, status, updated_at
		FROM %s
		WHERE id = $1 AND run_id = $2
	`, r.tables.RunEntries)

	var entry models.RunEntry
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, entryID, runID).Scan(
		&entry.ID,
		&entry.RunID,
		&entry.CaseID,
		&entry.CaseTitle,
		&entry.FolderTitle,
		&entry.Status,
		&entry.UpdatedAt,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("run entry %s: %w", entryID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get run entry: %w", err)
	}

	return &entry, nil
}

// ListEntries lists a run's entries in snapshot order
func (r *PostgresTestRunRepository) ListEntries(ctx context.Context, runID string) ([]models.RunEntry, error) {
	query := fmt.Sprintf(`
		SELECT id, run_id, case_id, case_title, folder_title, status, updated_at
		FROM %s
		WHERE run_id = $1
		ORDER BY folder_title, case_title ASC
	`, r.tables.RunEntries)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("list run entries: %w", err)
	}
	defer rows.Close()

	var entries []models.RunEntry
	for rows.Next() {
		var entry models.RunEntry
		err := rows.Scan(
			&entry.ID,
			&entry.RunID,
			&entry.CaseID,
			&entry.CaseTitle,
			&entry.FolderTitle,
			&entry.Status,
			&entry.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan run entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run entries: %w", err)
	}

	if entries == nil {
		entries = []models.RunEntry{}
	}

	return entries, nil
}

// UpdateEntryStatus sets one entry's execution status
func (r *PostgresTestRunRepository) UpdateEntryStatus(ctx context.Context, entryID, status string) (*models.RunEntry, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING id, run_id, case_id, case_title, folder_title, status, updated_at
	`, r.tables.RunEntries)

	var entry models.RunEntry
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, status, entryID).Scan(
		&entry.ID,
		&entry.RunID,
		&entry.CaseID,
		&entry.CaseTitle,
		&entry.FolderTitle,
		&entry.Status,
		&entry.UpdatedAt,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("run entry %s: %w", entryID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("update run entry status: %w", err)
	}

	return &entry, nil
}
