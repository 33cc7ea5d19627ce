package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"testdeck/internal/domain"
	"testdeck/internal/domain/models"
	"testdeck/internal/domain/repositories"
)

// PostgresTestCaseRepository implements the TestCaseRepository interface
type PostgresTestCaseRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewTestCaseRepository creates a new test case repository
func NewTestCaseRepository(config *RepositoryConfig) repositories.TestCaseRepository {
	return &PostgresTestCaseRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const testCaseColumns = "id, project_id, folder_id, title, description, priority, position, created_by, created_at, updated_at"

func scanTestCase(row interface{ Scan(...interface{}) error }, tc *models.TestCase) error {
	return row.Scan(
		&tc.ID,
		&tc.ProjectID,
		&tc.FolderID,
		&tc.Title,
		&tc.Description,
		&tc.Priority,
		&tc.Position,
		&tc.CreatedBy,
		&tc.CreatedAt,
		&tc.UpdatedAt,
	)
}

// Create inserts a test case with its assigned in-folder position
func (r *PostgresTestCaseRepository) Create(ctx context.Context, tc *models.TestCase) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (project_id, folder_id, title, description, priority, position, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`, r.tables.TestCases)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		tc.ProjectID,
		tc.FolderID,
		tc.Title,
		tc.Description,
		tc.Priority,
		tc.Position,
		tc.CreatedBy,
		tc.CreatedAt,
		tc.UpdatedAt,
	).Scan(&tc.ID, &tc.CreatedAt, &tc.UpdatedAt)

	if err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("position %d is already taken in this folder", tc.Position),
				ResourceType: "test_case",
			}
		}
		return fmt.Errorf("create test case: %w", err)
	}

	return nil
}

// GetByID retrieves a test case by ID
func (r *PostgresTestCaseRepository) GetByID(ctx context.Context, id string) (*models.TestCase, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, testCaseColumns, r.tables.TestCases)

	var tc models.TestCase
	executor := GetExecutor(ctx, r.pool)
	if err := scanTestCase(executor.QueryRow(ctx, query, id), &tc); err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("test case %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get test case: %w", err)
	}

	return &tc, nil
}

// Update updates a test case's editable fields
func (r *PostgresTestCaseRepository) Update(ctx context.Context, tc *models.TestCase) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $1, description = $2, priority = $3, updated_at = $4
		WHERE id = $5
	`, r.tables.TestCases)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		tc.Title,
		tc.Description,
		tc.Priority,
		tc.UpdatedAt,
		tc.ID,
	)

	if err != nil {
		return fmt.Errorf("update test case: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("test case %s: %w", tc.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete deletes a test case
func (r *PostgresTestCaseRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.TestCases)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete test case: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("test case %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// ListByFolder returns the folder's test cases ordered by position
func (r *PostgresTestCaseRepository) ListByFolder(ctx context.Context, folderID string) ([]models.TestCase, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE folder_id = $1
		ORDER BY position ASC
	`, testCaseColumns, r.tables.TestCases)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, folderID)
	if err != nil {
		return nil, fmt.Errorf("list test cases: %w", err)
	}
	defer rows.Close()

	var cases []models.TestCase
	for rows.Next() {
		var tc models.TestCase
		if err := scanTestCase(rows, &tc); err != nil {
			return nil, fmt.Errorf("scan test case: %w", err)
		}
		cases = append(cases, tc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate test cases: %w", err)
	}

	if cases == nil {
		cases = []models.TestCase{}
	}

	return cases, nil
}

// GetByIDs resolves a batch of test cases for run snapshotting
func (r *PostgresTestCaseRepository) GetByIDs(ctx context.Context, ids []string) ([]models.TestCase, error) {
	if len(ids) == 0 {
		return []models.TestCase{}, nil
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE id = ANY($1)
		ORDER BY folder_id, position ASC
	`, testCaseColumns, r.tables.TestCases)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("get test cases by ids: %w", err)
	}
	defer rows.Close()

	var cases []models.TestCase
	for rows.Next() {
		var tc models.TestCase
		if err := scanTestCase(rows, &tc); err != nil {
			return nil, fmt.Errorf("scan test case: %w", err)
		}
		cases = append(cases, tc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate test cases: %w", err)
	}

	return cases, nil
}

// MaxPosition returns the highest position inside a folder, -1 if empty
func (r *PostgresTestCaseRepository) MaxPosition(ctx context.Context, folderID string) (int, error) {
	query := fmt.Sprintf(`
		SELECT COALESCE(MAX(position), -1) FROM %s WHERE folder_id = $1
	`, r.tables.TestCases)

	var max int
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, folderID).Scan(&max); err != nil {
		return 0, fmt.Errorf("max case position: %w", err)
	}

	return max, nil
}

// ClosePositionGap decrements positions above the removed slot in a folder
func (r *PostgresTestCaseRepository) ClosePositionGap(ctx context.Context, folderID string, abovePosition int) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET position = position - 1, updated_at = NOW()
		WHERE folder_id = $1 AND position > $2
	`, r.tables.TestCases)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, folderID, abovePosition); err != nil {
		return fmt.Errorf("close case position gap: %w", err)
	}

	return nil
}
