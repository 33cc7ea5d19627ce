package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"testdeck/internal/domain"
	"testdeck/internal/domain/models"
	"testdeck/internal/domain/repositories"
)

// PostgresFolderRepository implements the FolderRepository interface.
// Sibling-group predicates use IS NOT DISTINCT FROM so a NULL parent (root
// level) is matched like any other group key. Every method resolves its
// executor through GetExecutor, so the reposition updates run on the
// surrounding transaction when one is present.
type PostgresFolderRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *RepositoryConfig) repositories.FolderRepository {
	return &PostgresFolderRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create inserts a folder with its assigned position
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (project_id, parent_folder_id, title, position, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, r.tables.Folders)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		folder.ProjectID,
		folder.ParentFolderID,
		folder.Title,
		folder.Position,
		folder.CreatedBy,
		folder.CreatedAt,
		folder.UpdatedAt,
	).Scan(&folder.ID, &folder.CreatedAt, &folder.UpdatedAt)

	if err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("position %d is already taken in this sibling group", folder.Position),
				ResourceType: "folder",
			}
		}
		return fmt.Errorf("create folder: %w", err)
	}

	return nil
}

// GetByID retrieves a folder by ID
func (r *PostgresFolderRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT id, project_id, parent_folder_id, title, position, created_by, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.tables.Folders)

	var folder models.Folder
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&folder.ID,
		&folder.ProjectID,
		&folder.ParentFolderID,
		&folder.Title,
		&folder.Position,
		&folder.CreatedBy,
		&folder.CreatedAt,
		&folder.UpdatedAt,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}

	return &folder, nil
}

// UpdateTitle renames a folder in place
func (r *PostgresFolderRepository) UpdateTitle(ctx context.Context, id, title string) (*models.Folder, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING id, project_id, parent_folder_id, title, position, created_by, created_at, updated_at
	`, r.tables.Folders)

	var folder models.Folder
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, title, id).Scan(
		&folder.ID,
		&folder.ProjectID,
		&folder.ParentFolderID,
		&folder.Title,
		&folder.Position,
		&folder.CreatedBy,
		&folder.CreatedAt,
		&folder.UpdatedAt,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("rename folder: %w", err)
	}

	return &folder, nil
}

// ListByProject returns every folder in a project ordered by parent then position
func (r *PostgresFolderRepository) ListByProject(ctx context.Context, projectID string) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT id, project_id, parent_folder_id, title, position, created_by, created_at, updated_at
		FROM %s
		WHERE project_id = $1
		ORDER BY parent_folder_id NULLS FIRST, position ASC
	`, r.tables.Folders)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	var folders []models.Folder
	for rows.Next() {
		var folder models.Folder
		err := rows.Scan(
			&folder.ID,
			&folder.ProjectID,
			&folder.ParentFolderID,
			&folder.Title,
			&folder.Position,
			&folder.CreatedBy,
			&folder.CreatedAt,
			&folder.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}

	return folders, nil
}

// CountByProject returns the total folder count in a project
func (r *PostgresFolderRepository) CountByProject(ctx context.Context, projectID string) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE project_id = $1`, r.tables.Folders)

	var count int
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, projectID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count folders: %w", err)
	}

	return count, nil
}

// MaxPosition returns the highest position in a sibling group, -1 if empty
func (r *PostgresFolderRepository) MaxPosition(ctx context.Context, projectID string, parentFolderID *string) (int, error) {
	query := fmt.Sprintf(`
		SELECT COALESCE(MAX(position), -1)
		FROM %s
		WHERE project_id = $1 AND parent_folder_id IS NOT DISTINCT FROM $2
	`, r.tables.Folders)

	var max int
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, projectID, parentFolderID).Scan(&max); err != nil {
		return 0, fmt.Errorf("max sibling position: %w", err)
	}

	return max, nil
}

// CountSiblings counts a sibling group's members, excluding excludeID if non-empty
func (r *PostgresFolderRepository) CountSiblings(ctx context.Context, projectID string, parentFolderID *string, excludeID string) (int, error) {
	var query string
	var args []interface{}

	if excludeID == "" {
		query = fmt.Sprintf(`
			SELECT COUNT(*)
			FROM %s
			WHERE project_id = $1 AND parent_folder_id IS NOT DISTINCT FROM $2
		`, r.tables.Folders)
		args = append(args, projectID, parentFolderID)
	} else {
		query = fmt.Sprintf(`
			SELECT COUNT(*)
			FROM %s
			WHERE project_id = $1 AND parent_folder_id IS NOT DISTINCT FROM $2 AND id <> $3
		`, r.tables.Folders)
		args = append(args, projectID, parentFolderID, excludeID)
	}

	var count int
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count siblings: %w", err)
	}

	return count, nil
}

// IsDescendant reports whether candidateID is reachable from folderID via
// child links. The walk is expressed as a recursive CTE over the transitive
// closure of parent_folder_id.
func (r *PostgresFolderRepository) IsDescendant(ctx context.Context, folderID, candidateID string) (bool, error) {
	query := fmt.Sprintf(`
		WITH RECURSIVE descendants AS (
			SELECT id FROM %s WHERE parent_folder_id = $1
			UNION ALL
			SELECT f.id FROM %s f
			JOIN descendants d ON f.parent_folder_id = d.id
		)
		SELECT EXISTS (SELECT 1 FROM descendants WHERE id = $2)
	`, r.tables.Folders, r.tables.Folders)

	var isDescendant bool
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, folderID, candidateID).Scan(&isDescendant); err != nil {
		return false, fmt.Errorf("descendant check: %w", err)
	}

	return isDescendant, nil
}

// ClosePositionGap decrements by one every position greater than abovePosition
// in the given sibling group
func (r *PostgresFolderRepository) ClosePositionGap(ctx context.Context, projectID string, parentFolderID *string, abovePosition int) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET position = position - 1, updated_at = NOW()
		WHERE project_id = $1 AND parent_folder_id IS NOT DISTINCT FROM $2 AND position > $3
	`, r.tables.Folders)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, projectID, parentFolderID, abovePosition); err != nil {
		return fmt.Errorf("close position gap: %w", err)
	}

	return nil
}

// OpenPositionGap increments by one every position at or above fromPosition in
// the given sibling group. The moved folder itself is excluded by id: in a
// same-parent reorder its stale row would otherwise be shifted before
// placement overwrites it.
func (r *PostgresFolderRepository) OpenPositionGap(ctx context.Context, projectID string, parentFolderID *string, fromPosition int, excludeID string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET position = position + 1, updated_at = NOW()
		WHERE project_id = $1 AND parent_folder_id IS NOT DISTINCT FROM $2 AND position >= $3 AND id <> $4
	`, r.tables.Folders)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, projectID, parentFolderID, fromPosition, excludeID); err != nil {
		return fmt.Errorf("open position gap: %w", err)
	}

	return nil
}

// SetLocation places a folder at the given parent and position
func (r *PostgresFolderRepository) SetLocation(ctx context.Context, id string, parentFolderID *string, position int) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET parent_folder_id = $1, position = $2, updated_at = NOW()
		WHERE id = $3
	`, r.tables.Folders)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, parentFolderID, position, id)
	if err != nil {
		return fmt.Errorf("set folder location: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}

	return nil
}
