package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"testdeck/internal/domain"
	"testdeck/internal/domain/models"
	"testdeck/internal/domain/repositories"
)

// PostgresTagRepository implements the TagRepository interface
type PostgresTagRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewTagRepository creates a new tag repository
func NewTagRepository(config *RepositoryConfig) repositories.TagRepository {
	return &PostgresTagRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create creates a new tag
func (r *PostgresTagRepository) Create(ctx context.Context, tag *models.Tag) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (project_id, name, created_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, r.tables.Tags)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		tag.ProjectID,
		tag.Name,
		tag.CreatedAt,
	).Scan(&tag.ID, &tag.CreatedAt)

	if err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("tag '%s' already exists in this project", tag.Name),
				ResourceType: "tag",
			}
		}
		return fmt.Errorf("create tag: %w", err)
	}

	return nil
}

// GetByID retrieves a tag by ID
func (r *PostgresTagRepository) GetByID(ctx context.Context, id string) (*models.Tag, error) {
	query := fmt.Sprintf(`
		SELECT id, project_id, name, created_at FROM %s WHERE id = $1
	`, r.tables.Tags)

	var tag models.Tag
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&tag.ID,
		&tag.ProjectID,
		&tag.Name,
		&tag.CreatedAt,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("tag %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get tag: %w", err)
	}

	return &tag, nil
}

// ListByProject lists a project's tags ordered by name
func (r *PostgresTagRepository) ListByProject(ctx context.Context, projectID string) ([]models.Tag, error) {
	query := fmt.Sprintf(`
		SELECT id, project_id, name, created_at FROM %s
		WHERE project_id = $1
		ORDER BY name ASC
	`, r.tables.Tags)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var tag models.Tag
		if err := rows.Scan(&tag.ID, &tag.ProjectID, &tag.Name, &tag.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, tag)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tags: %w", err)
	}

	if tags == nil {
		tags = []models.Tag{}
	}

	return tags, nil
}

// Delete deletes a tag; its case links go with it via FK cascade
func (r *PostgresTagRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Tags)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("tag %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// Attach links a tag to a test case; attaching twice is a no-op
func (r *PostgresTagRepository) Attach(ctx context.Context, caseID, tagID string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (case_id, tag_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, r.tables.CaseTags)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, caseID, tagID); err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("test case or tag: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("attach tag: %w", err)
	}

	return nil
}

// Detach removes a tag from a test case
func (r *PostgresTagRepository) Detach(ctx context.Context, caseID, tagID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s WHERE case_id = $1 AND tag_id = $2
	`, r.tables.CaseTags)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, caseID, tagID)
	if err != nil {
		return fmt.Errorf("detach tag: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("tag link: %w", domain.ErrNotFound)
	}

	return nil
}

// ListByCase lists the tags attached to a test case
func (r *PostgresTagRepository) ListByCase(ctx context.Context, caseID string) ([]models.Tag, error) {
	query := fmt.Sprintf(`
		SELECT t.id, t.project_id, t.name, t.created_at
		FROM %s t
		JOIN %s ct ON ct.tag_id = t.id
		WHERE ct.case_id = $1
		ORDER BY t.name ASC
	`, r.tables.Tags, r.tables.CaseTags)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, caseID)
	if err != nil {
		return nil, fmt.Errorf("list case tags: %w", err)
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var tag models.Tag
		if err := rows.Scan(&tag.ID, &tag.ProjectID, &tag.Name, &tag.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, tag)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tags: %w", err)
	}

	if tags == nil {
		tags = []models.Tag{}
	}

	return tags, nil
}
