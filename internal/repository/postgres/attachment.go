package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"testdeck/internal/domain"
	"testdeck/internal/domain/models"
	"testdeck/internal/domain/repositories"
)

// PostgresAttachmentRepository implements the AttachmentRepository interface
type PostgresAttachmentRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewAttachmentRepository creates a new attachment repository
func NewAttachmentRepository(config *RepositoryConfig) repositories.AttachmentRepository {
	return &PostgresAttachmentRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create records one attachment's metadata
func (r *PostgresAttachmentRepository) Create(ctx context.Context, att *models.Attachment) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (entry_id, file_name, storage_key, size_bytes, uploaded_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, r.tables.Attachments)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		att.EntryID,
		att.FileName,
		att.StorageKey,
		att.SizeBytes,
		att.UploadedBy,
		att.CreatedAt,
	).Scan(&att.ID, &att.CreatedAt)

	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("run entry %s: %w", att.EntryID, domain.ErrNotFound)
		}
		return fmt.Errorf("create attachment: %w", err)
	}

	return nil
}

// ListByEntry lists an entry's attachments, newest first
func (r *PostgresAttachmentRepository) ListByEntry(ctx context.Context, entryID string) ([]models.Attachment, error) {
	query := fmt.Sprintf(`
		SELECT id, entry_id, file_name, storage_key, size_bytes, uploaded_by, created_at
		FROM %s
		WHERE entry_id = $1
		ORDER BY created_at DESC
	`, r.tables.Attachments)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, entryID)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	defer rows.Close()

	var attachments []models.Attachment
	for rows.Next() {
		var att models.Attachment
		err := rows.Scan(
			&att.ID,
			&att.EntryID,
			&att.FileName,
			&att.StorageKey,
			&att.SizeBytes,
			&att.UploadedBy,
			&att.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan attachment: %w", err)
		}
		attachments = append(attachments, att)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attachments: %w", err)
	}

	if attachments == nil {
		attachments = []models.Attachment{}
	}

	return attachments, nil
}
