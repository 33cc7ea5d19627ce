package repositories

import (
	"context"

	"testdeck/internal/domain/models"
)

// AttachmentRepository handles evidence attachment metadata
type AttachmentRepository interface {
	Create(ctx context.Context, att *models.Attachment) error
	ListByEntry(ctx context.Context, entryID string) ([]models.Attachment, error)
}
