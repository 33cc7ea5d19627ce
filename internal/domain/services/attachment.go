package services

import (
	"context"
	"io"

	"testdeck/internal/domain/models"
)

// AttachmentService stores evidence files for run entries
type AttachmentService interface {
	// Upload streams one evidence file to disk and records its metadata
	Upload(ctx context.Context, req *UploadAttachmentRequest) (*models.Attachment, error)
	ListByEntry(ctx context.Context, entryID string) ([]models.Attachment, error)
}

// UploadAttachmentRequest carries one uploaded evidence file
type UploadAttachmentRequest struct {
	RunID      string
	EntryID    string
	FileName   string
	Content    io.Reader
	UploadedBy string
}
