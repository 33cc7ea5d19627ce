package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"testdeck/internal/config"
	"testdeck/internal/domain"
	"testdeck/internal/domain/models"
	"testdeck/internal/domain/repositories"
	"testdeck/internal/domain/services"

	"github.com/google/uuid"
)

// attachmentService stores evidence files on local disk under opaque uuid
// keys and records their metadata in Postgres.
type attachmentService struct {
	attRepo repositories.AttachmentRepository
	runRepo repositories.TestRunRepository
	dir     string
	logger  *slog.Logger
}

// NewAttachmentService creates an attachment service writing into dir
func NewAttachmentService(
	attRepo repositories.AttachmentRepository,
	runRepo repositories.TestRunRepository,
	dir string,
	logger *slog.Logger,
) services.AttachmentService {
	return &attachmentService{
		attRepo: attRepo,
		runRepo: runRepo,
		dir:     dir,
		logger:  logger,
	}
}

// Upload streams one evidence file to disk and records its metadata
func (s *attachmentService) Upload(ctx context.Context, req *services.UploadAttachmentRequest) (*models.Attachment, error) {
	if req.FileName == "" {
		return nil, fmt.Errorf("%w: file name is required", domain.ErrValidation)
	}

	// The entry must exist in the given run before anything hits disk.
	if _, err := s.runRepo.GetEntry(ctx, req.RunID, req.EntryID); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create attachment directory: %w", err)
	}

	storageKey := uuid.NewString()
	path := filepath.Join(s.dir, storageKey)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create attachment file: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(f, io.LimitReader(req.Content, config.MaxAttachmentBytes+1))
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("write attachment: %w", err)
	}
	if size > config.MaxAttachmentBytes {
		os.Remove(path)
		return nil, fmt.Errorf("%w: attachment exceeds %d bytes", domain.ErrValidation, config.MaxAttachmentBytes)
	}

	att := &models.Attachment{
		EntryID:    req.EntryID,
		FileName:   req.FileName,
		StorageKey: storageKey,
		SizeBytes:  size,
		UploadedBy: req.UploadedBy,
		CreatedAt:  time.Now(),
	}

	if err := s.attRepo.Create(ctx, att); err != nil {
		// Metadata write failed; don't leave the orphan file behind.
		os.Remove(path)
		return nil, err
	}

	s.logger.Info("attachment uploaded",
		"id", att.ID,
		"entry_id", att.EntryID,
		"file_name", att.FileName,
		"size_bytes", att.SizeBytes,
	)

	return att, nil
}

// ListByEntry lists an entry's attachments
func (s *attachmentService) ListByEntry(ctx context.Context, entryID string) ([]models.Attachment, error) {
	return s.attRepo.ListByEntry(ctx, entryID)
}
