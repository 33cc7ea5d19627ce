package models

import "time"

// Attachment is an evidence file uploaded against a run entry. StorageKey is
// the opaque on-disk name; the original filename is kept for display only.
type Attachment struct {
	ID         string    `json:"id" db:"id"`
	EntryID    string    `json:"entry_id" db:"entry_id"`
	FileName   string    `json:"file_name" db:"file_name"`
	StorageKey string    `json:"-" db:"storage_key"`
	SizeBytes  int64     `json:"size_bytes" db:"size_bytes"`
	UploadedBy string    `json:"uploaded_by" db:"uploaded_by"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
