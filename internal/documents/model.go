package documents

import "time"

// Document represents an uploaded CV owned by a user. LastAccessedAt is
// touched on every read so retention ages against actual use, not upload time.
type Document struct {
	ID               string
	UserID           string
	FileName         string
	OriginalFilename string
	MimeType         string
	SizeBytes        int64
	StorageProvider  string
	StorageKey       string
	ExtractedTextKey string
	ExtractedAt      *time.Time
	CreatedAt        time.Time
	LastAccessedAt   *time.Time
	DeletedAt        *time.Time
}
