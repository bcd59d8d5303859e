package documents

import (
	"context"
	"time"
)

// Repo defines persistence operations for documents. Reads exclude
// soft-deleted rows.
type Repo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, userID, documentID string) (Document, error)
	GetCurrentByUser(ctx context.Context, userID string) (Document, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Document, error)
	UpdateExtraction(ctx context.Context, userID, documentID, extractedKey string, extractedAt time.Time) error
	TouchAccess(ctx context.Context, userID, documentID string) error
	SoftDelete(ctx context.Context, userID, documentID string) error
}
