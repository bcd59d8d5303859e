package generated

import "context"

// Repo defines persistence operations for generated content.
type Repo interface {
	Create(ctx context.Context, content Content) error
	GetByID(ctx context.Context, userID, contentID string) (Content, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Content, error)
	TouchAccess(ctx context.Context, contentID string) error
	SoftDelete(ctx context.Context, userID, contentID string) error
}
