package generated

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo stores generated content in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Content
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Content)}
}

// Create stores the content.
func (r *MemoryRepo) Create(ctx context.Context, content Content) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[content.ID] = content
	return nil
}

// GetByID returns content by ID scoped to the owning user.
func (r *MemoryRepo) GetByID(ctx context.Context, userID, contentID string) (Content, error) {
	if err := ctx.Err(); err != nil {
		return Content{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	content, ok := r.byID[contentID]
	if !ok || content.DeletedAt != nil || content.UserID != userID {
		return Content{}, ErrNotFound
	}
	return content, nil
}

// ListByUser returns content for a user, newest first, with limit/offset.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Content, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 20
	}

	r.mu.RLock()
	var out []Content
	for _, content := range r.byID {
		if content.UserID == userID && content.DeletedAt == nil {
			out = append(out, content)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if offset >= len(out) {
		return []Content{}, nil
	}
	end := len(out)
	if offset+limit < end {
		end = offset + limit
	}
	return out[offset:end], nil
}

// TouchAccess records a read against the content's retention clock.
func (r *MemoryRepo) TouchAccess(ctx context.Context, contentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	content, ok := r.byID[contentID]
	if !ok || content.DeletedAt != nil {
		return ErrNotFound
	}
	now := time.Now().UTC()
	content.LastAccessedAt = &now
	r.byID[contentID] = content
	return nil
}

// SoftDelete marks the content deleted.
func (r *MemoryRepo) SoftDelete(ctx context.Context, userID, contentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	content, ok := r.byID[contentID]
	if !ok || content.DeletedAt != nil || content.UserID != userID {
		return ErrNotFound
	}
	now := time.Now().UTC()
	content.DeletedAt = &now
	r.byID[contentID] = content
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
