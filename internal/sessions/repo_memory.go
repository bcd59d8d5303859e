package sessions

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo stores sessions in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Session
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Session)}
}

// Create stores the session.
func (r *MemoryRepo) Create(ctx context.Context, session Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[session.ID] = session
	return nil
}

// ListByUser returns a user's sessions, most recently seen first.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	var out []Session
	for _, session := range r.byID {
		if session.UserID == userID {
			out = append(out, session)
		}
	}
	r.mu.RUnlock()

	seen := func(s Session) time.Time {
		if s.LastSeenAt != nil {
			return *s.LastSeenAt
		}
		return s.CreatedAt
	}
	sort.Slice(out, func(i, j int) bool {
		return seen(out[i]).After(seen(out[j]))
	})
	return out, nil
}

// Touch bumps the session's last seen time.
func (r *MemoryRepo) Touch(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.byID[sessionID]
	if !ok || session.RevokedAt != nil {
		return ErrNotFound
	}
	now := time.Now().UTC()
	session.LastSeenAt = &now
	r.byID[sessionID] = session
	return nil
}

// Revoke marks a session revoked for the owning user.
func (r *MemoryRepo) Revoke(ctx context.Context, userID, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.byID[sessionID]
	if !ok || session.UserID != userID || session.RevokedAt != nil {
		return ErrNotFound
	}
	now := time.Now().UTC()
	session.RevokedAt = &now
	r.byID[sessionID] = session
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
