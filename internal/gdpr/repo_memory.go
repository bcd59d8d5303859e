package gdpr

import (
	"context"
	"sort"
	"sync"
)

// MemoryConsentRepo stores consents in memory and is safe for concurrent use.
type MemoryConsentRepo struct {
	mu     sync.RWMutex
	byUser map[string]map[string]Consent
}

// NewMemoryConsentRepo constructs a MemoryConsentRepo.
func NewMemoryConsentRepo() *MemoryConsentRepo {
	return &MemoryConsentRepo{byUser: make(map[string]map[string]Consent)}
}

// Upsert inserts or updates a consent decision.
func (r *MemoryConsentRepo) Upsert(ctx context.Context, consent Consent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	purposes, ok := r.byUser[consent.UserID]
	if !ok {
		purposes = make(map[string]Consent)
		r.byUser[consent.UserID] = purposes
	}
	purposes[consent.Purpose] = consent
	return nil
}

// ListByUser returns all consent decisions for a user, ordered by purpose.
func (r *MemoryConsentRepo) ListByUser(ctx context.Context, userID string) ([]Consent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Consent
	for _, consent := range r.byUser[userID] {
		out = append(out, consent)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Purpose < out[j].Purpose })
	return out, nil
}

// DeleteByUser removes all consent rows for a user.
func (r *MemoryConsentRepo) DeleteByUser(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byUser, userID)
	return nil
}

var _ ConsentRepo = (*MemoryConsentRepo)(nil)
