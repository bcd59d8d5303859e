package sessions

import (
	"context"
	"errors"
)

var (
	// ErrNotFound indicates an entity was not found.
	ErrNotFound = errors.New("session not found")

	// ErrInvalidInput indicates validation or bad input.
	ErrInvalidInput = errors.New("invalid input")
)

// Repo defines persistence operations for sessions.
type Repo interface {
	Create(ctx context.Context, session Session) error
	ListByUser(ctx context.Context, userID string) ([]Session, error)
	Touch(ctx context.Context, sessionID string) error
	Revoke(ctx context.Context, userID, sessionID string) error
}
