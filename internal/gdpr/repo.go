package gdpr

import (
	"context"
	"errors"
)

// ErrInvalidInput indicates validation or bad input.
var ErrInvalidInput = errors.New("invalid input")

// ConsentRepo defines persistence operations for consent records.
type ConsentRepo interface {
	Upsert(ctx context.Context, consent Consent) error
	ListByUser(ctx context.Context, userID string) ([]Consent, error)
	DeleteByUser(ctx context.Context, userID string) error
}
