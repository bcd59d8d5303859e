package activitylogs

import (
	"context"
	"errors"
)

// ErrInvalidInput indicates validation or bad input.
var ErrInvalidInput = errors.New("invalid input")

// Repo defines persistence operations for activity logs.
type Repo interface {
	Append(ctx context.Context, entry Entry) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Entry, error)
}
