package users

import "context"

var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "user not found" }

type Repo interface {
	Upsert(ctx context.Context, user User) error
	GetByID(ctx context.Context, userID string) (User, error)
	// Erase blanks the user's identifying fields and marks the row deleted.
	// The row is kept so foreign keys in historical data stay valid.
	Erase(ctx context.Context, userID string) error
}
