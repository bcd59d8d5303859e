package retention

import (
	"context"
	"time"
)

// ErrNotFound reports a record that no longer exists (or was already removed).
var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "record not found" }

// Store defines persistence operations the retention subsystem needs per data
// type. Implementations compare ages against the record's age basis
// (last access where tracked, creation time otherwise) and must keep
// ListOlderThan and ListBetween ordered oldest-first with record ID as the
// tie-break. ListBetween bounds the age basis on both ends
// (notBefore <= basis < before) so a large backlog past one cutoff cannot
// crowd a limited page. Query errors propagate unchanged; callers decide
// retry policy.
type Store interface {
	CountAll(ctx context.Context, dt DataType) (int, error)
	CountOlderThan(ctx context.Context, dt DataType, cutoff time.Time) (int, error)
	OldestRecordTime(ctx context.Context, dt DataType) (*time.Time, error)
	ListOlderThan(ctx context.Context, dt DataType, cutoff time.Time, limit int) ([]RecordRef, error)
	ListBetween(ctx context.Context, dt DataType, notBefore, before time.Time, limit int) ([]RecordRef, error)

	Anonymize(ctx context.Context, dt DataType, id string) error
	SoftDelete(ctx context.Context, dt DataType, id string) error
	HardDelete(ctx context.Context, dt DataType, id string) error
}

// Settings is the persisted scheduler toggle state. It is read per call rather
// than cached so concurrent API instances observe the same values.
type Settings struct {
	Enabled   bool      `json:"enabled"`
	DryRun    bool      `json:"dryRun"`
	Version   int64     `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// SettingsRepo stores the single retention settings row with optimistic
// versioning: Update re-reads and retries on a version conflict.
type SettingsRepo interface {
	Get(ctx context.Context) (Settings, error)
	Update(ctx context.Context, mutate func(*Settings)) (Settings, error)
}

// LockRepo provides the store-level job lock that keeps two sweeps of the same
// job type from overlapping. A lock past its TTL may be taken over.
type LockRepo interface {
	Acquire(ctx context.Context, jobType, holder string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, jobType, holder string) error
}
