package activitylogs

import "time"

// Entry is one append-only activity log record. Anonymized entries keep the
// action and timestamp but lose the user ID, client IP, and metadata.
type Entry struct {
	ID           string
	UserID       string
	Action       string
	Metadata     map[string]any
	ClientIP     string
	CreatedAt    time.Time
	AnonymizedAt *time.Time
}
