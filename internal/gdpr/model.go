package gdpr

import "time"

// Consent purposes the product asks for.
const (
	PurposeAnalytics      = "analytics"
	PurposeMarketing      = "marketing"
	PurposeRetentionEmail = "retention_notifications"
)

// Consent records a user's decision for one processing purpose.
type Consent struct {
	UserID    string
	Purpose   string
	Granted   bool
	UpdatedAt time.Time
}

// ValidPurpose reports whether purpose is one the product tracks.
func ValidPurpose(purpose string) bool {
	switch purpose {
	case PurposeAnalytics, PurposeMarketing, PurposeRetentionEmail:
		return true
	}
	return false
}
