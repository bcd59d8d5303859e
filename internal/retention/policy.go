package retention

import "fmt"

// DeletionMode selects what happens to a record once it is past retention.
type DeletionMode string

const (
	ModeSoftDelete DeletionMode = "soft"
	ModeHardDelete DeletionMode = "hard"
	ModeAnonymize  DeletionMode = "anonymize"
)

// Policy describes how long records of a data type are kept and how they
// are removed once eligible. Policies are fixed at compile time.
type Policy struct {
	RetentionDays        int          `json:"retentionDays"`
	NotifyBeforeDeletion bool         `json:"notifyBeforeDeletion"`
	NotificationDays     int          `json:"notificationDays"`
	DeletionMode         DeletionMode `json:"deletionMode"`
	LegalBasis           string       `json:"legalBasis"`
	Description          string       `json:"description"`
	RequiresManualReview bool         `json:"requiresManualReview"`
}

// PolicyFor returns the retention policy for a data type. Passing a value
// outside the closed DataType set is a programming error and panics.
func PolicyFor(dt DataType) Policy {
	switch dt {
	case DataTypeCVDocuments:
		return Policy{
			RetentionDays:        730,
			NotifyBeforeDeletion: true,
			NotificationDays:     30,
			DeletionMode:         ModeSoftDelete,
			LegalBasis:           "contract",
			Description:          "Uploaded CV files and their extracted text",
			RequiresManualReview: false,
		}
	case DataTypeGeneratedContent:
		return Policy{
			RetentionDays:        365,
			NotifyBeforeDeletion: true,
			NotificationDays:     14,
			DeletionMode:         ModeSoftDelete,
			LegalBasis:           "contract",
			Description:          "Cover letters and tailored CV text generated for the user",
			RequiresManualReview: false,
		}
	case DataTypeActivityLogs:
		return Policy{
			RetentionDays:        180,
			NotifyBeforeDeletion: false,
			NotificationDays:     0,
			DeletionMode:         ModeAnonymize,
			LegalBasis:           "legitimate_interest",
			Description:          "Per-user activity events; identifying fields are redacted, aggregate rows kept",
			RequiresManualReview: false,
		}
	case DataTypeSessions:
		return Policy{
			RetentionDays:        30,
			NotifyBeforeDeletion: false,
			NotificationDays:     0,
			DeletionMode:         ModeHardDelete,
			LegalBasis:           "legitimate_interest",
			Description:          "Login session records",
			RequiresManualReview: false,
		}
	}
	panic(fmt.Sprintf("retention: no policy registered for data type %q", dt))
}
