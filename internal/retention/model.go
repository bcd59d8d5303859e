package retention

import "time"

// RecordRef is the minimal view of a stored record used for eligibility checks.
type RecordRef struct {
	ID             string
	CreatedAt      time.Time
	LastAccessedAt *time.Time
}

// AgeBasis returns the timestamp retention ages are computed from.
// Records that were never accessed fall back to their creation time.
func (r RecordRef) AgeBasis() time.Time {
	if r.LastAccessedAt != nil {
		return *r.LastAccessedAt
	}
	return r.CreatedAt
}

// EligibleRecord is a record past (or approaching) its retention threshold,
// with the dates derived from the policy. Computed on demand, never persisted.
type EligibleRecord struct {
	ID               string     `json:"id"`
	CreatedAt        time.Time  `json:"createdAt"`
	LastAccessedAt   *time.Time `json:"lastAccessedAt,omitempty"`
	DeletionDate     time.Time  `json:"deletionDate"`
	NotificationDate time.Time  `json:"notificationDate"`
}

// Stats summarizes the retention position of one data type.
type Stats struct {
	DataType            DataType `json:"dataType"`
	TotalCount          int      `json:"totalCount"`
	EligibleCount       int      `json:"eligibleCount"`
	NotificationCount   int      `json:"notificationCount"`
	OldestRecordAgeDays int      `json:"oldestRecordAgeDays"`
}

// RecordError captures a per-record failure inside a batch.
type RecordError struct {
	RecordID string `json:"recordId"`
	Message  string `json:"message"`
}

// BatchResult reports the outcome of processing one data type's eligible records.
// Invariants: Successful+Failed == TotalProcessed and
// Anonymized+SoftDeleted+HardDeleted <= Successful.
type BatchResult struct {
	DataType         DataType      `json:"dataType"`
	DryRun           bool          `json:"dryRun"`
	TotalProcessed   int           `json:"totalProcessed"`
	Successful       int           `json:"successful"`
	Failed           int           `json:"failed"`
	Anonymized       int           `json:"anonymized"`
	SoftDeleted      int           `json:"softDeleted"`
	HardDeleted      int           `json:"hardDeleted"`
	Errors           []RecordError `json:"errors"`
	ProcessingTimeMs int64         `json:"processingTimeMs"`
}

// JobReport is the aggregate result of one scheduler invocation across data
// types. It is returned and logged, never persisted.
type JobReport struct {
	JobID                  string     `json:"jobId"`
	JobType                string     `json:"jobType"`
	StartTime              time.Time  `json:"startTime"`
	EndTime                time.Time  `json:"endTime"`
	Success                bool       `json:"success"`
	DryRun                 bool       `json:"dryRun"`
	DataTypesProcessed     []DataType `json:"dataTypesProcessed"`
	TotalRecordsProcessed  int        `json:"totalRecordsProcessed"`
	TotalRecordsDeleted    int        `json:"totalRecordsDeleted"`
	TotalRecordsAnonymized int        `json:"totalRecordsAnonymized"`
	TotalRecordsFailed     int        `json:"totalRecordsFailed"`
	Errors                 []string   `json:"errors"`
	ProcessingTimeMs       int64      `json:"processingTimeMs"`
}
