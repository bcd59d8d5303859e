package retention

import (
	"fmt"
	"strings"
)

// DataType identifies a category of stored records subject to retention.
// The set is closed; PolicyFor must cover every member.
type DataType string

const (
	DataTypeCVDocuments      DataType = "cv_documents"
	DataTypeGeneratedContent DataType = "generated_content"
	DataTypeActivityLogs     DataType = "activity_logs"
	DataTypeSessions         DataType = "sessions"
)

// AllDataTypes returns every registered data type in a stable order.
func AllDataTypes() []DataType {
	return []DataType{
		DataTypeCVDocuments,
		DataTypeGeneratedContent,
		DataTypeActivityLogs,
		DataTypeSessions,
	}
}

// DataTypeNames returns the valid data type identifiers, for error messages.
func DataTypeNames() []string {
	types := AllDataTypes()
	names := make([]string, len(types))
	for i, dt := range types {
		names[i] = string(dt)
	}
	return names
}

// ParseDataType validates a raw identifier against the registered set.
func ParseDataType(raw string) (DataType, error) {
	dt := DataType(strings.TrimSpace(strings.ToLower(raw)))
	for _, known := range AllDataTypes() {
		if dt == known {
			return dt, nil
		}
	}
	return "", fmt.Errorf("unknown data type %q; valid values: %s", raw, strings.Join(DataTypeNames(), ", "))
}
