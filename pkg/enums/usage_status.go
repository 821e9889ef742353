package enums

import "fmt"

// UsageStatus describes the allowed values for the `status` column in usage_events.
type UsageStatus string

const (
	UsageStatusApproved      UsageStatus = "approved"
	UsageStatusNeedsApproval UsageStatus = "needs_approval"
)

var validUsageStatuses = []UsageStatus{
	UsageStatusApproved,
	UsageStatusNeedsApproval,
}

// String implements fmt.Stringer.
func (u UsageStatus) String() string {
	return string(u)
}

// IsValid reports whether the value is a known UsageStatus.
func (u UsageStatus) IsValid() bool {
	for _, candidate := range validUsageStatuses {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseUsageStatus converts the raw string to UsageStatus.
func ParseUsageStatus(value string) (UsageStatus, error) {
	for _, candidate := range validUsageStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid usage status %q", value)
}
