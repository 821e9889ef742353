package enums

import "fmt"

// AlertStatus describes the allowed values for the `status` column in alerts.
type AlertStatus string

const (
	AlertStatusOpen     AlertStatus = "open"
	AlertStatusResolved AlertStatus = "resolved"
)

var validAlertStatuses = []AlertStatus{
	AlertStatusOpen,
	AlertStatusResolved,
}

// String implements fmt.Stringer.
func (a AlertStatus) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AlertStatus.
func (a AlertStatus) IsValid() bool {
	for _, candidate := range validAlertStatuses {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAlertStatus converts the raw string to AlertStatus.
func ParseAlertStatus(value string) (AlertStatus, error) {
	for _, candidate := range validAlertStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid alert status %q", value)
}
