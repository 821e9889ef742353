package enums

import "fmt"

// OverrideType describes the allowed values for the `type` column in owner_overrides.
type OverrideType string

const (
	OverrideTypeBillingUnlocked OverrideType = "BILLING_UNLOCKED"
	OverrideTypeBackfillAllowed OverrideType = "BACKFILL_ALLOWED"
)

var validOverrideTypes = []OverrideType{
	OverrideTypeBillingUnlocked,
	OverrideTypeBackfillAllowed,
}

// String implements fmt.Stringer.
func (o OverrideType) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OverrideType.
func (o OverrideType) IsValid() bool {
	for _, candidate := range validOverrideTypes {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOverrideType converts the raw string to OverrideType.
func ParseOverrideType(value string) (OverrideType, error) {
	for _, candidate := range validOverrideTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid override type %q", value)
}
