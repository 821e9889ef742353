package enums

import "fmt"

// PhotoSource records how a slot photo entered the system.
type PhotoSource string

const (
	PhotoSourceLive   PhotoSource = "live"
	PhotoSourceUpload PhotoSource = "upload"
)

var validPhotoSources = []PhotoSource{
	PhotoSourceLive,
	PhotoSourceUpload,
}

// String implements fmt.Stringer.
func (p PhotoSource) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PhotoSource.
func (p PhotoSource) IsValid() bool {
	for _, candidate := range validPhotoSources {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePhotoSource converts the raw string to PhotoSource.
func ParsePhotoSource(value string) (PhotoSource, error) {
	for _, candidate := range validPhotoSources {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid photo source %q", value)
}
