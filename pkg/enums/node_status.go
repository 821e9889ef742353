package enums

import "fmt"

// NodeStatus describes the allowed values for the `status` column in nodes.
type NodeStatus string

const (
	NodeStatusNotStarted NodeStatus = "NOT_STARTED"
	NodeStatusActive     NodeStatus = "ACTIVE"
	NodeStatusComplete   NodeStatus = "COMPLETE"
)

var validNodeStatuses = []NodeStatus{
	NodeStatusNotStarted,
	NodeStatusActive,
	NodeStatusComplete,
}

// String implements fmt.Stringer.
func (n NodeStatus) String() string {
	return string(n)
}

// IsValid reports whether the value is a known NodeStatus.
func (n NodeStatus) IsValid() bool {
	for _, candidate := range validNodeStatuses {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNodeStatus converts the raw string to NodeStatus.
func ParseNodeStatus(value string) (NodeStatus, error) {
	for _, candidate := range validNodeStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid node status %q", value)
}
