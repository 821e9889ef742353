package enums

import "fmt"

// ActorRole is the canonical role carried in auth claims.
type ActorRole string

const (
	ActorRoleOwner   ActorRole = "OWNER"
	ActorRolePrime   ActorRole = "PRIME"
	ActorRoleTDS     ActorRole = "TDS"
	ActorRoleSub     ActorRole = "SUB"
	ActorRoleSplicer ActorRole = "SPLICER"
)

var validActorRoles = []ActorRole{
	ActorRoleOwner,
	ActorRolePrime,
	ActorRoleTDS,
	ActorRoleSub,
	ActorRoleSplicer,
}

// String implements fmt.Stringer.
func (r ActorRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known ActorRole.
func (r ActorRole) IsValid() bool {
	for _, candidate := range validActorRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// IsBillingManager reports whether the role may hand-edit invoice rates
// and drive invoice status transitions.
func (r ActorRole) IsBillingManager() bool {
	return r == ActorRoleOwner || r == ActorRolePrime || r == ActorRoleTDS
}

// ParseActorRole converts the raw string to ActorRole.
func ParseActorRole(value string) (ActorRole, error) {
	for _, candidate := range validActorRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid actor role %q", value)
}
