package enums

import (
	"fmt"
	"strings"
)

// Role identifies the kind of actor performing an operation.
type Role string

const (
	RoleShipper Role = "shipper"
	RoleHauler  Role = "hauler"
	RoleAdmin   Role = "admin"
)

var validRoles = []Role{RoleShipper, RoleHauler, RoleAdmin}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRole converts a header value into a Role, ignoring case.
func ParseRole(value string) (Role, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validRoles {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}
