package model

import (
	"fmt"
	"strings"
)

// Role is a closed set of account roles. Unknown values are rejected at
// the boundary by ParseRole instead of being carried around as free-form
// strings.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// ParseRole normalizes and validates a role value. The empty string maps
// to RoleStudent, which is the default for new accounts.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return RoleStudent, nil
	case RoleStudent:
		return RoleStudent, nil
	case RoleAdmin:
		return RoleAdmin, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleAdmin
}

func (r Role) String() string { return string(r) }
