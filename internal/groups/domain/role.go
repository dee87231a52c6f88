package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Role is a member's standing within one group.
type Role string

const (
	RoleOwner     Role = "owner"
	RoleModerator Role = "moderator"
	RoleMember    Role = "member"
)

// ErrInvalidRole is returned by ParseRole for anything outside the three roles.
var ErrInvalidRole = errors.New("invalid role")

// ParseRole accepts a role name case-insensitively.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
	return r, nil
}

// Rank orders roles: owner 3, moderator 2, member 1. Unknown roles rank 0.
func (r Role) Rank() int {
	switch r {
	case RoleOwner:
		return 3
	case RoleModerator:
		return 2
	case RoleMember:
		return 1
	default:
		return 0
	}
}

func (r Role) Valid() bool { return r.Rank() > 0 }

// Outranks reports whether r is strictly above o.
func (r Role) Outranks(o Role) bool { return r.Rank() > o.Rank() }

func (r Role) String() string { return string(r) }
