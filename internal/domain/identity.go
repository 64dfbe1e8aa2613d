package domain

import (
	"errors"
	"fmt"
)

// Role is the closed set of console roles. Routing switches over it
// exhaustively; anything outside the set is rejected at the parse boundary.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleShopkeeper Role = "shopkeeper"
)

var ErrUnknownRole = errors.New("unknown role")

// ParseRole validates a role string coming from the backend or a form.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleShopkeeper:
		return RoleShopkeeper, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleShopkeeper
}

func (r Role) String() string {
	return string(r)
}

// Identity is the authenticated user for the current session.
type Identity struct {
	Name string
	Role Role
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

func (i Identity) IsShopkeeper() bool {
	return i.Role == RoleShopkeeper
}

// DashboardPath is the post-login landing screen for the identity's role.
func (i Identity) DashboardPath() string {
	switch i.Role {
	case RoleAdmin:
		return "/admin/dashboard"
	case RoleShopkeeper:
		return "/shopkeeper/dashboard"
	default:
		return "/login"
	}
}
