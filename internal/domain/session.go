package domain

import (
	"fmt"
	"time"
)

// Role is a user's privilege level
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Level orders roles so that a higher level includes every lower one.
// Unknown roles have level 0.
func (r Role) Level() int {
	switch r {
	case RoleUser:
		return 1
	case RoleAdmin:
		return 2
	case RoleSuperAdmin:
		return 3
	}
	return 0
}

// AtLeast reports whether r grants the privileges of min.
func (r Role) AtLeast(min Role) bool {
	return r.Level() > 0 && r.Level() >= min.Level()
}

// ParseRole validates a role name
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if r.Level() == 0 {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
	return r, nil
}

// Actor is the authenticated caller of an operation
type Actor struct {
	UserID string
	Email  string
	Name   string
	Role   Role
}

// CanModify reports whether the actor may edit or delete a site owned by ownerID.
func (a Actor) CanModify(ownerID string) bool {
	return a.UserID == ownerID || a.Role.AtLeast(RoleAdmin)
}

// Session binds an opaque token to an actor until it expires
type Session struct {
	Token     string
	Actor     Actor
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
