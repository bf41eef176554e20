// Package identity describes the authenticated caller as established by the
// session token. It is shared by every domain that needs to scope records to
// a caller.
package identity

import "time"

const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
	RoleHR       = "hr"
)

// Identity is decoded from the session token and is never re-read from the
// user store during a request, so a role change only shows up after the
// next login.
type Identity struct {
	UserID     string    `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name,omitempty"`
	Department string    `json:"department,omitempty"`
	Role       string    `json:"role"`
	TokenID    string    `json:"-"`
	ExpiresAt  time.Time `json:"-"`
}

func (i Identity) IsHR() bool {
	return i.Role == RoleHR
}

// IsPrivileged reports whether the caller may read other users' records.
func (i Identity) IsPrivileged() bool {
	return i.Role == RoleManager || i.Role == RoleHR
}

func ValidRole(role string) bool {
	switch role {
	case RoleEmployee, RoleManager, RoleHR:
		return true
	}
	return false
}

// SignupRoles are the roles a caller may pick for themselves.
var SignupRoles = []string{RoleEmployee, RoleManager}

var AllRoles = []string{RoleEmployee, RoleManager, RoleHR}
