package entity

import "errors"

// Roles live in the roles table and are granted through user_roles. Every
// account gets RoleUser at registration; RoleAdmin unlocks catalog management.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

var ErrUnknownRole = errors.New("unknown role")

// KnownRole reports whether name is one of the roles the API checks.
func KnownRole(name string) bool {
	return name == RoleAdmin || name == RoleUser
}
