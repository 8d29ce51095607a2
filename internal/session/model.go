package session

import "errors"

// Role distinguishes the two authenticated audiences.
type Role string

const (
	// RoleStudent is the regular viewing audience.
	RoleStudent Role = "student"
	// RoleAdmin may mutate the catalog.
	RoleAdmin Role = "admin"
)

var (
	// ErrUnknownRole indicates a login attempt against a role that has no
	// configured credentials.
	ErrUnknownRole = errors.New("session: unknown role")
	// ErrInvalidCredentials indicates a username/password mismatch.
	ErrInvalidCredentials = errors.New("session: invalid credentials")
	// ErrMissingCredentials indicates an empty username or password.
	ErrMissingCredentials = errors.New("session: username and password required")
)

// User is the authenticated session identity. Absence of a User means the
// viewer is a guest.
type User struct {
	Role Role   `json:"role"`
	Name string `json:"name"`
}

// ParseRole validates a raw role string.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleStudent:
		return RoleStudent, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", ErrUnknownRole
	}
}
