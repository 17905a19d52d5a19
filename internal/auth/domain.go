package auth

import (
	"errors"
	"time"
)

// Role enumerates the access levels a user can hold.
type Role string

const (
	RoleOwner      Role = "owner"
	RoleSupervisor Role = "supervisor"
	RoleProduction Role = "production"
)

// IsValid reports whether the role is one of the known values.
func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleSupervisor, RoleProduction:
		return true
	default:
		return false
	}
}

// User represents an authenticated identity.
type User struct {
	ID           int64     `json:"id"`
	CompanyID    int64     `json:"company_id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	Role         Role      `json:"role"`
	Department   string    `json:"department,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

var (
	// ErrInvalidRole indicates an unknown role value.
	ErrInvalidRole = errors.New("auth: invalid role")
	// ErrDuplicateEmail indicates the email is already registered.
	ErrDuplicateEmail = errors.New("auth: email already registered")
	// ErrTokenNotFound indicates an expired or unknown token.
	ErrTokenNotFound = errors.New("auth: token not found")
)
