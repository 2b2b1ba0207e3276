package types

import "time"

// Role is an administrator's authorization level.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// Admin represents an administrator account.
// It contains identity, role, and audit metadata.
type Admin struct {
	// ID is the opaque unique identifier of the administrator.
	ID string `json:"id" db:"id"`

	// Username is the unique login name.
	Username string `json:"username" db:"username"`

	// Email is optional. When present it is stored lower-cased and is unique
	// across all administrators.
	Email *string `json:"email,omitempty" db:"email"`

	// Role is the administrator's authorization level.
	Role Role `json:"role" db:"role"`

	// PasswordHash stores the bcrypt hash of the administrator's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the account.
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// AdminSummary is the public view of an administrator returned on login.
type AdminSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// Summary returns the login view of a.
func (a Admin) Summary() AdminSummary {
	return AdminSummary{ID: a.ID, Username: a.Username, Role: a.Role}
}
