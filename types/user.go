package types

import "time"

// Role is the authorization level of a staff account.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleStaff
}

// User represents a barangay staff or admin account.
// Accounts are never hard-deleted; deactivation clears IsActive.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// Username is the unique login name.
	Username string `json:"username" db:"username"`

	// Email is the unique email address of the account.
	Email string `json:"email" db:"email"`

	// Role decides which routes the account may call.
	Role Role `json:"role" db:"role"`

	// IsActive is false once an admin deactivates the account. Inactive
	// users cannot log in and their outstanding tokens are rejected.
	IsActive bool `json:"is_active" db:"is_active"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
