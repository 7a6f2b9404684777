package models

import "time"

// UserRole identifies the access level of a user account.
type UserRole string

// Supported user roles.
const (
	// RoleUser is the default role for registered accounts.
	RoleUser UserRole = "User"
	// RoleAdmin grants access to reference-data management and user administration.
	RoleAdmin UserRole = "Admin"
)

// Valid reports whether the role is a known value.
func (r UserRole) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents a registered account stored in the database.
type User struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"`

	Username string `gorm:"type:text;not null;uniqueIndex" json:"username"` // Unique login name.
	Email    string `gorm:"type:text;not null;uniqueIndex" json:"email"`    // Unique contact address.
	Password string `gorm:"type:text;not null" json:"-"`                    // Bcrypt hash.

	Role UserRole `gorm:"type:text;not null;default:'User'" json:"role"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt"`
}
