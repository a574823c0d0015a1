// Package model contain gorm model for recording data to database
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role of a user account.
type Role string

// User roles
const (
	RoleJobSeeker   Role = "JOBSEEKER"
	RoleJobProvider Role = "JOBPROVIDER"
	RoleAdmin       Role = "ADMIN"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleJobSeeker, RoleJobProvider, RoleAdmin:
		return true
	}
	return false
}

// User is an account identity. A user owns at most one JobSeekerProfile or one EmployerProfile.
type User struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email         string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash  *string   `json:"-"`
	GoogleID      *string   `gorm:"uniqueIndex" json:"-"`
	Role          Role      `gorm:"type:text;not null" json:"role"`
	EmailVerified bool      `gorm:"not null;default:false" json:"email_verified"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// BeforeCreate assigns an id when the caller did not.
func (u *User) BeforeCreate(*gorm.DB) error {
	ensureID(&u.ID)
	return nil
}

// HasPassword reports whether the account can log in with a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}
