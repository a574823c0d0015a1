package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RefreshToken stores the hash of an opaque refresh secret. The raw secret is never persisted.
type RefreshToken struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	TokenHash string    `gorm:"uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"not null"`
	Revoked   bool      `gorm:"not null;default:false"`
	CreatedAt time.Time
}

// BeforeCreate assigns an id when the caller did not.
func (t *RefreshToken) BeforeCreate(*gorm.DB) error {
	ensureID(&t.ID)
	return nil
}

// PasswordResetToken stores the hash of a single-use password reset secret.
type PasswordResetToken struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	TokenHash string    `gorm:"uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"not null"`
	Revoked   bool      `gorm:"not null;default:false"`
	CreatedAt time.Time
}

// BeforeCreate assigns an id when the caller did not.
func (t *PasswordResetToken) BeforeCreate(*gorm.DB) error {
	ensureID(&t.ID)
	return nil
}

// EmailVerification stores the hash of the single active one-time code of a user.
type EmailVerification struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	CodeHash  string    `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null"`
	Attempts  int       `gorm:"not null;default:0"`
	CreatedAt time.Time
}

// BeforeCreate assigns an id when the caller did not.
func (v *EmailVerification) BeforeCreate(*gorm.DB) error {
	ensureID(&v.ID)
	return nil
}
