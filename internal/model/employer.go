package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EmployerProfile is the organisation that owns job postings. It has exactly one owner and
// any number of admins with delegated write access.
type EmployerProfile struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID     uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"owner_id"`
	Owner       *User     `gorm:"foreignKey:OwnerID" json:"-"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description"`
	Website     string    `json:"website"`
	Location    string    `json:"location"`
	LogoURL     string    `json:"logo_url"`
	Admins      []User    `gorm:"many2many:employer_admins;joinForeignKey:EmployerID;joinReferences:UserID" json:"admins,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BeforeCreate assigns an id when the caller did not.
func (e *EmployerProfile) BeforeCreate(*gorm.DB) error {
	ensureID(&e.ID)
	return nil
}

// EmployerAdmin is a row of the employer_admins join table.
type EmployerAdmin struct {
	EmployerID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID     uuid.UUID `gorm:"type:uuid;primaryKey"`
}

// EditableEmployerInfo is the part of an employer profile its managers may change.
type EditableEmployerInfo struct {
	Name        string `json:"name" binding:"omitempty,min=2,max=200"`
	Description string `json:"description" binding:"omitempty,max=5000"`
	Website     string `json:"website" binding:"omitempty,url"`
	Location    string `json:"location" binding:"omitempty,max=200"`
	LogoURL     string `json:"logo_url" binding:"omitempty,url"`
}
