package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Skill is one entry of a seeker's ordered skill list.
type Skill struct {
	Category   string `json:"category" binding:"required,max=100"`
	Work       string `json:"work" binding:"required,max=200"`
	Confidence int    `json:"confidence" binding:"min=0,max=100"`
}

// JobSeekerProfile belongs to exactly one JOBSEEKER user.
type JobSeekerProfile struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	User   *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	EditableSeekerInfo
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EditableSeekerInfo is the part of a seeker profile its owner may change.
type EditableSeekerInfo struct {
	DesiredTitle   string                     `json:"desired_title" binding:"max=200"`
	Headline       string                     `json:"headline" binding:"max=500"`
	Location       string                     `json:"location" binding:"max=200"`
	Skills         datatypes.JSONSlice[Skill] `gorm:"type:jsonb" json:"skills" binding:"max=100,dive"`
	ProfileVisible bool                       `json:"profile_visible"`
	ShowContact    bool                       `json:"show_contact"`
}

// BeforeCreate assigns an id when the caller did not.
func (p *JobSeekerProfile) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	if p.Skills == nil {
		p.Skills = datatypes.JSONSlice[Skill]{}
	}
	return nil
}
