package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// JobStatus is the publication state of a job.
type JobStatus string

// Job statuses
const (
	JobDraft     JobStatus = "DRAFT"
	JobPublished JobStatus = "PUBLISHED"
	JobArchived  JobStatus = "ARCHIVED"
	JobClosed    JobStatus = "CLOSED"
)

// JobType is the kind of engagement.
type JobType string

// Job types
const (
	JobTypeFullTime   JobType = "FULL_TIME"
	JobTypePartTime   JobType = "PART_TIME"
	JobTypeContract   JobType = "CONTRACT"
	JobTypeInternship JobType = "INTERNSHIP"
	JobTypeTemporary  JobType = "TEMPORARY"
)

// ExperienceLevel is the seniority a job asks for.
type ExperienceLevel string

// Experience levels
const (
	ExperienceEntry  ExperienceLevel = "ENTRY"
	ExperienceMid    ExperienceLevel = "MID"
	ExperienceSenior ExperienceLevel = "SENIOR"
	ExperienceLead   ExperienceLevel = "LEAD"
)

// JobStatuses, JobTypes and ExperienceLevels enumerate the accepted values for request validation.
var (
	JobStatuses      = []string{string(JobDraft), string(JobPublished), string(JobArchived), string(JobClosed)}
	JobTypes         = []string{string(JobTypeFullTime), string(JobTypePartTime), string(JobTypeContract), string(JobTypeInternship), string(JobTypeTemporary)}
	ExperienceLevels = []string{string(ExperienceEntry), string(ExperienceMid), string(ExperienceSenior), string(ExperienceLead)}
)

// Job is a posting owned by an employer. Slug is assigned once at creation and never changes.
type Job struct {
	ID         uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	EmployerID uuid.UUID        `gorm:"type:uuid;not null;index" json:"employer_id"`
	Employer   *EmployerProfile `gorm:"foreignKey:EmployerID" json:"employer,omitempty"`
	Slug       string           `gorm:"uniqueIndex;not null;<-:create" json:"slug"`
	Status     JobStatus        `gorm:"type:text;not null" json:"status"`
	PostedAt   *time.Time       `json:"posted_at"`
	EditableJobInfo
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EditableJobInfo is the part of a job its managers may change after creation.
type EditableJobInfo struct {
	Title           string          `gorm:"not null" json:"title" binding:"required,min=3,max=200"`
	Description     string          `json:"description" binding:"max=20000"`
	Location        string          `json:"location" binding:"max=200"`
	Remote          bool            `json:"remote"`
	JobType         JobType         `gorm:"type:text" json:"job_type" binding:"omitempty,jobtype"`
	ExperienceLevel ExperienceLevel `gorm:"type:text" json:"experience_level" binding:"omitempty,explevel"`
	SalaryMin       *int            `json:"salary_min" binding:"omitempty,min=0"`
	SalaryMax       *int            `json:"salary_max" binding:"omitempty,min=0"`
	Currency        string          `json:"currency" binding:"omitempty,len=3"`
	Tags            pq.StringArray  `gorm:"type:text[]" json:"tags"`
	ExpiresAt       *time.Time      `json:"expires_at"`
}

// BeforeCreate assigns an id when the caller did not.
func (j *Job) BeforeCreate(*gorm.DB) error {
	ensureID(&j.ID)
	return nil
}

// PubliclyVisible reports whether anonymous callers may see the job at now.
func (j *Job) PubliclyVisible(now time.Time) bool {
	return j.Status == JobPublished && (j.ExpiresAt == nil || j.ExpiresAt.After(now))
}
