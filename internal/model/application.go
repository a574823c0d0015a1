package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"jobportal-backend/internal/lifecycle"
)

// Application is one seeker's submission against one job. The (job, seeker) pair is unique.
// Status only changes through the lifecycle state machine.
type Application struct {
	ID             uuid.UUID                `gorm:"type:uuid;primaryKey" json:"id"`
	JobID          uuid.UUID                `gorm:"type:uuid;not null;uniqueIndex:idx_application_job_seeker" json:"job_id"`
	Job            *Job                     `gorm:"foreignKey:JobID" json:"job,omitempty"`
	JobSeekerID    uuid.UUID                `gorm:"type:uuid;not null;uniqueIndex:idx_application_job_seeker" json:"job_seeker_id"`
	JobSeeker      *JobSeekerProfile        `gorm:"foreignKey:JobSeekerID" json:"job_seeker,omitempty"`
	ResumeID       *uuid.UUID               `gorm:"type:uuid" json:"resume_id"`
	Resume         *Resume                  `gorm:"foreignKey:ResumeID" json:"resume,omitempty"`
	CoverLetter    string                   `json:"cover_letter"`
	Status         lifecycle.Status         `gorm:"type:text;not null" json:"status"`
	IdempotencyKey *string                  `json:"idempotency_key,omitempty"`
	StatusHistory  []ApplicationStatusEvent `gorm:"foreignKey:ApplicationID" json:"status_history,omitempty"`
	CreatedAt      time.Time                `json:"created_at"`
	UpdatedAt      time.Time                `json:"updated_at"`
}

// BeforeCreate assigns an id when the caller did not.
func (a *Application) BeforeCreate(*gorm.DB) error {
	ensureID(&a.ID)
	return nil
}

// History returns the persisted status log as an immutable lifecycle.History.
func (a *Application) History() lifecycle.History {
	entries := make([]lifecycle.Entry, 0, len(a.StatusHistory))
	for _, ev := range a.StatusHistory {
		entries = append(entries, ev.Entry())
	}
	return lifecycle.NewHistory(entries...)
}

// ApplicationStatusEvent is one append-only row of an application's status history.
// Seq starts at 1 and is unique per application.
type ApplicationStatusEvent struct {
	ID            uuid.UUID        `gorm:"type:uuid;primaryKey" json:"-"`
	ApplicationID uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_status_event_seq" json:"-"`
	Seq           int              `gorm:"not null;uniqueIndex:idx_status_event_seq" json:"seq"`
	Status        lifecycle.Status `gorm:"type:text;not null" json:"status"`
	ByUserID      uuid.UUID        `gorm:"type:uuid;not null" json:"by_user_id"`
	Note          string           `json:"note,omitempty"`
	At            time.Time        `gorm:"not null" json:"at"`
}

// BeforeCreate assigns an id when the caller did not.
func (e *ApplicationStatusEvent) BeforeCreate(*gorm.DB) error {
	ensureID(&e.ID)
	return nil
}

// Entry converts the row to a lifecycle entry.
func (e ApplicationStatusEvent) Entry() lifecycle.Entry {
	return lifecycle.Entry{Status: e.Status, ByUserID: e.ByUserID, At: e.At, Note: e.Note}
}
