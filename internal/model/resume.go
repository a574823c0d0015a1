package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ParseStatus tracks the external parsing pipeline for a resume file.
type ParseStatus string

// Parse statuses. AwaitingUpload is the pending state before the file reaches storage.
const (
	ParseAwaitingUpload ParseStatus = "AWAITING_UPLOAD"
	ParsePending        ParseStatus = "PENDING"
	ParseParsed         ParseStatus = "PARSED"
	ParseFailed         ParseStatus = "FAILED"
)

// Resume is a file owned by a job seeker. FileKey stays empty until the upload completes.
// Rows are soft deleted and only removed by an account deletion.
type Resume struct {
	ID              uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	JobSeekerID     uuid.UUID   `gorm:"type:uuid;not null;index" json:"job_seeker_id"`
	FileName        string      `gorm:"not null" json:"file_name"`
	MimeType        string      `gorm:"not null" json:"mime_type"`
	Size            int64       `gorm:"not null" json:"size"`
	Fingerprint     string      `gorm:"index;not null" json:"fingerprint"`
	FileKey         string      `json:"file_key"`
	ParseStatus     ParseStatus `gorm:"type:text;not null" json:"parse_status"`
	UploadExpiresAt time.Time   `json:"upload_expires_at"`
	Deleted         bool        `gorm:"not null;default:false" json:"deleted"`
	DeletedAt       *time.Time  `json:"deleted_at,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// BeforeCreate assigns an id when the caller did not.
func (r *Resume) BeforeCreate(*gorm.DB) error {
	ensureID(&r.ID)
	return nil
}

// Uploaded reports whether the file has reached storage.
func (r *Resume) Uploaded() bool {
	return r.FileKey != ""
}
