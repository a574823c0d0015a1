package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationType names the event that produced a notification.
type NotificationType string

// Notification types
const (
	NotificationApplicationReceived NotificationType = "application_received"
	NotificationStatusChanged       NotificationType = "status_changed"
)

// Notification is an in-app inbox item.
type Notification struct {
	ID            uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	Type          NotificationType `gorm:"type:text;not null" json:"type"`
	Title         string           `gorm:"not null" json:"title"`
	Body          string           `json:"body"`
	ApplicationID *uuid.UUID       `gorm:"type:uuid" json:"application_id,omitempty"`
	JobID         *uuid.UUID       `gorm:"type:uuid" json:"job_id,omitempty"`
	Read          bool             `gorm:"not null;default:false" json:"read"`
	CreatedAt     time.Time        `json:"created_at"`
}

// BeforeCreate assigns an id when the caller did not.
func (n *Notification) BeforeCreate(*gorm.DB) error {
	ensureID(&n.ID)
	return nil
}
