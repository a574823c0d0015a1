package notify

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"jobportal-backend/internal/apperror"
	"jobportal-backend/internal/model"
)

// Store keeps the in-app notification inbox.
type Store struct {
	db *gorm.DB
}

// NewStore builds a Store over db.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Deliver persists ev as an inbox item for its recipient.
func (s *Store) Deliver(ctx context.Context, ev Event) error {
	title, body := render(ev)
	appID, jobID := ev.ApplicationID, ev.JobID
	n := model.Notification{
		UserID:        ev.UserID,
		Type:          ev.Type,
		Title:         title,
		Body:          body,
		ApplicationID: &appID,
		JobID:         &jobID,
	}
	return s.db.WithContext(ctx).Create(&n).Error
}

func render(ev Event) (string, string) {
	switch ev.Type {
	case model.NotificationApplicationReceived:
		return "New application", fmt.Sprintf("A new candidate applied to %s.", jobLabel(ev))
	case model.NotificationStatusChanged:
		body := fmt.Sprintf("Your application to %s is now %s.", jobLabel(ev), ev.NewStatus)
		if ev.Note != "" {
			body += " Note: " + ev.Note
		}
		return "Application update", body
	default:
		return string(ev.Type), ev.Note
	}
}

func jobLabel(ev Event) string {
	if ev.JobTitle != "" {
		return ev.JobTitle
	}
	return "a job"
}

// ListFilter narrows an inbox listing.
type ListFilter struct {
	UnreadOnly bool
	Offset     int
	Limit      int
}

// List returns the inbox of userID, newest first, with the total matching count.
func (s *Store) List(ctx context.Context, userID uuid.UUID, f ListFilter) ([]model.Notification, int64, error) {
	query := s.db.WithContext(ctx).Model(&model.Notification{}).Where("user_id = ?", userID)
	if f.UnreadOnly {
		query = query.Where("read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	items := []model.Notification{}
	err := query.Order("created_at desc").Offset(f.Offset).Limit(f.Limit).Find(&items).Error
	return items, total, err
}

// MarkRead marks one notification of userID as read.
func (s *Store) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.NotFoundOrForbidden("notification")
	}
	return nil
}

// MarkAllRead marks every unread notification of userID as read and returns how many changed.
func (s *Store) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	res := s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)
	return res.RowsAffected, res.Error
}
