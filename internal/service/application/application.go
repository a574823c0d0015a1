// Package application handles job applications and their status workflow.
package application

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"jobportal-backend/internal/access"
	"jobportal-backend/internal/apperror"
	"jobportal-backend/internal/database"
	"jobportal-backend/internal/lifecycle"
	"jobportal-backend/internal/model"
	"jobportal-backend/internal/notify"
	"jobportal-backend/internal/service"
)

// Service applies to jobs and moves applications through the lifecycle.
type Service struct {
	db       *gorm.DB
	access   *access.Resolver
	notifier notify.Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewService builds a Service.
func NewService(db *gorm.DB, resolver *access.Resolver, notifier notify.Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		db:       db,
		access:   resolver,
		notifier: notifier,
		logger:   logger.With("component", "application"),
		now:      time.Now,
	}
}

// ApplyInput is the body of an application. IdempotencyKey comes from the Idempotency-Key header.
type ApplyInput struct {
	ResumeID       *uuid.UUID `json:"resume_id"`
	CoverLetter    string     `json:"cover_letter" binding:"max=10000"`
	IdempotencyKey string     `json:"-"`
}

// Apply submits the seeker's application to a publicly visible job.
// A second application for the same job fails with DuplicateEntry, also under concurrent submission.
func (s *Service) Apply(ctx context.Context, seekerUserID, jobID uuid.UUID, in ApplyInput) (*model.Application, error) {
	var (
		app model.Application
		job *model.Job
	)
	err := database.WithTx(ctx, s.db, func(tx *gorm.DB) error {
		r := s.access.WithDB(tx)

		seeker, err := r.SeekerProfile(ctx, seekerUserID)
		if err != nil {
			return err
		}
		job, err = r.PublicJob(ctx, jobID.String())
		if err != nil {
			return err
		}
		if in.ResumeID != nil {
			resume, err := r.ResumeAccess(ctx, seekerUserID, *in.ResumeID, false)
			if err != nil {
				return err
			}
			if !resume.Uploaded() {
				return apperror.Validation("resume upload is not complete")
			}
		}

		var existing int64
		if err := tx.Model(&model.Application{}).
			Where("job_id = ? AND job_seeker_id = ?", job.ID, seeker.ID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return apperror.New(apperror.KindDuplicateEntry, "already applied to this job")
		}

		app = model.Application{
			JobID:       job.ID,
			JobSeekerID: seeker.ID,
			ResumeID:    in.ResumeID,
			CoverLetter: strings.TrimSpace(in.CoverLetter),
			Status:      lifecycle.Applied,
		}
		if key := strings.TrimSpace(in.IdempotencyKey); key != "" {
			app.IdempotencyKey = &key
		}
		if err := tx.Create(&app).Error; err != nil {
			return database.TranslateError(err, "application")
		}

		first := model.ApplicationStatusEvent{
			ApplicationID: app.ID,
			Seq:           1,
			Status:        lifecycle.Applied,
			ByUserID:      seekerUserID,
			At:            s.now().UTC(),
		}
		if err := tx.Create(&first).Error; err != nil {
			return database.TranslateError(err, "application")
		}
		app.StatusHistory = []model.ApplicationStatusEvent{first}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if job.Employer != nil {
		s.notifier.Notify(notify.Event{
			Type:          model.NotificationApplicationReceived,
			UserID:        job.Employer.OwnerID,
			ApplicationID: app.ID,
			JobID:         job.ID,
			JobTitle:      job.Title,
			NewStatus:     lifecycle.Applied,
			At:            s.now().UTC(),
		})
	}
	return &app, nil
}

// TransitionInput is the body of a status change.
type TransitionInput struct {
	Status lifecycle.Status `json:"status" binding:"required,appstatus"`
	Note   string           `json:"note" binding:"max=2000"`
}

// RequestTransition moves an application to target on behalf of a user with write access to the job's employer.
// The history row and the status change commit together or not at all.
func (s *Service) RequestTransition(ctx context.Context, applicationID uuid.UUID, target lifecycle.Status, actingUserID uuid.UUID, note string) (*model.Application, error) {
	var app *model.Application
	err := database.WithTx(ctx, s.db, func(tx *gorm.DB) error {
		var err error
		app, err = s.access.WithDB(tx).ApplicationWrite(ctx, actingUserID, applicationID)
		if err != nil {
			return err
		}
		from := app.Status
		if err := lifecycle.Validate(from, target); err != nil {
			return err
		}

		res := tx.Model(&model.Application{}).
			Where("id = ? AND status = ?", app.ID, from).
			Update("status", target)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return concurrentChange(from, target, nil)
		}

		if err := tx.Where("application_id = ?", app.ID).Order("seq").Find(&app.StatusHistory).Error; err != nil {
			return err
		}
		history := app.History().Append(lifecycle.Entry{
			Status:   target,
			ByUserID: actingUserID,
			At:       s.now().UTC(),
			Note:     strings.TrimSpace(note),
		})
		entry, _ := history.Last()
		ev := model.ApplicationStatusEvent{
			ApplicationID: app.ID,
			Seq:           history.Len(),
			Status:        entry.Status,
			ByUserID:      entry.ByUserID,
			Note:          entry.Note,
			At:            entry.At,
		}
		if err := tx.Create(&ev).Error; err != nil {
			if database.IsUniqueViolation(err, "uq_status_event_seq") {
				return concurrentChange(from, target, err)
			}
			return database.TranslateError(err, "application")
		}
		app.StatusHistory = append(app.StatusHistory, ev)
		app.Status = target
		return nil
	})
	if err != nil {
		return nil, err
	}

	if app.JobSeeker != nil {
		s.notifier.Notify(notify.Event{
			Type:          model.NotificationStatusChanged,
			UserID:        app.JobSeeker.UserID,
			ApplicationID: app.ID,
			JobID:         app.JobID,
			JobTitle:      app.Job.Title,
			NewStatus:     target,
			Note:          strings.TrimSpace(note),
			At:            s.now().UTC(),
		})
	}
	return app, nil
}

func concurrentChange(from, to lifecycle.Status, cause error) error {
	te := &lifecycle.TransitionError{From: from, To: to}
	if cause == nil {
		cause = te
	}
	return apperror.Wrap(apperror.KindInvalidTransition, cause, "%s: application status changed concurrently", te.Error())
}

// Get returns an application with its job and status history to the applicant or the job's managers.
func (s *Service) Get(ctx context.Context, userID, applicationID uuid.UUID) (*model.Application, error) {
	app, err := s.access.ApplicationRead(ctx, userID, applicationID)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).
		Where("application_id = ?", app.ID).
		Order("seq").
		Find(&app.StatusHistory).Error; err != nil {
		return nil, err
	}
	if app.JobSeeker != nil && app.JobSeeker.UserID != userID {
		shareWithEmployer(app.JobSeeker)
	}
	return app, nil
}

// ListMine lists the applications of the calling seeker, newest first.
func (s *Service) ListMine(ctx context.Context, seekerUserID uuid.UUID, p service.Paging) (service.Page[model.Application], error) {
	p = p.Normalize()
	seeker, err := s.access.SeekerProfile(ctx, seekerUserID)
	if err != nil {
		return service.Page[model.Application]{}, err
	}

	query := s.db.WithContext(ctx).Model(&model.Application{}).Where("job_seeker_id = ?", seeker.ID)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return service.Page[model.Application]{}, err
	}
	var items []model.Application
	if err := query.Preload("Job").Preload("Job.Employer").
		Order("created_at desc").
		Offset(p.Offset()).Limit(p.Limit).
		Find(&items).Error; err != nil {
		return service.Page[model.Application]{}, err
	}
	return service.NewPage(items, total, p), nil
}

// ListFilter narrows the applications of a job.
type ListFilter struct {
	Status lifecycle.Status `form:"status" binding:"omitempty,appstatus"`
}

// ListForJob lists the applications of a job to whoever may manage it.
func (s *Service) ListForJob(ctx context.Context, userID, jobID uuid.UUID, f ListFilter, p service.Paging) (service.Page[model.Application], error) {
	p = p.Normalize()
	if _, err := s.access.JobWrite(ctx, userID, jobID); err != nil {
		return service.Page[model.Application]{}, err
	}

	query := s.db.WithContext(ctx).Model(&model.Application{}).Where("job_id = ?", jobID)
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return service.Page[model.Application]{}, err
	}
	var items []model.Application
	if err := query.Preload("JobSeeker").Preload("JobSeeker.User").Preload("Resume").
		Order("created_at desc").
		Offset(p.Offset()).Limit(p.Limit).
		Find(&items).Error; err != nil {
		return service.Page[model.Application]{}, err
	}
	for i := range items {
		shareWithEmployer(items[i].JobSeeker)
	}
	return service.NewPage(items, total, p), nil
}

// shareWithEmployer cuts an applicant's profile down to what the seeker agreed to show.
// Without ShowContact the account (name, email) is dropped; a hidden profile keeps only its id and flags.
func shareWithEmployer(seeker *model.JobSeekerProfile) {
	if seeker == nil {
		return
	}
	if !seeker.ShowContact {
		seeker.User = nil
	}
	if !seeker.ProfileVisible {
		seeker.DesiredTitle = ""
		seeker.Headline = ""
		seeker.Location = ""
		seeker.Skills = []model.Skill{}
	}
}
