// Package access decides whether an acting user may read or change an employer, job, application or resume.
//
// Every check answers with the entity or apperror.KindNotFoundOrForbidden, so callers cannot tell a missing
// entity from one they may not touch.
package access

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"jobportal-backend/internal/apperror"
	"jobportal-backend/internal/model"
)

// Resolver evaluates ownership and admin membership against the database.
type Resolver struct {
	db  *gorm.DB
	now func() time.Time
}

// NewResolver builds a Resolver over db.
func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db, now: time.Now}
}

// WithDB returns a Resolver that runs its lookups on db, typically an open transaction.
func (r *Resolver) WithDB(db *gorm.DB) *Resolver {
	return &Resolver{db: db, now: r.now}
}

func (r *Resolver) find(ctx context.Context, dst interface{}, entity string, query string, args ...interface{}) error {
	err := r.db.WithContext(ctx).Where(query, args...).First(dst).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFoundOrForbidden(entity)
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", entity, err)
	}
	return nil
}

// IsEmployerOwner reports whether userID owns employerID.
func (r *Resolver) IsEmployerOwner(ctx context.Context, userID, employerID uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.EmployerProfile{}).
		Where("id = ? AND owner_id = ?", employerID, userID).
		Count(&n).Error
	return n > 0, err
}

// IsEmployerAdmin reports whether userID is in the admin set of employerID.
func (r *Resolver) IsEmployerAdmin(ctx context.Context, userID, employerID uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.EmployerAdmin{}).
		Where("employer_id = ? AND user_id = ?", employerID, userID).
		Count(&n).Error
	return n > 0, err
}

func (r *Resolver) canWriteEmployer(ctx context.Context, userID, employerID uuid.UUID) (bool, error) {
	owner, err := r.IsEmployerOwner(ctx, userID, employerID)
	if err != nil || owner {
		return owner, err
	}
	return r.IsEmployerAdmin(ctx, userID, employerID)
}

// EmployerWrite grants the owner and the admins of employerID.
func (r *Resolver) EmployerWrite(ctx context.Context, userID, employerID uuid.UUID) (*model.EmployerProfile, error) {
	var employer model.EmployerProfile
	if err := r.find(ctx, &employer, "employer", "id = ?", employerID); err != nil {
		return nil, err
	}
	ok, err := r.canWriteEmployer(ctx, userID, employer.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.NotFoundOrForbidden("employer")
	}
	return &employer, nil
}

// JobWrite grants whoever has EmployerWrite on the job's employer.
func (r *Resolver) JobWrite(ctx context.Context, userID, jobID uuid.UUID) (*model.Job, error) {
	var job model.Job
	if err := r.find(ctx, &job, "job", "id = ?", jobID); err != nil {
		return nil, err
	}
	ok, err := r.canWriteEmployer(ctx, userID, job.EmployerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.NotFoundOrForbidden("job")
	}
	return &job, nil
}

// PublicJob returns a job anyone may read: published and not expired. idOrSlug may be either form.
func (r *Resolver) PublicJob(ctx context.Context, idOrSlug string) (*model.Job, error) {
	query := r.db.WithContext(ctx).Preload("Employer")
	if id, err := uuid.Parse(idOrSlug); err == nil {
		query = query.Where("id = ?", id)
	} else {
		query = query.Where("slug = ?", idOrSlug)
	}

	var job model.Job
	err := query.Scopes(PubliclyVisible(r.now())).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFoundOrForbidden("job")
	}
	if err != nil {
		return nil, fmt.Errorf("load job: %w", err)
	}
	return &job, nil
}

// PubliclyVisible restricts a jobs query to rows anonymous callers may see at now.
func PubliclyVisible(now time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("jobs.status = ?", model.JobPublished).
			Where("(jobs.expires_at IS NULL OR jobs.expires_at > ?)", now)
	}
}

// ApplicationRead grants the applying seeker and whoever has EmployerWrite on the job's employer.
func (r *Resolver) ApplicationRead(ctx context.Context, userID, applicationID uuid.UUID) (*model.Application, error) {
	app, err := r.loadApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.JobSeeker != nil && app.JobSeeker.UserID == userID {
		return app, nil
	}
	ok, err := r.canWriteEmployer(ctx, userID, app.Job.EmployerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.NotFoundOrForbidden("application")
	}
	return app, nil
}

// ApplicationWrite grants only EmployerWrite on the job's employer. Seekers never change their own status.
func (r *Resolver) ApplicationWrite(ctx context.Context, userID, applicationID uuid.UUID) (*model.Application, error) {
	app, err := r.loadApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	ok, err := r.canWriteEmployer(ctx, userID, app.Job.EmployerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.NotFoundOrForbidden("application")
	}
	return app, nil
}

func (r *Resolver) loadApplication(ctx context.Context, applicationID uuid.UUID) (*model.Application, error) {
	var app model.Application
	err := r.db.WithContext(ctx).
		Preload("Job").
		Preload("JobSeeker").
		Where("id = ?", applicationID).
		First(&app).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFoundOrForbidden("application")
	}
	if err != nil {
		return nil, fmt.Errorf("load application: %w", err)
	}
	if app.Job == nil {
		return nil, apperror.NotFoundOrForbidden("application")
	}
	return &app, nil
}

// SeekerProfile returns the job seeker profile of userID.
func (r *Resolver) SeekerProfile(ctx context.Context, userID uuid.UUID) (*model.JobSeekerProfile, error) {
	var profile model.JobSeekerProfile
	if err := r.find(ctx, &profile, "job seeker profile", "user_id = ?", userID); err != nil {
		return nil, err
	}
	return &profile, nil
}

// ResumeAccess grants the user owning the resume's seeker profile. Deleted resumes are only
// returned when includeDeleted is set.
func (r *Resolver) ResumeAccess(ctx context.Context, userID, resumeID uuid.UUID, includeDeleted bool) (*model.Resume, error) {
	query := r.db.WithContext(ctx).
		Joins("JOIN job_seeker_profiles ON job_seeker_profiles.id = resumes.job_seeker_id").
		Where("resumes.id = ? AND job_seeker_profiles.user_id = ?", resumeID, userID)
	if !includeDeleted {
		query = query.Where("resumes.deleted = ?", false)
	}

	var resume model.Resume
	err := query.First(&resume).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFoundOrForbidden("resume")
	}
	if err != nil {
		return nil, fmt.Errorf("load resume: %w", err)
	}
	return &resume, nil
}

// ManagedEmployerIDs lists the employers userID owns or administers.
func (r *Resolver) ManagedEmployerIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var owned []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&model.EmployerProfile{}).
		Where("owner_id = ?", userID).
		Pluck("id", &owned).Error; err != nil {
		return nil, err
	}
	var administered []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&model.EmployerAdmin{}).
		Where("user_id = ?", userID).
		Pluck("employer_id", &administered).Error; err != nil {
		return nil, err
	}
	return append(owned, administered...), nil
}
