// Package job manages employers and their job postings.
package job

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"jobportal-backend/internal/access"
	"jobportal-backend/internal/apperror"
	"jobportal-backend/internal/cache"
	"jobportal-backend/internal/database"
	"jobportal-backend/internal/model"
	"jobportal-backend/internal/service"
)

const slugAttempts = 3

// Service implements the employer and job operations.
type Service struct {
	db     *gorm.DB
	access *access.Resolver
	cache  cache.JobCache
	logger *slog.Logger
	now    func() time.Time
}

// NewService builds a Service. A nil jobCache disables caching.
func NewService(db *gorm.DB, resolver *access.Resolver, jobCache cache.JobCache, logger *slog.Logger) *Service {
	if jobCache == nil {
		jobCache = cache.NopJobCache{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		db:     db,
		access: resolver,
		cache:  jobCache,
		logger: logger.With("component", "job"),
		now:    time.Now,
	}
}

// CreateJobInput is the body of a new job. Status defaults to DRAFT.
type CreateJobInput struct {
	model.EditableJobInfo
	Status model.JobStatus `json:"status" binding:"omitempty,jobstatus"`
}

// CreateJob adds a job to an employer the user may write. The slug is derived from the title once.
func (s *Service) CreateJob(ctx context.Context, userID, employerID uuid.UUID, in CreateJobInput) (*model.Job, error) {
	if _, err := s.access.EmployerWrite(ctx, userID, employerID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, apperror.Validation("title is required")
	}
	if err := checkSalary(in.SalaryMin, in.SalaryMax); err != nil {
		return nil, err
	}

	status := in.Status
	if status == "" {
		status = model.JobDraft
	}
	job := model.Job{
		EmployerID:      employerID,
		Status:          status,
		EditableJobInfo: in.EditableJobInfo,
	}
	job.Title = strings.TrimSpace(job.Title)
	if status == model.JobPublished {
		now := s.now().UTC()
		job.PostedAt = &now
	}

	var err error
	for i := 0; i < slugAttempts; i++ {
		job.ID = uuid.Nil
		job.Slug = newSlug(job.Title)
		err = s.db.WithContext(ctx).Create(&job).Error
		if !database.IsUniqueViolation(err, "uq_job_slug") {
			break
		}
	}
	if err != nil {
		return nil, database.TranslateError(err, "job")
	}
	return &job, nil
}

// UpdateJobInput holds the fields to change. Nil fields are left as they are.
type UpdateJobInput struct {
	Title           *string                `json:"title" binding:"omitempty,min=3,max=200"`
	Description     *string                `json:"description" binding:"omitempty,max=20000"`
	Location        *string                `json:"location" binding:"omitempty,max=200"`
	Remote          *bool                  `json:"remote"`
	JobType         *model.JobType         `json:"job_type" binding:"omitempty,jobtype"`
	ExperienceLevel *model.ExperienceLevel `json:"experience_level" binding:"omitempty,explevel"`
	SalaryMin       *int                   `json:"salary_min" binding:"omitempty,min=0"`
	SalaryMax       *int                   `json:"salary_max" binding:"omitempty,min=0"`
	Currency        *string                `json:"currency" binding:"omitempty,len=3"`
	Tags            *[]string              `json:"tags"`
	ExpiresAt       *time.Time             `json:"expires_at"`
}

func (in UpdateJobInput) changes() map[string]interface{} {
	c := map[string]interface{}{}
	if in.Title != nil {
		c["title"] = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		c["description"] = *in.Description
	}
	if in.Location != nil {
		c["location"] = *in.Location
	}
	if in.Remote != nil {
		c["remote"] = *in.Remote
	}
	if in.JobType != nil {
		c["job_type"] = *in.JobType
	}
	if in.ExperienceLevel != nil {
		c["experience_level"] = *in.ExperienceLevel
	}
	if in.SalaryMin != nil {
		c["salary_min"] = *in.SalaryMin
	}
	if in.SalaryMax != nil {
		c["salary_max"] = *in.SalaryMax
	}
	if in.Currency != nil {
		c["currency"] = strings.ToUpper(*in.Currency)
	}
	if in.Tags != nil {
		c["tags"] = pq.StringArray(*in.Tags)
	}
	if in.ExpiresAt != nil {
		c["expires_at"] = *in.ExpiresAt
	}
	return c
}

// UpdateJob changes a job's editable fields. The slug never changes.
func (s *Service) UpdateJob(ctx context.Context, userID, jobID uuid.UUID, in UpdateJobInput) (*model.Job, error) {
	job, err := s.access.JobWrite(ctx, userID, jobID)
	if err != nil {
		return nil, err
	}

	salaryMin, salaryMax := job.SalaryMin, job.SalaryMax
	if in.SalaryMin != nil {
		salaryMin = in.SalaryMin
	}
	if in.SalaryMax != nil {
		salaryMax = in.SalaryMax
	}
	if err := checkSalary(salaryMin, salaryMax); err != nil {
		return nil, err
	}

	changes := in.changes()
	if len(changes) > 0 {
		if err := s.db.WithContext(ctx).Model(job).Updates(changes).Error; err != nil {
			return nil, database.TranslateError(err, "job")
		}
	}
	return s.reloadAndInvalidate(ctx, job)
}

// ChangeJobStatus moves a job between DRAFT, PUBLISHED, ARCHIVED and CLOSED.
// The first publication stamps posted_at.
func (s *Service) ChangeJobStatus(ctx context.Context, userID, jobID uuid.UUID, status model.JobStatus) (*model.Job, error) {
	if !validJobStatus(status) {
		return nil, apperror.Validation("unknown job status %q", status)
	}
	job, err := s.access.JobWrite(ctx, userID, jobID)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{"status": status}
	if status == model.JobPublished && job.PostedAt == nil {
		changes["posted_at"] = s.now().UTC()
	}
	if err := s.db.WithContext(ctx).Model(job).Updates(changes).Error; err != nil {
		return nil, database.TranslateError(err, "job")
	}
	return s.reloadAndInvalidate(ctx, job)
}

func (s *Service) reloadAndInvalidate(ctx context.Context, job *model.Job) (*model.Job, error) {
	var fresh model.Job
	if err := s.db.WithContext(ctx).First(&fresh, "id = ?", job.ID).Error; err != nil {
		return nil, database.TranslateError(err, "job")
	}
	if err := s.cache.Invalidate(ctx, &fresh); err != nil {
		s.logger.Warn("invalidate cached job", "job_id", fresh.ID, "err", err)
	}
	return &fresh, nil
}

func (s *Service) invalidateEmployerJobs(ctx context.Context, employerID uuid.UUID) {
	var jobs []model.Job
	if err := s.db.WithContext(ctx).Select("id", "slug").Where("employer_id = ?", employerID).Find(&jobs).Error; err != nil {
		s.logger.Warn("list employer jobs for invalidation", "employer_id", employerID, "err", err)
		return
	}
	for i := range jobs {
		if err := s.cache.Invalidate(ctx, &jobs[i]); err != nil {
			s.logger.Warn("invalidate cached job", "job_id", jobs[i].ID, "err", err)
		}
	}
}

// GetPublicJob returns a published, unexpired job by id or slug, served from the cache when possible.
func (s *Service) GetPublicJob(ctx context.Context, idOrSlug string) (*model.Job, error) {
	if job, hit, err := s.cache.Get(ctx, idOrSlug); err != nil {
		s.logger.Warn("read job cache", "key", idOrSlug, "err", err)
	} else if hit {
		return job, nil
	}

	job, err := s.access.PublicJob(ctx, idOrSlug)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, job); err != nil {
		s.logger.Warn("write job cache", "job_id", job.ID, "err", err)
	}
	return job, nil
}

// SearchFilter holds the public search predicates. Empty fields do not filter.
type SearchFilter struct {
	Q               string                `form:"q"`
	Location        string                `form:"location"`
	Remote          *bool                 `form:"remote"`
	JobType         model.JobType         `form:"job_type" binding:"omitempty,jobtype"`
	ExperienceLevel model.ExperienceLevel `form:"experience_level" binding:"omitempty,explevel"`
	SalaryMin       *int                  `form:"salary_min" binding:"omitempty,min=0"`
	SalaryMax       *int                  `form:"salary_max" binding:"omitempty,min=0"`
	Tag             string                `form:"tag"`
	EmployerID      string                `form:"employer_id" binding:"omitempty,uuid"`
	Sort            string                `form:"sort" binding:"omitempty,oneof=newest oldest"`
}

// SearchJobs lists publicly visible jobs matching f.
func (s *Service) SearchJobs(ctx context.Context, f SearchFilter, p service.Paging) (service.Page[model.Job], error) {
	p = p.Normalize()
	query := s.db.WithContext(ctx).Model(&model.Job{}).Scopes(access.PubliclyVisible(s.now()))

	if q := strings.TrimSpace(f.Q); q != "" {
		like := "%" + q + "%"
		query = query.Where("(jobs.title ILIKE ? OR jobs.description ILIKE ? OR ? ILIKE ANY(jobs.tags))", like, like, q)
	}
	if f.Location != "" {
		query = query.Where("jobs.location ILIKE ?", "%"+f.Location+"%")
	}
	if f.Remote != nil {
		query = query.Where("jobs.remote = ?", *f.Remote)
	}
	if f.JobType != "" {
		query = query.Where("jobs.job_type = ?", f.JobType)
	}
	if f.ExperienceLevel != "" {
		query = query.Where("jobs.experience_level = ?", f.ExperienceLevel)
	}
	if f.SalaryMin != nil {
		query = query.Where("COALESCE(jobs.salary_max, jobs.salary_min) >= ?", *f.SalaryMin)
	}
	if f.SalaryMax != nil {
		query = query.Where("COALESCE(jobs.salary_min, jobs.salary_max) <= ?", *f.SalaryMax)
	}
	if f.Tag != "" {
		query = query.Where("? ILIKE ANY(jobs.tags)", f.Tag)
	}
	if f.EmployerID != "" {
		query = query.Where("jobs.employer_id = ?", f.EmployerID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return service.Page[model.Job]{}, err
	}
	var jobs []model.Job
	err := query.Preload("Employer").
		Order(clause.OrderByColumn{Column: clause.Column{Name: "posted_at"}, Desc: f.Sort != "oldest"}).
		Order("jobs.id").
		Offset(p.Offset()).Limit(p.Limit).
		Find(&jobs).Error
	if err != nil {
		return service.Page[model.Job]{}, err
	}
	return service.NewPage(jobs, total, p), nil
}

// GetEmployerJobs lists every job of an employer, any status, to its owner and admins.
func (s *Service) GetEmployerJobs(ctx context.Context, userID, employerID uuid.UUID, status model.JobStatus, p service.Paging) (service.Page[model.Job], error) {
	if _, err := s.access.EmployerWrite(ctx, userID, employerID); err != nil {
		return service.Page[model.Job]{}, err
	}
	return s.listManaged(ctx, []uuid.UUID{employerID}, status, p)
}

// GetMyJobs lists every job of every employer the user owns or administers.
func (s *Service) GetMyJobs(ctx context.Context, userID uuid.UUID, status model.JobStatus, p service.Paging) (service.Page[model.Job], error) {
	ids, err := s.access.ManagedEmployerIDs(ctx, userID)
	if err != nil {
		return service.Page[model.Job]{}, err
	}
	return s.listManaged(ctx, ids, status, p)
}

func (s *Service) listManaged(ctx context.Context, employerIDs []uuid.UUID, status model.JobStatus, p service.Paging) (service.Page[model.Job], error) {
	p = p.Normalize()
	if len(employerIDs) == 0 {
		return service.NewPage[model.Job](nil, 0, p), nil
	}
	if status != "" && !validJobStatus(status) {
		return service.Page[model.Job]{}, apperror.Validation("unknown job status %q", status)
	}

	query := s.db.WithContext(ctx).Model(&model.Job{}).Where("employer_id IN ?", employerIDs)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return service.Page[model.Job]{}, err
	}
	var jobs []model.Job
	if err := query.Order("created_at desc").Offset(p.Offset()).Limit(p.Limit).Find(&jobs).Error; err != nil {
		return service.Page[model.Job]{}, err
	}
	return service.NewPage(jobs, total, p), nil
}

func validJobStatus(status model.JobStatus) bool {
	for _, s := range model.JobStatuses {
		if string(status) == s {
			return true
		}
	}
	return false
}

func checkSalary(min, max *int) error {
	if min != nil && max != nil && *min > *max {
		return apperror.Validation("salary_min must not exceed salary_max")
	}
	return nil
}
