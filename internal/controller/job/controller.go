// Package job provides HTTP handlers for job search, job pages and job management.
package job

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobportal-backend/internal/model"
	"jobportal-backend/internal/service"
	"jobportal-backend/internal/service/job"
	"jobportal-backend/internal/utilities"
)

// Controller handles job related endpoints
type Controller struct {
	Jobs *job.Service
}

// NewController creates a new instance of Controller
func NewController(jobs *job.Service) *Controller {
	return &Controller{Jobs: jobs}
}

type statusInfo struct {
	Status model.JobStatus `json:"status" binding:"required,jobstatus"`
}

type statusQuery struct {
	Status model.JobStatus `form:"status" binding:"omitempty,jobstatus"`
}

// SearchJobs lists publicly visible jobs.
// @Summary Search jobs
// @Description Only published, non-expired jobs. Every query parameter is optional.
// @Tags Job
// @Produce json
// @Param q query string false "Case-insensitive match on title and description"
// @Param location query string false "Case-insensitive substring of the location"
// @Param remote query bool false "Remote jobs only when true"
// @Param job_type query string false "FULL_TIME, PART_TIME, CONTRACT, INTERNSHIP or TEMPORARY"
// @Param experience_level query string false "ENTRY, MID, SENIOR or LEAD"
// @Param salary_min query int false "Salary range must reach at least this"
// @Param salary_max query int false "Salary range must start at most at this"
// @Param tag query string false "Exact tag"
// @Param employer_id query string false "Employer ID"
// @Param sort query string false "newest (default) or oldest"
// @Param page query int false "Page, from 1"
// @Param limit query int false "Page size, at most 100"
// @Success 200 {object} utilities.Response{data=service.Page[model.Job]}
// @Failure 400 {object} utilities.ErrorResponse "Invalid query"
// @Router /jobs/search [get]
func (jc *Controller) SearchJobs(c *gin.Context) {
	var (
		f job.SearchFilter
		p service.Paging
	)
	if err := c.ShouldBindQuery(&f); err != nil {
		utilities.Fail(c, err)
		return
	}
	if err := c.ShouldBindQuery(&p); err != nil {
		utilities.Fail(c, err)
		return
	}

	page, err := jc.Jobs.SearchJobs(c.Request.Context(), f, p)
	if err != nil {
		utilities.Fail(c, err)
		return
	}
	utilities.Success(c, http.StatusOK, page)
}

// GetMyJobs lists the jobs of every employer the caller owns or administers.
// @Summary List my jobs
// @Tags Job
// @Produce json
// @Security BearerAuth
// @Param status query string false "DRAFT, PUBLISHED, ARCHIVED or CLOSED"
// @Param page query int false "Page, from 1"
// @Param limit query int false "Page size, at most 100"
// @Success 200 {object} utilities.Response{data=service.Page[model.Job]}
// @Failure 400 {object} utilities.ErrorResponse "Invalid query"
// @Router /jobs/mine [get]
func (jc *Controller) GetMyJobs(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		utilities.Fail(c, err)
		return
	}

	var (
		q statusQuery
		p service.Paging
	)
	if err := c.ShouldBindQuery(&q); err != nil {
		utilities.Fail(c, err)
		return
	}
	if err := c.ShouldBindQuery(&p); err != nil {
		utilities.Fail(c, err)
		return
	}

	page, err := jc.Jobs.GetMyJobs(c.Request.Context(), user.UserID, q.Status, p)
	if err != nil {
		utilities.Fail(c, err)
		return
	}
	utilities.Success(c, http.StatusOK, page)
}

// GetJob returns a publicly visible job by id or slug.
// @Summary Get job
// @Tags Job
// @Produce json
// @Param id path string true "Job ID or slug"
// @Success 200 {object} utilities.Response{data=model.Job}
// @Failure 404 {object} utilities.ErrorResponse "Job not found or not public"
// @Router /jobs/{id} [get]
func (jc *Controller) GetJob(c *gin.Context) {
	found, err := jc.Jobs.GetPublicJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		utilities.Fail(c, err)
		return
	}
	utilities.Success(c, http.StatusOK, found)
}

// UpdateJob edits a job. Omitted fields are left unchanged; the slug never changes.
// @Summary Update job
// @Description Owner and admins of the job's employer only
// @Tags Job
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Param Job body job.UpdateJobInput true "Fields to change"
// @Success 200 {object} utilities.Response{data=model.Job}
// @Failure 400 {object} utilities.ErrorResponse "Invalid body"
// @Failure 404 {object} utilities.ErrorResponse "Job not found or access denied"
// @Router /jobs/{id} [patch]
func (jc *Controller) UpdateJob(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		utilities.Fail(c, err)
		return
	}
	id, err := utilities.ParamUUID(c, "id", "job")
	if err != nil {
		utilities.Fail(c, err)
		return
	}

	var in job.UpdateJobInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utilities.Fail(c, err)
		return
	}

	updated, err := jc.Jobs.UpdateJob(c.Request.Context(), user.UserID, id, in)
	if err != nil {
		utilities.Fail(c, err)
		return
	}
	utilities.Success(c, http.StatusOK, updated)
}

// ChangeJobStatus publishes, archives, closes or unpublishes a job.
// @Summary Change job status
// @Description Owner and admins of the job's employer only. Publishing sets posted_at the first time.
// @Tags Job
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Param Status body statusInfo true "New status"
// @Success 200 {object} utilities.Response{data=model.Job}
// @Failure 400 {object} utilities.ErrorResponse "Invalid status"
// @Failure 404 {object} utilities.ErrorResponse "Job not found or access denied"
// @Router /jobs/{id}/status [patch]
func (jc *Controller) ChangeJobStatus(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		utilities.Fail(c, err)
		return
	}
	id, err := utilities.ParamUUID(c, "id", "job")
	if err != nil {
		utilities.Fail(c, err)
		return
	}

	var info statusInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		utilities.Fail(c, err)
		return
	}

	updated, err := jc.Jobs.ChangeJobStatus(c.Request.Context(), user.UserID, id, info.Status)
	if err != nil {
		utilities.Fail(c, err)
		return
	}
	utilities.Success(c, http.StatusOK, updated)
}
