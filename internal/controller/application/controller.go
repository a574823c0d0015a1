// Package application provides HTTP handlers for applying to jobs and moving applications
// through their status workflow.
package application

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"jobportal-backend/internal/apperror"
	"jobportal-backend/internal/service"
	"jobportal-backend/internal/service/application"
	"jobportal-backend/internal/utilities"
)

const (
	idempotencyHeader = "Idempotency-Key"
	maxIdempotencyKey = 255
)

// Controller handles application related endpoints
type Controller struct {
	Applications *application.Service
}

// NewController creates a new instance of Controller
func NewController(applications *application.Service) *Controller {
	return &Controller{Applications: applications}
}

// Apply submits the calling seeker's application to a job.
// @Summary Apply to a job
// @Description Job seekers only. The job must be published and not expired; one application per job.
// @Tags Application
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Param Idempotency-Key header string false "Client supplied key stored with the application"
// @Param Application body application.ApplyInput true "Optional resume and cover letter"
// @Success 201 {object} utilities.Response{data=model.Application}
// @Failure 400 {object} utilities.ErrorResponse "Invalid body or resume"
// @Failure 404 {object} utilities.ErrorResponse "Job not found or not open"
// @Failure 409 {object} utilities.ErrorResponse "Already applied"
// @Router /jobs/{id}/apply [post]
func (ac *Controller) Apply(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		utilities.Fail(c, err)
		return
	}
	jobID, err := utilities.ParamUUID(c, "id", "job")
	if err != nil {
		utilities.Fail(c, err)
		return
	}

	var in application.ApplyInput
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&in); err != nil {
			utilities.Fail(c, err)
			return
		}
	}
	in.IdempotencyKey = strings.TrimSpace(c.GetHeader(idempotencyHeader))
	if len(in.IdempotencyKey) > maxIdempotencyKey {
		utilities.Fail(c, apperror.Validation("%s must be at most %d characters", idempotencyHeader, maxIdempotencyKey))
		return
	}

	app, err := ac.Applications.Apply(c.Request.Context(), user.UserID, jobID, in)
	if err != nil {
		utilities.Fail(c, err)
		return
	}
	utilities.Success(c, http.StatusCreated, app)
}

// ListForJob lists the applications of a job.
// @Summary List job applications
// @Description Owner and admins of the job's employer only
// @Tags Application
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Param status query string false "APPLIED, VIEWED, SHORTLISTED, INTERVIEW_SCHEDULED, OFFERED, HIRED or REJECTED"
// @Param page query int false "Page, from 1"
// @Param limit query int false "Page size, at most 100"
// @Success 200 {object} utilities.Response{data=service.Page[model.Application]}
// @Failure 400 {object} utilities.ErrorResponse "Invalid query"
// @Failure 404 {object} utilities.ErrorResponse "Job not found or access denied"
// @Router /jobs/{id}/applications [get]
func (ac *Controller) ListForJob(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		utilities.Fail(c, err)
		return
	}
	jobID, err := utilities.ParamUUID(c, "id", "job")
	if err != nil {
		utilities.Fail(c, err)
		return
	}

	var (
		f application.ListFilter
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

	page, err := ac.Applications.ListForJob(c.Request.Context(), user.UserID, jobID, f, p)
	if err != nil {
		utilities.Fail(c, err)
		return
	}
	utilities.Success(c, http.StatusOK, page)
}

// ListMine lists the calling seeker's applications.
// @Summary List my applications
// @Tags Application
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page, from 1"
// @Param limit query int false "Page size, at most 100"
// @Success 200 {object} utilities.Response{data=service.Page[model.Application]}
// @Failure 404 {object} utilities.ErrorResponse "Caller is not a job seeker"
// @Router /applications/mine [get]
func (ac *Controller) ListMine(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		utilities.Fail(c, err)
		return
	}

	var p service.Paging
	if err := c.ShouldBindQuery(&p); err != nil {
		utilities.Fail(c, err)
		return
	}

	page, err := ac.Applications.ListMine(c.Request.Context(), user.UserID, p)
	if err != nil {
		utilities.Fail(c, err)
		return
	}
	utilities.Success(c, http.StatusOK, page)
}

// Get returns an application with its status history.
// @Summary Get application
// @Description The applicant and the managers of the job's employer
// @Tags Application
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Success 200 {object} utilities.Response{data=model.Application}
// @Failure 404 {object} utilities.ErrorResponse "Application not found or access denied"
// @Router /applications/{id} [get]
func (ac *Controller) Get(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		utilities.Fail(c, err)
		return
	}
	id, err := utilities.ParamUUID(c, "id", "application")
	if err != nil {
		utilities.Fail(c, err)
		return
	}

	app, err := ac.Applications.Get(c.Request.Context(), user.UserID, id)
	if err != nil {
		utilities.Fail(c, err)
		return
	}
	utilities.Success(c, http.StatusOK, app)
}

// Transition moves an application to a new status.
// @Summary Change application status
// @Description Owner and admins of the job's employer only. Allowed moves follow the application workflow.
// @Tags Application
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Param Status body application.TransitionInput true "Target status and optional note"
// @Success 200 {object} utilities.Response{data=model.Application}
// @Failure 400 {object} utilities.ErrorResponse "Invalid status"
// @Failure 404 {object} utilities.ErrorResponse "Application not found or access denied"
// @Failure 409 {object} utilities.ErrorResponse "Transition not allowed from the current status"
// @Router /applications/{id}/status [patch]
func (ac *Controller) Transition(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		utilities.Fail(c, err)
		return
	}
	id, err := utilities.ParamUUID(c, "id", "application")
	if err != nil {
		utilities.Fail(c, err)
		return
	}

	var in application.TransitionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utilities.Fail(c, err)
		return
	}

	app, err := ac.Applications.RequestTransition(c.Request.Context(), id, in.Status, user.UserID, in.Note)
	if err != nil {
		utilities.Fail(c, err)
		return
	}
	utilities.Success(c, http.StatusOK, app)
}
