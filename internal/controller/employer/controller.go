// Package employer provides HTTP handlers for employer profiles, their admins and their jobs.
package employer

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobportal-backend/internal/model"
	"jobportal-backend/internal/service"
	"jobportal-backend/internal/service/job"
	"jobportal-backend/internal/utilities"
)

// Controller handles employer related endpoints
type Controller struct {
	Jobs *job.Service
}

// NewController creates a new instance of Controller
func NewController(jobs *job.Service) *Controller {
	return &Controller{Jobs: jobs}
}

type adminInfo struct {
	Email string `json:"email" binding:"required,email"`
}

type jobStatusQuery struct {
	Status model.JobStatus `form:"status" binding:"omitempty,jobstatus"`
}

// CreateEmployer creates the employer profile of the calling job provider.
// @Summary Create employer profile
// @Description Only JOBPROVIDER users, one employer per user
// @Tags Employer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Employer body model.EditableEmployerInfo true "Employer information, name is required"
// @Success 201 {object} utilities.Response{data=model.EmployerProfile}
// @Failure 400 {object} utilities.ErrorResponse "Invalid body"
// @Failure 403 {object} utilities.ErrorResponse "Not a job provider"
// @Failure 409 {object} utilities.ErrorResponse "User already has an employer"
// @Router /employers [post]
func (ec *Controller) CreateEmployer(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		utilities.Fail(c, err)
		return
	}

	var info model.EditableEmployerInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		utilities.Fail(c, err)
		return
	}

	employer, err := ec.Jobs.CreateEmployer(c.Request.Context(), user.UserID, info)
	if err != nil {
		utilities.Fail(c, err)
		return
	}
	utilities.Success(c, http.StatusCreated, employer)
}

// MyEmployers lists the employers the caller owns or administers.
// @Summary List my employers
// @Tags Employer
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utilities.Response{data=[]model.EmployerProfile}
// @Failure 401 {object} utilities.ErrorResponse
// @Router /employers/mine [get]
func (ec *Controller) MyEmployers(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		utilities.Fail(c, err)
		return
	}

	employers, err := ec.Jobs.MyEmployers(c.Request.Context(), user.UserID)
	if err != nil {
		utilities.Fail(c, err)
		return
	}
	utilities.Success(c, http.StatusOK, employers)
}

// GetEmployer returns an employer's public profile.
// @Summary Get employer profile
// @Tags Employer
// @Produce json
// @Param id path string true "Employer ID"
// @Success 200 {object} utilities.Response{data=model.EmployerProfile}
// @Failure 404 {object} utilities.ErrorResponse "Employer not found"
// @Router /employers/{id} [get]
func (ec *Controller) GetEmployer(c *gin.Context) {
	id, err := utilities.ParamUUID(c, "id", "employer")
	if err != nil {
		utilities.Fail(c, err)
		return
	}

	employer, err := ec.Jobs.GetEmployer(c.Request.Context(), id)
	if err != nil {
		utilities.Fail(c, err)
		return
	}
	utilities.Success(c, http.StatusOK, employer)
}

// UpdateEmployer edits an employer profile. Empty fields are left unchanged.
// @Summary Update employer profile
// @Description Owner and admins only
// @Tags Employer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Employer ID"
// @Param Employer body model.EditableEmployerInfo true "Fields to change"
// @Success 200 {object} utilities.Response{data=model.EmployerProfile}
// @Failure 400 {object} utilities.ErrorResponse "Invalid body"
// @Failure 404 {object} utilities.ErrorResponse "Employer not found or access denied"
// @Router /employers/{id} [patch]
func (ec *Controller) UpdateEmployer(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		utilities.Fail(c, err)
		return
	}
	id, err := utilities.ParamUUID(c, "id", "employer")
	if err != nil {
		utilities.Fail(c, err)
		return
	}

	var info model.EditableEmployerInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		utilities.Fail(c, err)
		return
	}

	employer, err := ec.Jobs.UpdateEmployer(c.Request.Context(), user.UserID, id, info)
	if err != nil {
		utilities.Fail(c, err)
		return
	}
	utilities.Success(c, http.StatusOK, employer)
}

// ListAdmins lists the admins of an employer.
// @Summary List employer admins
// @Tags Employer
// @Produce json
// @Security BearerAuth
// @Param id path string true "Employer ID"
// @Success 200 {object} utilities.Response{data=[]model.User}
// @Failure 404 {object} utilities.ErrorResponse "Employer not found or access denied"
// @Router /employers/{id}/admins [get]
func (ec *Controller) ListAdmins(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		utilities.Fail(c, err)
		return
	}
	id, err := utilities.ParamUUID(c, "id", "employer")
	if err != nil {
		utilities.Fail(c, err)
		return
	}

	admins, err := ec.Jobs.ListAdmins(c.Request.Context(), user.UserID, id)
	if err != nil {
		utilities.Fail(c, err)
		return
	}
	utilities.Success(c, http.StatusOK, admins)
}

// AddAdmin grants a JOBPROVIDER user admin rights on the employer.
// @Summary Add employer admin
// @Description Owner only. Returns the updated admin list.
// @Tags Employer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Employer ID"
// @Param Admin body adminInfo true "Email of the user to add"
// @Success 200 {object} utilities.Response{data=[]model.User}
// @Failure 400 {object} utilities.ErrorResponse "Invalid body or user cannot be an admin"
// @Failure 404 {object} utilities.ErrorResponse "Employer or user not found, or access denied"
// @Router /employers/{id}/admins [post]
func (ec *Controller) AddAdmin(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		utilities.Fail(c, err)
		return
	}
	id, err := utilities.ParamUUID(c, "id", "employer")
	if err != nil {
		utilities.Fail(c, err)
		return
	}

	var info adminInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		utilities.Fail(c, err)
		return
	}

	admins, err := ec.Jobs.AddAdmin(c.Request.Context(), user.UserID, id, info.Email)
	if err != nil {
		utilities.Fail(c, err)
		return
	}
	utilities.Success(c, http.StatusOK, admins)
}

// RemoveAdmin revokes a user's admin rights on the employer.
// @Summary Remove employer admin
// @Description Owner only
// @Tags Employer
// @Produce json
// @Security BearerAuth
// @Param id path string true "Employer ID"
// @Param userId path string true "Admin user ID"
// @Success 200 {object} utilities.MessageResponse
// @Failure 404 {object} utilities.ErrorResponse "Employer or admin not found, or access denied"
// @Router /employers/{id}/admins/{userId} [delete]
func (ec *Controller) RemoveAdmin(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		utilities.Fail(c, err)
		return
	}
	id, err := utilities.ParamUUID(c, "id", "employer")
	if err != nil {
		utilities.Fail(c, err)
		return
	}
	adminID, err := utilities.ParamUUID(c, "userId", "admin")
	if err != nil {
		utilities.Fail(c, err)
		return
	}

	if err := ec.Jobs.RemoveAdmin(c.Request.Context(), user.UserID, id, adminID); err != nil {
		utilities.Fail(c, err)
		return
	}
	utilities.Message(c, http.StatusOK, "admin removed")
}

// CreateJob adds a job to the employer.
// @Summary Create job
// @Description Owner and admins only. Status defaults to DRAFT; the slug is derived from the title.
// @Tags Employer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Employer ID"
// @Param Job body job.CreateJobInput true "Job information"
// @Success 201 {object} utilities.Response{data=model.Job}
// @Failure 400 {object} utilities.ErrorResponse "Invalid body"
// @Failure 404 {object} utilities.ErrorResponse "Employer not found or access denied"
// @Router /employers/{id}/jobs [post]
func (ec *Controller) CreateJob(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		utilities.Fail(c, err)
		return
	}
	id, err := utilities.ParamUUID(c, "id", "employer")
	if err != nil {
		utilities.Fail(c, err)
		return
	}

	var in job.CreateJobInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utilities.Fail(c, err)
		return
	}

	created, err := ec.Jobs.CreateJob(c.Request.Context(), user.UserID, id, in)
	if err != nil {
		utilities.Fail(c, err)
		return
	}
	utilities.Success(c, http.StatusCreated, created)
}

// GetEmployerJobs lists every job of the employer in any status.
// @Summary List employer jobs
// @Description Owner and admins only
// @Tags Employer
// @Produce json
// @Security BearerAuth
// @Param id path string true "Employer ID"
// @Param status query string false "DRAFT, PUBLISHED, ARCHIVED or CLOSED"
// @Param page query int false "Page, from 1"
// @Param limit query int false "Page size, at most 100"
// @Success 200 {object} utilities.Response{data=service.Page[model.Job]}
// @Failure 400 {object} utilities.ErrorResponse "Invalid query"
// @Failure 404 {object} utilities.ErrorResponse "Employer not found or access denied"
// @Router /employers/{id}/jobs [get]
func (ec *Controller) GetEmployerJobs(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		utilities.Fail(c, err)
		return
	}
	id, err := utilities.ParamUUID(c, "id", "employer")
	if err != nil {
		utilities.Fail(c, err)
		return
	}

	var (
		q jobStatusQuery
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

	page, err := ec.Jobs.GetEmployerJobs(c.Request.Context(), user.UserID, id, q.Status, p)
	if err != nil {
		utilities.Fail(c, err)
		return
	}
	utilities.Success(c, http.StatusOK, page)
}
