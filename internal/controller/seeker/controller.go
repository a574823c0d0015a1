// Package seeker provides HTTP handlers for the job seeker's own profile.
package seeker

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobportal-backend/internal/service/account"
	"jobportal-backend/internal/utilities"
)

// Controller handles job seeker profile endpoints
type Controller struct {
	Accounts *account.Service
}

// NewController creates a new instance of Controller
func NewController(accounts *account.Service) *Controller {
	return &Controller{Accounts: accounts}
}

// GetProfile returns the caller's seeker profile.
// @Summary Get my seeker profile
// @Tags Seeker
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utilities.Response{data=model.JobSeekerProfile}
// @Failure 404 {object} utilities.ErrorResponse "Caller is not a job seeker"
// @Router /seekers/me [get]
func (sc *Controller) GetProfile(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		utilities.Fail(c, err)
		return
	}

	profile, err := sc.Accounts.GetProfile(c.Request.Context(), user.UserID)
	if err != nil {
		utilities.Fail(c, err)
		return
	}
	utilities.Success(c, http.StatusOK, profile)
}

// UpdateProfile edits the caller's seeker profile. Omitted fields are left unchanged;
// skills replaces the whole list.
// @Summary Update my seeker profile
// @Description Skill confidence must be between 0 and 100.
// @Tags Seeker
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Profile body account.UpdateProfileInput true "Fields to change"
// @Success 200 {object} utilities.Response{data=model.JobSeekerProfile}
// @Failure 400 {object} utilities.ErrorResponse "Invalid body or skills"
// @Failure 404 {object} utilities.ErrorResponse "Caller is not a job seeker"
// @Router /seekers/me [patch]
func (sc *Controller) UpdateProfile(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		utilities.Fail(c, err)
		return
	}

	var in account.UpdateProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utilities.Fail(c, err)
		return
	}

	profile, err := sc.Accounts.UpdateProfile(c.Request.Context(), user.UserID, in)
	if err != nil {
		utilities.Fail(c, err)
		return
	}
	utilities.Success(c, http.StatusOK, profile)
}
