package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobportal-backend/internal/utilities"
)

// Me returns the caller's account.
// @Summary Current user
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utilities.Response{data=model.User}
// @Failure 401 {object} utilities.ErrorResponse
// @Router /auth/me [get]
func (h *Handler) Me(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		utilities.Fail(c, err)
		return
	}

	me, err := h.accounts.Me(c.Request.Context(), user.UserID)
	if err != nil {
		utilities.Fail(c, err)
		return
	}
	utilities.Success(c, http.StatusOK, me)
}

// DeleteAccount removes the caller and everything they own.
// @Summary Delete account
// @Description Deletes the account with its profile, employer, jobs, applications, resumes and notifications.
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utilities.MessageResponse
// @Failure 401 {object} utilities.ErrorResponse
// @Router /auth/account [delete]
func (h *Handler) DeleteAccount(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		utilities.Fail(c, err)
		return
	}

	if err := h.accounts.DeleteAccount(c.Request.Context(), user.UserID); err != nil {
		utilities.Fail(c, err)
		return
	}
	h.logger.Info("account deleted", "user_id", user.UserID)
	utilities.Message(c, http.StatusOK, "account deleted")
}
