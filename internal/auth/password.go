package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobportal-backend/internal/utilities"
)

// ForgotPassword mails a reset link.
// @Summary Request a password reset link
// @Description Succeeds for unknown addresses without sending anything.
// @Tags Auth
// @Accept json
// @Produce json
// @Param Info body emailInfo true "Email"
// @Success 200 {object} utilities.MessageResponse
// @Failure 400 {object} utilities.ErrorResponse
// @Failure 502 {object} utilities.ErrorResponse "Email could not be sent"
// @Router /auth/forgot-password [post]
func (h *Handler) ForgotPassword(c *gin.Context) {
	var info emailInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		utilities.Fail(c, err)
		return
	}

	if err := h.accounts.ForgotPassword(c.Request.Context(), info.Email); err != nil {
		utilities.Fail(c, err)
		return
	}
	utilities.Message(c, http.StatusOK, "if the address is registered a reset link has been sent")
}

// ResetPassword sets a new password with a reset token and logs out every session.
// @Summary Reset password
// @Tags Auth
// @Accept json
// @Produce json
// @Param Info body resetInfo true "Reset token and new password"
// @Success 200 {object} utilities.MessageResponse
// @Failure 400 {object} utilities.ErrorResponse "Invalid, used or expired token"
// @Router /auth/reset-password [post]
func (h *Handler) ResetPassword(c *gin.Context) {
	var info resetInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		utilities.Fail(c, err)
		return
	}

	err := h.accounts.ResetPassword(c.Request.Context(), info.Token, info.NewPassword)
	LogAuthAttempt(h.logger, AuthReset, "", err)
	if err != nil {
		utilities.Fail(c, err)
		return
	}
	utilities.Message(c, http.StatusOK, "password has been reset")
}

// ChangePassword replaces the caller's password and revokes all refresh tokens.
// @Summary Change password
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Info body changePasswordInfo true "Current and new password"
// @Success 200 {object} utilities.MessageResponse
// @Failure 400 {object} utilities.ErrorResponse
// @Failure 401 {object} utilities.ErrorResponse "Current password is incorrect"
// @Router /auth/change-password [post]
func (h *Handler) ChangePassword(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		utilities.Fail(c, err)
		return
	}
	var info changePasswordInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		utilities.Fail(c, err)
		return
	}

	err = h.accounts.ChangePassword(c.Request.Context(), user.UserID, info.CurrentPassword, info.NewPassword)
	LogAuthAttempt(h.logger, AuthLocal, user.UserID.String(), err)
	if err != nil {
		utilities.Fail(c, err)
		return
	}
	utilities.Message(c, http.StatusOK, "password changed, please log in again on other devices")
}
