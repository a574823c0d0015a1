package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobportal-backend/internal/utilities"
)

// Google signs in with a Google authorization code, registering the account on first use.
// @Summary Sign in with Google
// @Description Exchanges the authorization code. New accounts get role (default JOBSEEKER).
// @Description An existing account with the same verified email is linked.
// @Tags Auth
// @Accept json
// @Produce json
// @Param Info body googleInfo true "Authorization code and optional role"
// @Success 200 {object} utilities.Response{data=model.AuthResponse}
// @Failure 400 {object} utilities.ErrorResponse "Google sign-in is not configured or the body is invalid"
// @Failure 401 {object} utilities.ErrorResponse "Google rejected the code"
// @Router /auth/google [post]
func (h *Handler) Google(c *gin.Context) {
	var info googleInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		utilities.Fail(c, err)
		return
	}

	resp, err := h.accounts.GoogleLogin(c.Request.Context(), info.Code, info.Role)
	if err != nil {
		LogAuthAttempt(h.logger, AuthGoogle, "", err)
		utilities.Fail(c, err)
		return
	}
	LogAuthAttempt(h.logger, AuthGoogle, resp.User.ID.String(), nil)
	utilities.Success(c, http.StatusOK, resp)
}
