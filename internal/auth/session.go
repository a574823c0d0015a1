package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobportal-backend/internal/utilities"
)

// Refresh exchanges a refresh token for a new pair. The presented token is revoked.
// @Summary Rotate the refresh token
// @Tags Auth
// @Accept json
// @Produce json
// @Param Info body refreshInfo true "Refresh token"
// @Success 200 {object} utilities.Response{data=model.TokenPair}
// @Failure 401 {object} utilities.ErrorResponse "Unknown, revoked or expired refresh token"
// @Router /auth/refresh [post]
func (h *Handler) Refresh(c *gin.Context) {
	var info refreshInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		utilities.Fail(c, err)
		return
	}

	pair, err := h.accounts.Refresh(c.Request.Context(), info.RefreshToken)
	LogAuthAttempt(h.logger, AuthRefresh, "", err)
	if err != nil {
		utilities.Fail(c, err)
		return
	}
	utilities.Success(c, http.StatusOK, pair)
}

// Logout revokes the refresh token. Access tokens stay valid until they expire.
// @Summary Log out
// @Description Revokes the given refresh token. Unknown tokens are accepted.
// @Tags Auth
// @Accept json
// @Produce json
// @Param Info body logoutInfo false "Refresh token"
// @Success 200 {object} utilities.MessageResponse
// @Router /auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	var info logoutInfo
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&info); err != nil {
			utilities.Fail(c, err)
			return
		}
	}

	if err := h.accounts.Logout(c.Request.Context(), info.RefreshToken); err != nil {
		utilities.Fail(c, err)
		return
	}
	utilities.Message(c, http.StatusOK, "successfully logged out")
}
