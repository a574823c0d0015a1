package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"jobportal-backend/internal/apperror"
	"jobportal-backend/internal/service/account"
	"jobportal-backend/internal/utilities"
)

// Signup registers a local account and mails a verification code.
// @Summary Register with email and password
// @Description Creates a JOBSEEKER or JOBPROVIDER account, mails a 6 digit verification code and logs the user in.
// @Description If the code cannot be mailed the account still exists and is returned with EMAIL_DELIVERY_FAILED.
// @Tags Auth
// @Accept json
// @Produce json
// @Param Info body account.SignupInput true "role is JOBSEEKER or JOBPROVIDER"
// @Success 201 {object} utilities.Response{data=model.AuthResponse}
// @Failure 400 {object} utilities.ErrorResponse "Validation failed"
// @Failure 409 {object} utilities.ErrorResponse "Email already registered"
// @Failure 502 {object} utilities.Response{data=model.AuthResponse} "Account created but the email was not sent"
// @Router /auth/signup [post]
func (h *Handler) Signup(c *gin.Context) {
	var in account.SignupInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utilities.Fail(c, err)
		return
	}

	resp, err := h.accounts.Signup(c.Request.Context(), in)
	if err != nil {
		LogAuthAttempt(h.logger, AuthLocal, in.Email, err)
		if resp != nil && errors.Is(err, apperror.ErrEmailDeliveryFailed) {
			utilities.FailWithData(c, err, resp)
			return
		}
		utilities.Fail(c, err)
		return
	}
	LogAuthAttempt(h.logger, AuthLocal, resp.User.ID.String(), nil)
	utilities.Success(c, http.StatusCreated, resp)
}

// Login checks email and password and returns a token pair.
// @Summary Log in with email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param Info body loginInfo true "Credentials"
// @Success 200 {object} utilities.Response{data=model.AuthResponse}
// @Failure 400 {object} utilities.ErrorResponse
// @Failure 401 {object} utilities.ErrorResponse "Invalid email or password"
// @Router /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var info loginInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		utilities.Fail(c, err)
		return
	}

	resp, err := h.accounts.Login(c.Request.Context(), info.Email, info.Password)
	if err != nil {
		LogAuthAttempt(h.logger, AuthLocal, info.Email, err)
		utilities.Fail(c, err)
		return
	}
	LogAuthAttempt(h.logger, AuthLocal, resp.User.ID.String(), nil)
	utilities.Success(c, http.StatusOK, resp)
}

// VerifyEmail marks the address verified when the code matches.
// @Summary Verify email address
// @Tags Auth
// @Accept json
// @Produce json
// @Param Info body verifyInfo true "Email and 6 digit code"
// @Success 200 {object} utilities.Response{data=model.User}
// @Failure 400 {object} utilities.ErrorResponse
// @Failure 401 {object} utilities.ErrorResponse "Invalid or expired code"
// @Router /auth/verify-email [post]
func (h *Handler) VerifyEmail(c *gin.Context) {
	var info verifyInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		utilities.Fail(c, err)
		return
	}

	user, err := h.accounts.VerifyEmail(c.Request.Context(), info.Email, info.Code)
	if err != nil {
		utilities.Fail(c, err)
		return
	}
	utilities.Success(c, http.StatusOK, user)
}

// ResendVerification mails a fresh verification code.
// @Summary Resend the verification code
// @Description Always succeeds for unknown or already verified addresses.
// @Tags Auth
// @Accept json
// @Produce json
// @Param Info body emailInfo true "Email"
// @Success 200 {object} utilities.MessageResponse
// @Failure 400 {object} utilities.ErrorResponse
// @Failure 502 {object} utilities.ErrorResponse "Email could not be sent"
// @Router /auth/resend-verification [post]
func (h *Handler) ResendVerification(c *gin.Context) {
	var info emailInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		utilities.Fail(c, err)
		return
	}

	if err := h.accounts.ResendVerification(c.Request.Context(), info.Email); err != nil {
		utilities.Fail(c, err)
		return
	}
	utilities.Message(c, http.StatusOK, "if the address needs verification a new code has been sent")
}
