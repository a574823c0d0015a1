// Package auth holds the HTTP handlers for /auth: local and Google sign-in, session tokens,
// email verification, password recovery and account management.
package auth

import (
	"log/slog"

	"jobportal-backend/internal/model"
	"jobportal-backend/internal/service/account"
)

// Handler serves the /auth endpoints on top of the account service.
type Handler struct {
	accounts *account.Service
	logger   *slog.Logger
}

// NewHandler creates a Handler. Auth attempts are logged on logger.
func NewHandler(accounts *account.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		accounts: accounts,
		logger:   logger.With("component", "auth"),
	}
}

type loginInfo struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshInfo struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type logoutInfo struct {
	RefreshToken string `json:"refresh_token"`
}

type emailInfo struct {
	Email string `json:"email" binding:"required,email"`
}

type verifyInfo struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6,numeric"`
}

type resetInfo struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

type changePasswordInfo struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

type googleInfo struct {
	Code string     `json:"code" binding:"required"`
	Role model.Role `json:"role" binding:"omitempty,oneof=JOBSEEKER JOBPROVIDER"`
}
