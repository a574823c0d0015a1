package auth

import (
	"log/slog"
)

// Auth types recorded by LogAuthAttempt.
const (
	AuthLocal   = "Local"
	AuthGoogle  = "Google"
	AuthRefresh = "Refresh"
	AuthReset   = "Reset"
)

// LogAuthAttempt records one authentication attempt on the auth logger.
// identifier is an email or user id and may be empty; err is nil on success.
func LogAuthAttempt(logger *slog.Logger, authType, identifier string, err error) {
	attrs := []any{"auth_type", authType}
	if identifier != "" {
		attrs = append(attrs, "identifier", identifier)
	}
	if err != nil {
		logger.Warn("auth attempt failed", append(attrs, "error", err)...)
		return
	}
	logger.Info("auth attempt succeeded", attrs...)
}
