package testutil

import (
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"jobportal-backend/internal/credential"
	"jobportal-backend/internal/model"
)

// NewCredentials returns a token manager with short test settings. db may be nil when
// only access tokens are needed.
func NewCredentials(db *gorm.DB) *credential.Manager {
	return credential.NewManager(credential.Config{
		Secret:     "handler-test-secret",
		Issuer:     "jobportal-test",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: time.Hour,
		OTPTTL:     10 * time.Minute,
		ResetTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
	}, db)
}

// AccessToken issues an access token for user.
func AccessToken(t *testing.T, creds *credential.Manager, user model.User) string {
	t.Helper()
	token, _, err := creds.IssueAccessToken(credential.Identity{UserID: user.ID, Email: user.Email, Role: user.Role})
	if err != nil {
		t.Fatalf("issue access token: %v", err)
	}
	return token
}
