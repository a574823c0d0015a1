package account

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"jobportal-backend/internal/apperror"
	"jobportal-backend/internal/config"
	"jobportal-backend/internal/database"
	"jobportal-backend/internal/model"
)

// GoogleProvider turns an authorization code into the signed-in Google account.
type GoogleProvider interface {
	UserInfo(ctx context.Context, code string) (*model.GoogleUserInfo, error)
}

// GoogleOAuth exchanges codes with an OAuth2 provider and reads its userinfo endpoint.
type GoogleOAuth struct {
	OauthConfig      *oauth2.Config
	UserInfoEndpoint string
}

// NewGoogleOAuth returns a provider for Google, or nil when no client id is configured.
func NewGoogleOAuth(cfg config.GoogleConfig) *GoogleOAuth {
	if cfg.ClientID == "" {
		return nil
	}
	return &GoogleOAuth{
		OauthConfig: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		UserInfoEndpoint: cfg.UserInfoURL,
	}
}

// UserInfo exchanges code for a token and fetches the account it belongs to.
func (g *GoogleOAuth) UserInfo(ctx context.Context, code string) (*model.GoogleUserInfo, error) {
	token, err := g.OauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	resp, err := g.OauthConfig.Client(ctx, token).Get(g.UserInfoEndpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch user info: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch user info: status %d", resp.StatusCode)
	}

	var info model.GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode user info: %w", err)
	}
	return &info, nil
}

// GoogleLogin signs in with a Google authorization code. An account linked to the Google id
// logs in; otherwise an account with the same verified email is linked; otherwise a new
// account with role is registered (JOBSEEKER when role is empty).
func (s *Service) GoogleLogin(ctx context.Context, code string, role model.Role) (*model.AuthResponse, error) {
	if s.google == nil {
		return nil, apperror.Validation("google sign-in is not configured")
	}
	if strings.TrimSpace(code) == "" {
		return nil, apperror.Validation("code is required")
	}
	if role == "" {
		role = model.RoleJobSeeker
	}
	if !signupRole(role) {
		return nil, apperror.Validation("role must be JOBSEEKER or JOBPROVIDER")
	}

	info, err := s.google.UserInfo(ctx, code)
	if err != nil {
		s.logger.Warn("google sign-in", "err", err)
		return nil, apperror.Wrap(apperror.KindInvalidCredential, err, "google sign-in failed")
	}
	email := normalizeEmail(info.Email)
	if info.ID == "" || email == "" {
		return nil, apperror.New(apperror.KindInvalidCredential, "google account has no id or email")
	}

	var resp *model.AuthResponse
	err = database.WithTx(ctx, s.db, func(tx *gorm.DB) error {
		user, err := s.googleUser(ctx, tx, info, email, role)
		if err != nil {
			return err
		}
		resp, err = s.authResponse(ctx, tx, *user)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *Service) googleUser(ctx context.Context, tx *gorm.DB, info *model.GoogleUserInfo, email string, role model.Role) (*model.User, error) {
	var user model.User
	err := tx.First(&user, "google_id = ?", info.ID).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	err = tx.First(&user, "email = ?", email).Error
	switch {
	case err == nil:
		if !info.VerifiedEmail {
			return nil, apperror.New(apperror.KindInvalidCredential, "google email is not verified")
		}
		if err := tx.Model(&user).Updates(map[string]interface{}{
			"google_id":      info.ID,
			"email_verified": true,
		}).Error; err != nil {
			return nil, database.TranslateError(err, "user")
		}
		return &user, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	user = model.User{
		Email:         email,
		GoogleID:      &info.ID,
		Role:          role,
		EmailVerified: info.VerifiedEmail,
		FirstName:     info.GivenName,
		LastName:      info.FamilyName,
	}
	if err := s.createUser(ctx, tx, &user); err != nil {
		return nil, err
	}
	s.logger.Info("registered google account", "user_id", user.ID, "role", role)
	return &user, nil
}
