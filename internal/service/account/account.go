// Package account handles identities: signup, login, session tokens, email verification,
// password recovery, Google sign-in, account deletion and the job seeker profile.
package account

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"jobportal-backend/internal/access"
	"jobportal-backend/internal/apperror"
	"jobportal-backend/internal/cache"
	"jobportal-backend/internal/config"
	"jobportal-backend/internal/credential"
	"jobportal-backend/internal/database"
	"jobportal-backend/internal/mailer"
	"jobportal-backend/internal/model"
	"jobportal-backend/internal/storage"
)

const (
	minPasswordLen = 8
	// bcrypt ignores everything past 72 bytes.
	maxPasswordLen = 72
)

// Deps are the collaborators of a Service. Google and Jobs are optional.
type Deps struct {
	DB          *gorm.DB
	Credentials *credential.Manager
	Mail        mailer.Sender
	Store       storage.ObjectStore
	Access      *access.Resolver
	Google      GoogleProvider
	Jobs        cache.JobCache
	Logger      *slog.Logger
}

// Service implements the account operations.
type Service struct {
	db        *gorm.DB
	creds     *credential.Manager
	mail      mailer.Sender
	store     storage.ObjectStore
	access    *access.Resolver
	google    GoogleProvider
	jobs      cache.JobCache
	logger    *slog.Logger
	publicURL string
	otpTTL    time.Duration
	resetTTL  time.Duration
}

// NewService builds a Service from deps and the HTTP and Auth sections of cfg.
func NewService(deps Deps, cfg config.Config) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	jobs := deps.Jobs
	if jobs == nil {
		jobs = cache.NopJobCache{}
	}
	return &Service{
		db:        deps.DB,
		creds:     deps.Credentials,
		mail:      deps.Mail,
		store:     deps.Store,
		access:    deps.Access,
		google:    deps.Google,
		jobs:      jobs,
		logger:    logger.With("component", "account"),
		publicURL: strings.TrimRight(cfg.HTTP.PublicURL, "/"),
		otpTTL:    cfg.Auth.OTPTTL,
		resetTTL:  cfg.Auth.ResetTTL,
	}
}

// SignupInput is the body of a local signup.
type SignupInput struct {
	Email     string     `json:"email" binding:"required,email,max=254"`
	Password  string     `json:"password" binding:"required,min=8,max=72"`
	Role      model.Role `json:"role" binding:"required,oneof=JOBSEEKER JOBPROVIDER"`
	FirstName string     `json:"first_name" binding:"max=100"`
	LastName  string     `json:"last_name" binding:"max=100"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func checkPassword(password string) error {
	if len(password) < minPasswordLen {
		return apperror.Validation("password must be at least %d characters", minPasswordLen)
	}
	if len(password) > maxPasswordLen {
		return apperror.Validation("password must be at most %d bytes", maxPasswordLen)
	}
	return nil
}

func signupRole(role model.Role) bool {
	return role == model.RoleJobSeeker || role == model.RoleJobProvider
}

// Signup registers a local account, sends its verification code and logs it in.
// When the email cannot be sent the account still exists: the response is returned
// together with an EmailDeliveryFailed error.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*model.AuthResponse, error) {
	email := normalizeEmail(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperror.Validation("a valid email is required")
	}
	if !signupRole(in.Role) {
		return nil, apperror.Validation("role must be JOBSEEKER or JOBPROVIDER")
	}
	if err := checkPassword(in.Password); err != nil {
		return nil, err
	}
	hash, err := s.creds.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := model.User{
		Email:        email,
		PasswordHash: &hash,
		Role:         in.Role,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
	}
	var (
		resp *model.AuthResponse
		code string
	)
	err = database.WithTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := s.createUser(ctx, tx, &user); err != nil {
			return err
		}
		var err error
		if code, err = s.creds.IssueEmailOTP(ctx, tx, user.ID); err != nil {
			return err
		}
		resp, err = s.authResponse(ctx, tx, user)
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := s.sendVerification(ctx, user, code); err != nil {
		return resp, err
	}
	return resp, nil
}

// createUser inserts user and, for job seekers, an empty visible profile.
func (s *Service) createUser(ctx context.Context, tx *gorm.DB, user *model.User) error {
	var taken int64
	if err := tx.WithContext(ctx).Model(&model.User{}).Where("email = ?", user.Email).Count(&taken).Error; err != nil {
		return err
	}
	if taken > 0 {
		return apperror.New(apperror.KindAlreadyExists, "email is already registered")
	}
	if err := tx.WithContext(ctx).Create(user).Error; err != nil {
		if database.IsUniqueViolation(err, "users_email_key") {
			return apperror.Wrap(apperror.KindAlreadyExists, err, "email is already registered")
		}
		return database.TranslateError(err, "user")
	}
	if user.Role != model.RoleJobSeeker {
		return nil
	}
	profile := model.JobSeekerProfile{
		UserID:             user.ID,
		EditableSeekerInfo: model.EditableSeekerInfo{ProfileVisible: true},
	}
	return database.TranslateError(tx.WithContext(ctx).Create(&profile).Error, "job seeker profile")
}

// authResponse issues a token pair for user. db may be a transaction or nil.
func (s *Service) authResponse(ctx context.Context, db *gorm.DB, user model.User) (*model.AuthResponse, error) {
	pair, err := s.tokenPair(ctx, db, user)
	if err != nil {
		return nil, err
	}
	return &model.AuthResponse{User: user, TokenPair: pair}, nil
}

func (s *Service) tokenPair(ctx context.Context, db *gorm.DB, user model.User) (model.TokenPair, error) {
	token, expiresAt, err := s.creds.IssueAccessToken(credential.Identity{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
	if err != nil {
		return model.TokenPair{}, err
	}
	refresh, err := s.creds.IssueRefreshToken(ctx, db, user.ID)
	if err != nil {
		return model.TokenPair{}, err
	}
	return model.TokenPair{AccessToken: token, AccessExpiresAt: expiresAt, RefreshToken: refresh}, nil
}

func (s *Service) sendVerification(ctx context.Context, user model.User, code string) error {
	msg, err := mailer.VerificationMessage(user.Email, mailer.TemplateData{
		Name: user.FirstName,
		Code: code,
		TTL:  s.otpTTL.String(),
	})
	if err != nil {
		return err
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		s.logger.Error("send verification email", "user_id", user.ID, "err", err)
		return apperror.Wrap(apperror.KindEmailDeliveryFailed, err, "could not send the verification email")
	}
	return nil
}

func (s *Service) findByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).First(&user, "email = ?", normalizeEmail(email)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ResendVerification issues a new code and mails it. Unknown and already verified
// addresses succeed silently.
func (s *Service) ResendVerification(ctx context.Context, email string) error {
	user, err := s.findByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil || user.EmailVerified {
		return nil
	}
	code, err := s.creds.IssueEmailOTP(ctx, nil, user.ID)
	if err != nil {
		return err
	}
	return s.sendVerification(ctx, *user, code)
}

// VerifyEmail checks code and marks the address verified. Verifying twice succeeds.
func (s *Service) VerifyEmail(ctx context.Context, email, code string) (*model.User, error) {
	user, err := s.findByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.New(apperror.KindInvalidCredential, "invalid or expired verification code")
	}
	if user.EmailVerified {
		return user, nil
	}
	if err := s.creds.VerifyEmailOTP(ctx, user.ID, code); err != nil {
		return nil, err
	}

	err = database.WithTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.Model(user).Update("email_verified", true).Error; err != nil {
			return err
		}
		return s.creds.ClearEmailOTPs(ctx, tx, user.ID)
	})
	if err != nil {
		return nil, err
	}
	user.EmailVerified = true
	return user, nil
}

// Login checks a password. Unknown emails, Google-only accounts and wrong passwords fail alike.
func (s *Service) Login(ctx context.Context, email, password string) (*model.AuthResponse, error) {
	invalid := apperror.New(apperror.KindInvalidCredential, "invalid email or password")

	user, err := s.findByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.HasPassword() || !s.creds.VerifyPassword(password, *user.PasswordHash) {
		return nil, invalid
	}
	return s.authResponse(ctx, nil, *user)
}

// Refresh rotates a refresh secret and returns a new pair. The presented secret stops working.
func (s *Service) Refresh(ctx context.Context, refreshSecret string) (*model.TokenPair, error) {
	userID, secret, err := s.creds.RotateRefreshToken(ctx, refreshSecret)
	if err != nil {
		return nil, err
	}
	user, err := s.Me(ctx, userID)
	if err != nil {
		return nil, apperror.New(apperror.KindInvalidCredential, "invalid refresh token")
	}
	token, expiresAt, err := s.creds.IssueAccessToken(credential.Identity{UserID: user.ID, Email: user.Email, Role: user.Role})
	if err != nil {
		return nil, err
	}
	return &model.TokenPair{AccessToken: token, AccessExpiresAt: expiresAt, RefreshToken: secret}, nil
}

// Logout revokes a refresh secret. Unknown or already revoked secrets are not an error.
func (s *Service) Logout(ctx context.Context, refreshSecret string) error {
	if refreshSecret == "" {
		return nil
	}
	return s.creds.RevokeRefreshToken(ctx, refreshSecret)
}

// ForgotPassword mails a single-use reset link. Unknown addresses succeed without sending anything.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.findByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		s.logger.Debug("password reset for unknown email")
		return nil
	}

	secret, err := s.creds.IssuePasswordResetToken(ctx, nil, user.ID)
	if err != nil {
		return err
	}
	msg, err := mailer.PasswordResetMessage(user.Email, mailer.TemplateData{
		Name: user.FirstName,
		Link: s.publicURL + "/reset-password?token=" + url.QueryEscape(secret),
		TTL:  s.resetTTL.String(),
	})
	if err != nil {
		return err
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		s.logger.Error("send password reset email", "user_id", user.ID, "err", err)
		return apperror.Wrap(apperror.KindEmailDeliveryFailed, err, "could not send the password reset email")
	}
	return nil
}

// ResetPassword consumes secret, sets the new password and ends every session of the user.
func (s *Service) ResetPassword(ctx context.Context, secret, newPassword string) error {
	if err := checkPassword(newPassword); err != nil {
		return err
	}
	hash, err := s.creds.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return database.WithTx(ctx, s.db, func(tx *gorm.DB) error {
		userID, err := s.creds.ConsumePasswordResetToken(ctx, tx, secret)
		if err != nil {
			return err
		}
		if err := tx.Model(&model.User{}).Where("id = ?", userID).Update("password_hash", hash).Error; err != nil {
			return err
		}
		return s.creds.RevokeAllRefreshTokens(ctx, tx, userID)
	})
}

// ChangePassword replaces the password after checking the current one and revokes all refresh tokens.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, current, newPassword string) error {
	user, err := s.Me(ctx, userID)
	if err != nil {
		return err
	}
	if !user.HasPassword() || !s.creds.VerifyPassword(current, *user.PasswordHash) {
		return apperror.New(apperror.KindInvalidCredential, "current password is incorrect")
	}
	if err := checkPassword(newPassword); err != nil {
		return err
	}
	hash, err := s.creds.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return database.WithTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.Model(user).Update("password_hash", hash).Error; err != nil {
			return err
		}
		return s.creds.RevokeAllRefreshTokens(ctx, tx, user.ID)
	})
}

// Me returns the caller's account.
func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, database.TranslateError(err, "user")
	}
	return &user, nil
}
