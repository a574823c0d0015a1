package account

import (
	"context"
	"errors"
	"log"
	"os"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"jobportal-backend/internal/access"
	"jobportal-backend/internal/apperror"
	"jobportal-backend/internal/config"
	"jobportal-backend/internal/credential"
	"jobportal-backend/internal/database"
	"jobportal-backend/internal/lifecycle"
	"jobportal-backend/internal/logger"
	"jobportal-backend/internal/mailer"
	"jobportal-backend/internal/model"
	"jobportal-backend/internal/storage"
)

var testDB *database.DBinstanceStruct

func TestMain(m *testing.M) {
	teardown, db, err := database.GetTestDB()
	if err != nil {
		log.Printf("could not start postgres container: %v", err)
		os.Exit(1)
	}
	testDB = db

	code := m.Run()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if teardown != nil {
		_ = teardown(ctx)
	}
	os.Exit(code)
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (f *fakeMailer) Send(_ context.Context, msg mailer.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeMailer) last(t *testing.T) mailer.Message {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent, "no email sent")
	return f.sent[len(f.sent)-1]
}

var (
	codePattern  = regexp.MustCompile(`<strong>(\d{6})</strong>`)
	tokenPattern = regexp.MustCompile(`token=([0-9a-f]+)`)
)

func (f *fakeMailer) lastCode(t *testing.T) string {
	t.Helper()
	m := codePattern.FindStringSubmatch(f.last(t).HTML)
	require.Len(t, m, 2, "verification email carries a code")
	return m[1]
}

func (f *fakeMailer) lastResetToken(t *testing.T) string {
	t.Helper()
	m := tokenPattern.FindStringSubmatch(f.last(t).HTML)
	require.Len(t, m, 2, "reset email carries a link")
	return m[1]
}

type fakeStore struct {
	mu       sync.Mutex
	prefixes []string
}

func (f *fakeStore) SignUpload(context.Context, storage.UploadRequest) (*storage.UploadAuthorization, error) {
	return nil, errors.New("not used")
}
func (f *fakeStore) SignDownload(context.Context, string, time.Duration) (string, error) {
	return "", errors.New("not used")
}
func (f *fakeStore) Exists(context.Context, string) (bool, error) { return false, nil }
func (f *fakeStore) Delete(context.Context, string) error         { return nil }
func (f *fakeStore) DeletePrefix(_ context.Context, prefix string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prefixes = append(f.prefixes, prefix)
	return nil
}

type harness struct {
	svc   *Service
	mail  *fakeMailer
	store *fakeStore
	creds *credential.Manager
}

func newHarness(t *testing.T, google GoogleProvider) *harness {
	t.Helper()
	cfg := config.Default()
	cfg.HTTP.PublicURL = "https://jobs.example.com/"

	creds := credential.NewManager(credential.Config{
		Secret:     "test-secret",
		Issuer:     "jobportal-test",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 24 * time.Hour,
		OTPTTL:     10 * time.Minute,
		ResetTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
	}, testDB.DB)
	h := &harness{mail: &fakeMailer{}, store: &fakeStore{}, creds: creds}
	h.svc = NewService(Deps{
		DB:          testDB.DB,
		Credentials: creds,
		Mail:        h.mail,
		Store:       h.store,
		Access:      access.NewResolver(testDB.DB),
		Google:      google,
		Logger:      logger.Discard(),
	}, cfg)
	return h
}

func uniqueEmail(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8] + "@Example.com"
}

func TestSignup_seekerGetsProfileAndCode(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	email := uniqueEmail("seeker")

	resp, err := h.svc.Signup(ctx, SignupInput{Email: email, Password: "password1", Role: model.RoleJobSeeker, FirstName: "Ann"})
	require.NoError(t, err)
	assert.Equal(t, normalizeEmail(email), resp.User.Email)
	assert.False(t, resp.User.EmailVerified)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)

	id, err := h.creds.ParseAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, id.UserID)
	assert.Equal(t, model.RoleJobSeeker, id.Role)

	var profile model.JobSeekerProfile
	require.NoError(t, testDB.First(&profile, "user_id = ?", resp.User.ID).Error)
	assert.True(t, profile.ProfileVisible)

	assert.Equal(t, normalizeEmail(email), h.mail.last(t).To)
	code := h.mail.lastCode(t)

	_, err = h.svc.VerifyEmail(ctx, email, "000000x")
	assert.ErrorIs(t, err, apperror.ErrInvalidCredential)

	user, err := h.svc.VerifyEmail(ctx, email, code)
	require.NoError(t, err)
	assert.True(t, user.EmailVerified)

	var left int64
	require.NoError(t, testDB.Model(&model.EmailVerification{}).Where("user_id = ?", user.ID).Count(&left).Error)
	assert.Zero(t, left)

	_, err = h.svc.VerifyEmail(ctx, email, code)
	assert.NoError(t, err, "verifying twice succeeds")
}

func TestSignup_rejections(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	_, err := h.svc.Signup(ctx, SignupInput{Email: database.TestSeekerUser1.Email, Password: "password1", Role: model.RoleJobSeeker})
	assert.ErrorIs(t, err, apperror.ErrAlreadyExists)

	_, err = h.svc.Signup(ctx, SignupInput{Email: uniqueEmail("admin"), Password: "password1", Role: model.RoleAdmin})
	assert.ErrorIs(t, err, apperror.ErrValidationFailed)

	_, err = h.svc.Signup(ctx, SignupInput{Email: uniqueEmail("short"), Password: "short", Role: model.RoleJobProvider})
	assert.ErrorIs(t, err, apperror.ErrValidationFailed)
}

func TestSignup_emailFailureKeepsAccount(t *testing.T) {
	h := newHarness(t, nil)
	h.mail.err = errors.New("smtp down")
	email := uniqueEmail("provider")

	resp, err := h.svc.Signup(context.Background(), SignupInput{Email: email, Password: "password1", Role: model.RoleJobProvider})
	assert.ErrorIs(t, err, apperror.ErrEmailDeliveryFailed)
	require.NotNil(t, resp)

	var n int64
	require.NoError(t, testDB.Model(&model.JobSeekerProfile{}).Where("user_id = ?", resp.User.ID).Count(&n).Error)
	assert.Zero(t, n, "providers have no seeker profile")
	require.NoError(t, testDB.Model(&model.User{}).Where("id = ?", resp.User.ID).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestResendVerification_invalidatesPreviousCode(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	email := uniqueEmail("resend")

	_, err := h.svc.Signup(ctx, SignupInput{Email: email, Password: "password1", Role: model.RoleJobSeeker})
	require.NoError(t, err)
	first := h.mail.lastCode(t)

	require.NoError(t, h.svc.ResendVerification(ctx, email))
	second := h.mail.lastCode(t)

	if first != second {
		_, err = h.svc.VerifyEmail(ctx, email, first)
		assert.ErrorIs(t, err, apperror.ErrInvalidCredential)
	}
	_, err = h.svc.VerifyEmail(ctx, email, second)
	assert.NoError(t, err)

	sent := len(h.mail.sent)
	assert.NoError(t, h.svc.ResendVerification(ctx, "nobody@example.com"))
	assert.NoError(t, h.svc.ResendVerification(ctx, email), "already verified")
	assert.Len(t, h.mail.sent, sent)
}

func TestLogin_uniformFailure(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	resp, err := h.svc.Login(ctx, "  "+database.TestSeekerUser1.Email+" ", database.TestSeedPassword)
	require.NoError(t, err)
	assert.Equal(t, database.TestSeekerUser1.ID, resp.User.ID)

	_, wrongPassword := h.svc.Login(ctx, database.TestSeekerUser1.Email, "not-the-password")
	_, unknownEmail := h.svc.Login(ctx, "ghost@example.com", database.TestSeedPassword)
	assert.ErrorIs(t, wrongPassword, apperror.ErrInvalidCredential)
	assert.ErrorIs(t, unknownEmail, apperror.ErrInvalidCredential)
	assert.Equal(t, apperror.Message(wrongPassword), apperror.Message(unknownEmail))
}

func TestRefreshRotationAndLogout(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	user, _, err := database.CreateTestUser(testDB, model.RoleJobProvider)
	require.NoError(t, err)

	login, err := h.svc.Login(ctx, user.Email, database.TestSeedPassword)
	require.NoError(t, err)

	pair, err := h.svc.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, pair.RefreshToken)
	assert.NotEmpty(t, pair.AccessToken)

	_, err = h.svc.Refresh(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, apperror.ErrInvalidCredential, "a rotated secret is spent")

	require.NoError(t, h.svc.Logout(ctx, pair.RefreshToken))
	require.NoError(t, h.svc.Logout(ctx, pair.RefreshToken))
	require.NoError(t, h.svc.Logout(ctx, "unknown-secret"))
	require.NoError(t, h.svc.Logout(ctx, ""))

	_, err = h.svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, apperror.ErrInvalidCredential)
}

func TestPasswordReset(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	user, _, err := database.CreateTestUser(testDB, model.RoleJobSeeker)
	require.NoError(t, err)
	session, err := h.svc.Login(ctx, user.Email, database.TestSeedPassword)
	require.NoError(t, err)

	require.NoError(t, h.svc.ForgotPassword(ctx, "unknown-"+user.Email))
	assert.Empty(t, h.mail.sent, "unknown emails send nothing")

	require.NoError(t, h.svc.ForgotPassword(ctx, user.Email))
	assert.Contains(t, h.mail.last(t).HTML, "https://jobs.example.com/reset-password?token=")
	token := h.mail.lastResetToken(t)

	assert.ErrorIs(t, h.svc.ResetPassword(ctx, token, "short"), apperror.ErrValidationFailed)
	require.NoError(t, h.svc.ResetPassword(ctx, token, "brand-new-pass"))
	assert.ErrorIs(t, h.svc.ResetPassword(ctx, token, "another-pass"), apperror.ErrInvalidOrExpiredToken)

	_, err = h.svc.Login(ctx, user.Email, database.TestSeedPassword)
	assert.ErrorIs(t, err, apperror.ErrInvalidCredential)
	_, err = h.svc.Login(ctx, user.Email, "brand-new-pass")
	assert.NoError(t, err)

	_, err = h.svc.Refresh(ctx, session.RefreshToken)
	assert.ErrorIs(t, err, apperror.ErrInvalidCredential, "reset ends existing sessions")
}

func TestForgotPassword_emailFailure(t *testing.T) {
	h := newHarness(t, nil)
	h.mail.err = errors.New("smtp down")
	user, _, err := database.CreateTestUser(testDB, model.RoleJobSeeker)
	require.NoError(t, err)

	err = h.svc.ForgotPassword(context.Background(), user.Email)
	assert.ErrorIs(t, err, apperror.ErrEmailDeliveryFailed)
}

func TestChangePassword(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	user, _, err := database.CreateTestUser(testDB, model.RoleJobProvider)
	require.NoError(t, err)

	err = h.svc.ChangePassword(ctx, user.ID, "wrong-password", "brand-new-pass")
	assert.ErrorIs(t, err, apperror.ErrInvalidCredential)
	err = h.svc.ChangePassword(ctx, user.ID, database.TestSeedPassword, "tiny")
	assert.ErrorIs(t, err, apperror.ErrValidationFailed)

	require.NoError(t, h.svc.ChangePassword(ctx, user.ID, database.TestSeedPassword, "brand-new-pass"))
	_, err = h.svc.Login(ctx, user.Email, "brand-new-pass")
	assert.NoError(t, err)
}

func TestDeleteAccount_removesDependentRows(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	seeker, profile, err := database.CreateTestUser(testDB, model.RoleJobSeeker)
	require.NoError(t, err)
	provider, _, err := database.CreateTestUser(testDB, model.RoleJobProvider)
	require.NoError(t, err)
	employer, err := database.CreateTestEmployer(testDB, provider.ID)
	require.NoError(t, err)
	job, err := database.CreateTestJob(testDB, employer.ID, model.JobPublished)
	require.NoError(t, err)
	resume, err := database.CreateTestResume(testDB, profile.ID)
	require.NoError(t, err)

	app := model.Application{JobID: job.ID, JobSeekerID: profile.ID, ResumeID: &resume.ID, Status: lifecycle.Applied}
	require.NoError(t, testDB.Create(&app).Error)
	require.NoError(t, testDB.Create(&model.ApplicationStatusEvent{
		ApplicationID: app.ID, Seq: 1, Status: app.Status, ByUserID: seeker.ID, At: time.Now(),
	}).Error)
	require.NoError(t, testDB.Create(&model.Notification{UserID: seeker.ID, Type: model.NotificationStatusChanged, Title: "t"}).Error)
	_, err = h.svc.Login(ctx, seeker.Email, database.TestSeedPassword)
	require.NoError(t, err)

	require.NoError(t, h.svc.DeleteAccount(ctx, seeker.ID))

	remaining := []struct {
		table string
		query string
		arg   interface{}
	}{
		{"users", "id = ?", seeker.ID},
		{"job_seeker_profiles", "user_id = ?", seeker.ID},
		{"refresh_tokens", "user_id = ?", seeker.ID},
		{"notifications", "user_id = ?", seeker.ID},
		{"resumes", "job_seeker_id = ?", profile.ID},
		{"applications", "job_seeker_id = ?", profile.ID},
		{"application_status_events", "application_id = ?", app.ID},
	}
	for _, r := range remaining {
		var n int64
		require.NoError(t, testDB.Table(r.table).Where(r.query, r.arg).Count(&n).Error, r.table)
		assert.Zero(t, n, r.table)
	}
	assert.Equal(t, []string{storage.SeekerPrefix(profile.ID.String())}, h.store.prefixes)

	var jobs int64
	require.NoError(t, testDB.Model(&model.Job{}).Where("id = ?", job.ID).Count(&jobs).Error)
	assert.EqualValues(t, 1, jobs, "the employer's job survives")

	assert.ErrorIs(t, h.svc.DeleteAccount(ctx, seeker.ID), apperror.ErrNotFoundOrForbidden)
}

func TestDeleteAccount_employerOwner(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	provider, _, err := database.CreateTestUser(testDB, model.RoleJobProvider)
	require.NoError(t, err)
	admin, _, err := database.CreateTestUser(testDB, model.RoleJobProvider)
	require.NoError(t, err)
	employer, err := database.CreateTestEmployer(testDB, provider.ID)
	require.NoError(t, err)
	require.NoError(t, testDB.Create(&model.EmployerAdmin{EmployerID: employer.ID, UserID: admin.ID}).Error)
	job, err := database.CreateTestJob(testDB, employer.ID, model.JobPublished)
	require.NoError(t, err)
	app := model.Application{JobID: job.ID, JobSeekerID: database.TestSeeker2.ID, Status: lifecycle.Applied}
	require.NoError(t, testDB.Create(&app).Error)

	require.NoError(t, h.svc.DeleteAccount(ctx, provider.ID))

	var n int64
	require.NoError(t, testDB.Model(&model.EmployerProfile{}).Where("id = ?", employer.ID).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, testDB.Model(&model.Job{}).Where("id = ?", job.ID).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, testDB.Model(&model.Application{}).Where("id = ?", app.ID).Count(&n).Error)
	assert.Zero(t, n, "applications to the deleted jobs go too")
	require.NoError(t, testDB.Model(&model.EmployerAdmin{}).Where("employer_id = ?", employer.ID).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, testDB.Model(&model.User{}).Where("id = ?", admin.ID).Count(&n).Error)
	assert.EqualValues(t, 1, n, "admins keep their accounts")
	assert.Empty(t, h.store.prefixes, "providers have no resume files")
}

func TestProfile(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	user, _, err := database.CreateTestUser(testDB, model.RoleJobSeeker)
	require.NoError(t, err)

	headline := "Backend engineer"
	hidden := false
	skills := []model.Skill{
		{Category: " Languages ", Work: "Go", Confidence: 90},
		{Category: "Databases", Work: "PostgreSQL", Confidence: 70},
	}
	profile, err := h.svc.UpdateProfile(ctx, user.ID, UpdateProfileInput{Headline: &headline, Skills: &skills, ProfileVisible: &hidden})
	require.NoError(t, err)
	assert.Equal(t, headline, profile.Headline)
	assert.False(t, profile.ProfileVisible)
	require.Len(t, profile.Skills, 2)
	assert.Equal(t, "Languages", profile.Skills[0].Category, "order and trimming are kept")
	assert.Equal(t, "PostgreSQL", profile.Skills[1].Work)
	require.NotNil(t, profile.User)
	assert.Equal(t, user.Email, profile.User.Email)

	location := "Bangkok"
	profile, err = h.svc.UpdateProfile(ctx, user.ID, UpdateProfileInput{Location: &location})
	require.NoError(t, err)
	assert.Equal(t, headline, profile.Headline, "absent fields are untouched")
	assert.Len(t, profile.Skills, 2)

	bad := []model.Skill{{Category: "Go", Work: "APIs", Confidence: 101}}
	_, err = h.svc.UpdateProfile(ctx, user.ID, UpdateProfileInput{Skills: &bad})
	assert.ErrorIs(t, err, apperror.ErrValidationFailed)

	_, err = h.svc.GetProfile(ctx, database.TestProviderUser1.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFoundOrForbidden)
}

func TestMe(t *testing.T) {
	h := newHarness(t, nil)
	user, err := h.svc.Me(context.Background(), database.TestAdminUser.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, user.Role)

	_, err = h.svc.Me(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFoundOrForbidden)
}
