package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"jobportal-backend/internal/access"
	"jobportal-backend/internal/cache"
	"jobportal-backend/internal/config"
	"jobportal-backend/internal/database"
	"jobportal-backend/internal/logger"
	"jobportal-backend/internal/mailer"
	"jobportal-backend/internal/notify"
	"jobportal-backend/internal/service/account"
	"jobportal-backend/internal/service/application"
	"jobportal-backend/internal/service/job"
	"jobportal-backend/internal/service/resume"
	"jobportal-backend/internal/storage"
	"jobportal-backend/internal/testutil"
	"jobportal-backend/internal/utilities"
)

var testDB *database.DBinstanceStruct

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	teardown, db, err := database.GetTestDB()
	if err != nil {
		log.Printf("could not start postgres container: %v", err)
		os.Exit(1)
	}
	testDB = db
	if err := utilities.RegisterValidators(); err != nil {
		log.Printf("register validators: %v", err)
		os.Exit(1)
	}

	code := m.Run()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if teardown != nil {
		_ = teardown(ctx)
	}
	os.Exit(code)
}

type offlineStore struct{}

func (offlineStore) SignUpload(context.Context, storage.UploadRequest) (*storage.UploadAuthorization, error) {
	return nil, errors.New("offline")
}
func (offlineStore) SignDownload(context.Context, string, time.Duration) (string, error) {
	return "", errors.New("offline")
}
func (offlineStore) Exists(context.Context, string) (bool, error) { return false, nil }
func (offlineStore) Delete(context.Context, string) error         { return nil }
func (offlineStore) DeletePrefix(context.Context, string) error   { return nil }

// newTestServer wires MyServer the way New does, minus the external backends.
func newTestServer(t *testing.T, cfg config.Config) http.Handler {
	t.Helper()
	l := logger.Discard()
	resolver := access.NewResolver(testDB.DB)
	s := &MyServer{
		cfg:    cfg,
		logger: l,
		DB:     testDB,
		store:  offlineStore{},
		creds:  testutil.NewCredentials(testDB.DB),
		inbox:  notify.NewStore(testDB.DB),
	}
	s.dispatcher = notify.NewDispatcher(l, 0, s.inbox)
	s.dispatcher.Start()
	t.Cleanup(func() { _ = s.dispatcher.Close(context.Background()) })

	s.accounts = account.NewService(account.Deps{
		DB:          testDB.DB,
		Credentials: s.creds,
		Mail:        mailer.New(cfg.Mail, l),
		Store:       s.store,
		Access:      resolver,
		Logger:      l,
	}, cfg)
	s.jobs = job.NewService(testDB.DB, resolver, cache.NopJobCache{}, l)
	s.applications = application.NewService(testDB.DB, resolver, s.dispatcher, l)
	s.resumes = resume.NewService(testDB.DB, resolver, s.store, cfg.Resume, l)
	return s.RegisterRoutes()
}

func get(h http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRegisterRoutes(t *testing.T) {
	cfg := config.Default()
	cfg.RateLimit.RequestsPerSecond = 1000
	h := newTestServer(t, cfg)

	rec := get(h, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"up"`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	assert.Equal(t, http.StatusOK, get(h, "/api/v1/jobs/search", "").Code)
	assert.Equal(t, http.StatusOK, get(h, "/api/v1/jobs/"+database.TestJobPublished.Slug, "").Code)
	assert.Equal(t, http.StatusOK, get(h, "/api/v1/employers/"+database.TestEmployer1.ID.String(), "").Code)

	for _, path := range []string{"/api/v1/jobs/mine", "/api/v1/applications/mine", "/api/v1/resumes", "/api/v1/notifications", "/api/v1/auth/me"} {
		assert.Equal(t, http.StatusUnauthorized, get(h, path, "").Code, path)
	}

	creds := testutil.NewCredentials(testDB.DB)
	seeker := testutil.AccessToken(t, creds, database.TestSeekerUser1)
	provider := testutil.AccessToken(t, creds, database.TestProviderUser1)
	assert.Equal(t, http.StatusOK, get(h, "/api/v1/seekers/me", seeker).Code)
	assert.Equal(t, http.StatusForbidden, get(h, "/api/v1/seekers/me", provider).Code)
	assert.Equal(t, http.StatusOK, get(h, "/api/v1/jobs/mine", provider).Code)

	assert.Equal(t, http.StatusOK, get(h, "/swagger/doc.json", "").Code)
	assert.Equal(t, http.StatusNotFound, get(h, "/api/v1/nothing-here", "").Code)
}

func TestRegisterRoutes_authLimiter(t *testing.T) {
	cfg := config.Default()
	cfg.RateLimit.RequestsPerSecond = 1000
	cfg.RateLimit.AuthPerMinute = 2
	h := newTestServer(t, cfg)

	login := func() *httptest.ResponseRecorder {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
			"email": "nobody@example.com", "password": "wrong-password",
		}, "")
		rec, _ := testutil.Serve(h.(*gin.Engine), req)
		return rec
	}
	assert.Equal(t, http.StatusUnauthorized, login().Code)
	assert.Equal(t, http.StatusUnauthorized, login().Code)

	rec := login()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"RATE_LIMITED"`)
}
