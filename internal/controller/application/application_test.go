package application

import (
	"context"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobportal-backend/internal/access"
	"jobportal-backend/internal/credential"
	"jobportal-backend/internal/database"
	"jobportal-backend/internal/logger"
	"jobportal-backend/internal/middleware"
	"jobportal-backend/internal/model"
	"jobportal-backend/internal/notify"
	"jobportal-backend/internal/service/application"
	"jobportal-backend/internal/testutil"
	"jobportal-backend/internal/utilities"
)

var (
	testDB *database.DBinstanceStruct
	creds  *credential.Manager
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	teardown, db, err := database.GetTestDB()
	if err != nil {
		os.Exit(1)
	}
	testDB = db
	creds = testutil.NewCredentials(nil)
	if err := utilities.RegisterValidators(); err != nil {
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

type recorder struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recorder) Notify(ev notify.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) last(t *testing.T) notify.Event {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.events)
	return r.events[len(r.events)-1]
}

func setupRouter() (*gin.Engine, *recorder) {
	rec := &recorder{}
	ac := NewController(application.NewService(testDB.DB, access.NewResolver(testDB.DB), rec, logger.Discard()))
	r := gin.New()
	g := r.Group("", middleware.RequireAuth(creds))
	g.POST("/jobs/:id/apply", middleware.CheckRole(model.RoleJobSeeker), ac.Apply)
	g.GET("/jobs/:id/applications", ac.ListForJob)
	g.GET("/applications/mine", ac.ListMine)
	g.GET("/applications/:id", ac.Get)
	g.PATCH("/applications/:id/status", ac.Transition)
	return r, rec
}

func newSeeker(t *testing.T) (model.User, string) {
	t.Helper()
	user, _, err := database.CreateTestUser(testDB, model.RoleJobSeeker)
	require.NoError(t, err)
	return user, testutil.AccessToken(t, creds, user)
}

func newPublishedJob(t *testing.T) model.Job {
	t.Helper()
	j, err := database.CreateTestJob(testDB, database.TestEmployer1.ID, model.JobPublished)
	require.NoError(t, err)
	return j
}

func TestApply(t *testing.T) {
	r, events := setupRouter()
	_, token := newSeeker(t)
	j := newPublishedJob(t)
	path := "/jobs/" + j.ID.String() + "/apply"

	req := map[string]string{"cover_letter": "  I would love to join.  "}
	rec, resp := testutil.MakeJSONRequest(req, token, r, path, http.MethodPost)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	data := testutil.Data(resp)
	assert.Equal(t, "APPLIED", data["status"])
	assert.Equal(t, "I would love to join.", data["cover_letter"])
	history := data["status_history"].([]interface{})
	require.Len(t, history, 1)
	assert.Equal(t, float64(1), history[0].(map[string]interface{})["seq"])

	ev := events.last(t)
	assert.Equal(t, model.NotificationApplicationReceived, ev.Type)
	assert.Equal(t, database.TestProviderUser1.ID, ev.UserID)

	rec, resp = testutil.MakeJSONRequest(req, token, r, path, http.MethodPost)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "DUPLICATE_ENTRY", resp["code"])
}

func TestApply_rejections(t *testing.T) {
	r, _ := setupRouter()
	_, token := newSeeker(t)

	for _, j := range []model.Job{database.TestJobDraft, database.TestJobExpired} {
		rec, resp := testutil.MakeJSONRequest(nil, token, r, "/jobs/"+j.ID.String()+"/apply", http.MethodPost)
		assert.Equal(t, http.StatusNotFound, rec.Code, j.Title)
		assert.Equal(t, "NOT_FOUND_OR_FORBIDDEN", resp["code"])
	}

	j := newPublishedJob(t)
	path := "/jobs/" + j.ID.String() + "/apply"
	rec, _ := testutil.MakeJSONRequest(map[string]string{"resume_id": database.TestResume1.ID.String()}, token, r, path, http.MethodPost)
	assert.Equal(t, http.StatusNotFound, rec.Code, "someone else's resume")

	providerToken := testutil.AccessToken(t, creds, database.TestProviderUser2)
	rec, _ = testutil.MakeJSONRequest(nil, providerToken, r, path, http.MethodPost)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestApply_withResumeAndIdempotencyKey(t *testing.T) {
	r, _ := setupRouter()
	j := newPublishedJob(t)
	token := testutil.AccessToken(t, creds, database.TestSeekerUser1)

	rec, _ := testutil.MakeJSONRequest(map[string]string{"resume_id": database.TestResume1.ID.String()}, "", r, "/jobs/"+j.ID.String()+"/apply", http.MethodPost)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	body := map[string]string{"resume_id": database.TestResume1.ID.String()}
	req := testutil.NewJSONRequest(t, http.MethodPost, "/jobs/"+j.ID.String()+"/apply", body, token)
	req.Header.Set("Idempotency-Key", " key-123 ")
	rec, resp := testutil.Serve(r, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	data := testutil.Data(resp)
	assert.Equal(t, database.TestResume1.ID.String(), data["resume_id"])
	assert.Equal(t, "key-123", data["idempotency_key"])
}

func TestTransitionFlow(t *testing.T) {
	r, events := setupRouter()
	seeker, seekerToken := newSeeker(t)
	j := newPublishedJob(t)
	_, resp := testutil.MakeJSONRequest(nil, seekerToken, r, "/jobs/"+j.ID.String()+"/apply", http.MethodPost)
	appID := testutil.Data(resp)["id"].(string)
	path := "/applications/" + appID + "/status"

	adminToken := testutil.AccessToken(t, creds, database.TestEmployerAdminUser)

	rec, _ := testutil.MakeJSONRequest(map[string]string{"status": "VIEWED"}, seekerToken, r, path, http.MethodPatch)
	assert.Equal(t, http.StatusNotFound, rec.Code, "applicants cannot move their own application")

	rec, _ = testutil.MakeJSONRequest(map[string]string{"status": "VIEWED"}, testutil.AccessToken(t, creds, database.TestProviderUser2), r, path, http.MethodPatch)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, resp = testutil.MakeJSONRequest(map[string]string{"status": "HIRED"}, adminToken, r, path, http.MethodPatch)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "INVALID_TRANSITION", resp["code"])

	rec, resp = testutil.MakeJSONRequest(map[string]string{"status": "PENDING"}, adminToken, r, path, http.MethodPatch)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", resp["code"])

	for _, status := range []string{"VIEWED", "SHORTLISTED", "INTERVIEW_SCHEDULED"} {
		rec, resp = testutil.MakeJSONRequest(map[string]string{"status": status, "note": "moving on"}, adminToken, r, path, http.MethodPatch)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, status, testutil.Data(resp)["status"])
	}
	ev := events.last(t)
	assert.Equal(t, model.NotificationStatusChanged, ev.Type)
	assert.Equal(t, seeker.ID, ev.UserID)

	rec, resp = testutil.MakeJSONRequest(map[string]string{"status": "REJECTED"}, adminToken, r, path, http.MethodPatch)
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = testutil.MakeJSONRequest(map[string]string{"status": "OFFERED"}, adminToken, r, path, http.MethodPatch)
	assert.Equal(t, http.StatusConflict, rec.Code, "REJECTED is terminal")

	rec, resp = testutil.MakeJSONRequest(nil, seekerToken, r, "/applications/"+appID, http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code)
	data := testutil.Data(resp)
	assert.Equal(t, "REJECTED", data["status"])
	history := data["status_history"].([]interface{})
	require.Len(t, history, 5)
	last := history[len(history)-1].(map[string]interface{})
	assert.Equal(t, "REJECTED", last["status"])
	assert.Equal(t, float64(5), last["seq"])
}

func TestGetAndListings(t *testing.T) {
	r, _ := setupRouter()
	_, seekerToken := newSeeker(t)
	j := newPublishedJob(t)
	_, resp := testutil.MakeJSONRequest(nil, seekerToken, r, "/jobs/"+j.ID.String()+"/apply", http.MethodPost)
	appID := testutil.Data(resp)["id"].(string)

	rec, _ := testutil.MakeJSONRequest(nil, testutil.AccessToken(t, creds, database.TestOutsiderUser), r, "/applications/"+appID, http.MethodGet)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec, _ = testutil.MakeJSONRequest(nil, testutil.AccessToken(t, creds, database.TestProviderUser1), r, "/applications/"+appID, http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, resp = testutil.MakeJSONRequest(nil, seekerToken, r, "/applications/mine", http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code)
	items := testutil.Items(resp)
	require.Len(t, items, 1)
	assert.Equal(t, appID, items[0].(map[string]interface{})["id"])

	rec, _ = testutil.MakeJSONRequest(nil, testutil.AccessToken(t, creds, database.TestProviderUser1), r, "/applications/mine", http.MethodGet)
	assert.Equal(t, http.StatusNotFound, rec.Code, "providers have no seeker profile")

	jobApps := "/jobs/" + j.ID.String() + "/applications"
	rec, resp = testutil.MakeJSONRequest(nil, testutil.AccessToken(t, creds, database.TestEmployerAdminUser), r, jobApps, http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, testutil.Items(resp), 1)

	rec, resp = testutil.MakeJSONRequest(nil, testutil.AccessToken(t, creds, database.TestEmployerAdminUser), r, jobApps+"?status=HIRED", http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, testutil.Items(resp))

	rec, _ = testutil.MakeJSONRequest(nil, seekerToken, r, jobApps, http.MethodGet)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
