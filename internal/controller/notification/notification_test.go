package notification

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobportal-backend/internal/credential"
	"jobportal-backend/internal/database"
	"jobportal-backend/internal/middleware"
	"jobportal-backend/internal/model"
	"jobportal-backend/internal/notify"
	"jobportal-backend/internal/testutil"
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

	code := m.Run()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if teardown != nil {
		_ = teardown(ctx)
	}
	os.Exit(code)
}

func setupRouter() (*gin.Engine, *notify.Store) {
	store := notify.NewStore(testDB.DB)
	nc := NewController(store)
	r := gin.New()
	g := r.Group("/notifications", middleware.RequireAuth(creds))
	g.GET("", nc.List)
	g.PATCH("/:id/read", nc.MarkRead)
	g.POST("/read-all", nc.MarkAllRead)
	return r, store
}

// seedInbox gives a fresh user n status updates, oldest first.
func seedInbox(t *testing.T, store *notify.Store, n int) (model.User, string) {
	t.Helper()
	user, _, err := database.CreateTestUser(testDB, model.RoleJobSeeker)
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		err := store.Deliver(context.Background(), notify.Event{
			Type:          model.NotificationStatusChanged,
			UserID:        user.ID,
			ApplicationID: uuid.New(),
			JobID:         database.TestJobPublished.ID,
			JobTitle:      database.TestJobPublished.Title,
			NewStatus:     "VIEWED",
		})
		require.NoError(t, err)
	}
	return user, testutil.AccessToken(t, creds, user)
}

func TestList(t *testing.T) {
	r, store := setupRouter()
	_, token := seedInbox(t, store, 3)

	rec, resp := testutil.MakeJSONRequest(nil, token, r, "/notifications", http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	items := testutil.Items(resp)
	require.Len(t, items, 3)
	first := items[0].(map[string]interface{})
	assert.Equal(t, "status_changed", first["type"])
	assert.Contains(t, first["body"], database.TestJobPublished.Title)
	assert.Equal(t, false, first["read"])

	rec, resp = testutil.MakeJSONRequest(nil, token, r, "/notifications?limit=2&page=2", http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, testutil.Items(resp), 1)
	assert.Equal(t, float64(3), testutil.Data(resp)["total"])
	assert.Equal(t, float64(2), testutil.Data(resp)["total_pages"])

	other := testutil.AccessToken(t, creds, database.TestOutsiderUser)
	rec, resp = testutil.MakeJSONRequest(nil, other, r, "/notifications?unread=true", http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code)
	for _, item := range testutil.Items(resp) {
		assert.Equal(t, database.TestOutsiderUser.ID.String(), item.(map[string]interface{})["user_id"])
	}

	rec, _ = testutil.MakeJSONRequest(nil, token, r, "/notifications?unread=maybe", http.MethodGet)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMarkRead(t *testing.T) {
	r, store := setupRouter()
	_, token := seedInbox(t, store, 2)

	_, resp := testutil.MakeJSONRequest(nil, token, r, "/notifications", http.MethodGet)
	id := testutil.Items(resp)[0].(map[string]interface{})["id"].(string)

	outsider := testutil.AccessToken(t, creds, database.TestOutsiderUser)
	rec, resp := testutil.MakeJSONRequest(nil, outsider, r, "/notifications/"+id+"/read", http.MethodPatch)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND_OR_FORBIDDEN", resp["code"])

	rec, _ = testutil.MakeJSONRequest(nil, token, r, "/notifications/"+id+"/read", http.MethodPatch)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, resp = testutil.MakeJSONRequest(nil, token, r, "/notifications?unread=true", http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code)
	unread := testutil.Items(resp)
	require.Len(t, unread, 1)
	assert.NotEqual(t, id, unread[0].(map[string]interface{})["id"])

	rec, _ = testutil.MakeJSONRequest(nil, token, r, "/notifications/"+uuid.NewString()+"/read", http.MethodPatch)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMarkAllRead(t *testing.T) {
	r, store := setupRouter()
	_, token := seedInbox(t, store, 4)

	rec, resp := testutil.MakeJSONRequest(nil, token, r, "/notifications/read-all", http.MethodPost)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(4), testutil.Data(resp)["updated"])

	rec, resp = testutil.MakeJSONRequest(nil, token, r, "/notifications/read-all", http.MethodPost)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), testutil.Data(resp)["updated"])

	_, resp = testutil.MakeJSONRequest(nil, token, r, "/notifications?unread=true", http.MethodGet)
	assert.Empty(t, testutil.Items(resp))
	assert.Equal(t, float64(0), testutil.Data(resp)["total"])
}
