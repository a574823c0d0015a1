package utilities

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobportal-backend/internal/apperror"
	"jobportal-backend/internal/credential"
	"jobportal-backend/internal/lifecycle"
	"jobportal-backend/internal/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestFail_mapsKinds(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
		msg    string
	}{
		{apperror.NotFoundOrForbidden("job"), http.StatusNotFound, "NOT_FOUND_OR_FORBIDDEN", "job not found or access denied"},
		{apperror.New(apperror.KindInvalidTransition, "cannot go back"), http.StatusConflict, "INVALID_TRANSITION", "cannot go back"},
		{apperror.New(apperror.KindRateLimited, "slow down"), http.StatusTooManyRequests, "RATE_LIMITED", "slow down"},
		{errors.New("pq: connection refused"), http.StatusInternalServerError, "INTERNAL", "internal server error"},
		{&http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge, "VALIDATION_FAILED", "request body too large"},
	}
	for _, tc := range cases {
		rec, resp, err := SimulateAPICall(func(c *gin.Context) { Fail(c, tc.err) }, "/", http.MethodGet, nil)
		require.NoError(t, err)
		assert.Equal(t, tc.status, rec.Code, tc.code)
		assert.Equal(t, StatusError, resp.Status)
		assert.Equal(t, tc.code, resp.Code)
		assert.Equal(t, tc.msg, resp.Message)
	}
}

type bindTarget struct {
	Title   string           `json:"title" binding:"required,min=3"`
	JobType model.JobType    `json:"job_type" binding:"omitempty,jobtype"`
	Status  lifecycle.Status `json:"status" binding:"omitempty,appstatus"`
	Secret  string           `json:"-"`
}

func bindAndFail(body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	var dst bindTarget
	if err := c.ShouldBindJSON(&dst); err != nil {
		Fail(c, err)
		return rec
	}
	Success(c, http.StatusOK, dst)
	return rec
}

func TestFail_bindingErrors(t *testing.T) {
	require.NoError(t, RegisterValidators())

	rec := bindAndFail(`{"title":"ab","job_type":"GIG","status":"REVIEWING"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "VALIDATION_FAILED")
	assert.Contains(t, body, "title must be at least 3")
	assert.Contains(t, body, "job_type has an unknown value GIG")
	assert.Contains(t, body, "status has an unknown value REVIEWING")

	rec = bindAndFail(`{"title":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "not valid JSON")

	rec = bindAndFail(`{"title":42}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "wrong type")

	rec = bindAndFail(`{"title":"Backend engineer","job_type":"FULL_TIME","status":"VIEWED"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestFailWithData(t *testing.T) {
	rec, resp, err := SimulateAPICall(func(c *gin.Context) {
		FailWithData(c, apperror.New(apperror.KindEmailDeliveryFailed, "mail down"), gin.H{"id": "1"})
	}, "/", http.MethodPost, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "EMAIL_DELIVERY_FAILED", resp.Code)
	assert.Equal(t, map[string]interface{}{"id": "1"}, resp.Data)
}

func TestExtractBearerToken(t *testing.T) {
	for header, want := range map[string]string{
		"Bearer abc.def":  "abc.def",
		"bearer  abc.def": "abc.def",
	} {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Request.Header.Set("Authorization", header)
		got, err := ExtractBearerToken(c)
		require.NoError(t, err, header)
		assert.Equal(t, want, got)
	}

	for _, header := range []string{"", "Bearer ", "Basic dXNlcjpwYXNz", "abc"} {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Request.Header.Set("Authorization", header)
		_, err := ExtractBearerToken(c)
		assert.ErrorIs(t, err, apperror.ErrInvalidToken, header)
	}
}

func TestExtractUserAndParams(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, err := ExtractUser(c)
	assert.ErrorIs(t, err, apperror.ErrInvalidToken)

	want := credential.Identity{UserID: uuid.New(), Email: "a@example.com", Role: model.RoleJobSeeker}
	SetUser(c, want)
	got, err := ExtractUser(c)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	id := uuid.New()
	c.Params = gin.Params{{Key: "id", Value: id.String()}, {Key: "bad", Value: "42"}}
	parsed, err := ParamUUID(c, "id", "job")
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
	_, err = ParamUUID(c, "bad", "job")
	assert.ErrorIs(t, err, apperror.ErrNotFoundOrForbidden)
}

func TestContains(t *testing.T) {
	assert.True(t, Contains([]model.Role{model.RoleAdmin, model.RoleJobSeeker}, model.RoleJobSeeker))
	assert.False(t, Contains([]string{"a"}, "b"))
	assert.False(t, Contains(nil, 1))
}
