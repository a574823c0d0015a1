package account

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"jobportal-backend/internal/apperror"
	"jobportal-backend/internal/config"
	"jobportal-backend/internal/database"
	"jobportal-backend/internal/model"
)

// newMockOAuthServer serves a token endpoint that accepts any code except "bad"
// and a userinfo endpoint that answers with info for the issued token.
func newMockOAuthServer(t *testing.T, info model.GoogleUserInfo) (*httptest.Server, *GoogleOAuth) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.PostForm.Get("code") == "bad" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "tok-" + r.PostForm.Get("code"),
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(info)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv, &GoogleOAuth{
		OauthConfig: &oauth2.Config{
			ClientID:     "client",
			ClientSecret: "secret",
			Endpoint: oauth2.Endpoint{
				AuthURL:   srv.URL + "/auth",
				TokenURL:  srv.URL + "/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		UserInfoEndpoint: srv.URL + "/userinfo",
	}
}

func TestGoogleOAuth_userInfo(t *testing.T) {
	want := model.GoogleUserInfo{ID: "g-1", Email: "g1@example.com", VerifiedEmail: true, GivenName: "Gee"}
	_, provider := newMockOAuthServer(t, want)

	got, err := provider.UserInfo(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, want, *got)

	_, err = provider.UserInfo(context.Background(), "bad")
	assert.Error(t, err)

	_, err = provider.UserInfo(context.Background(), "other")
	assert.ErrorContains(t, err, "status 401")
}

func TestNewGoogleOAuth_disabledWithoutClient(t *testing.T) {
	assert.Nil(t, NewGoogleOAuth(config.GoogleConfig{}))
	g := NewGoogleOAuth(config.GoogleConfig{ClientID: "id", UserInfoURL: "https://example.com/userinfo"})
	require.NotNil(t, g)
	assert.Equal(t, "https://example.com/userinfo", g.UserInfoEndpoint)
}

type fakeGoogle struct {
	info *model.GoogleUserInfo
	err  error
}

func (f fakeGoogle) UserInfo(context.Context, string) (*model.GoogleUserInfo, error) {
	return f.info, f.err
}

func TestGoogleLogin_registersThenLogsIn(t *testing.T) {
	gid := "g-" + uuid.NewString()
	info := &model.GoogleUserInfo{ID: gid, Email: uniqueEmail("google"), VerifiedEmail: true, GivenName: "Goo", FamilyName: "Gle"}
	h := newHarness(t, fakeGoogle{info: info})
	ctx := context.Background()

	first, err := h.svc.GoogleLogin(ctx, "code", model.RoleJobProvider)
	require.NoError(t, err)
	assert.Equal(t, model.RoleJobProvider, first.User.Role)
	assert.True(t, first.User.EmailVerified)
	assert.Equal(t, "Goo", first.User.FirstName)
	assert.NotEmpty(t, first.RefreshToken)

	second, err := h.svc.GoogleLogin(ctx, "code", model.RoleJobSeeker)
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, second.User.ID)
	assert.Equal(t, model.RoleJobProvider, second.User.Role, "the role is chosen once")

	_, err = h.svc.Login(ctx, info.Email, "anything-at-all")
	assert.ErrorIs(t, err, apperror.ErrInvalidCredential, "google-only accounts have no password")
}

func TestGoogleLogin_linksExistingEmail(t *testing.T) {
	user, _, err := database.CreateTestUser(testDB, model.RoleJobSeeker)
	require.NoError(t, err)

	unverified := &model.GoogleUserInfo{ID: "g-" + uuid.NewString(), Email: user.Email}
	h := newHarness(t, fakeGoogle{info: unverified})
	_, err = h.svc.GoogleLogin(context.Background(), "code", "")
	assert.ErrorIs(t, err, apperror.ErrInvalidCredential)

	verified := &model.GoogleUserInfo{ID: "g-" + uuid.NewString(), Email: user.Email, VerifiedEmail: true}
	h = newHarness(t, fakeGoogle{info: verified})
	resp, err := h.svc.GoogleLogin(context.Background(), "code", "")
	require.NoError(t, err)
	assert.Equal(t, user.ID, resp.User.ID)

	var linked model.User
	require.NoError(t, testDB.First(&linked, "id = ?", user.ID).Error)
	require.NotNil(t, linked.GoogleID)
	assert.Equal(t, verified.ID, *linked.GoogleID)
}

func TestGoogleLogin_failures(t *testing.T) {
	ctx := context.Background()

	h := newHarness(t, nil)
	_, err := h.svc.GoogleLogin(ctx, "code", "")
	assert.ErrorIs(t, err, apperror.ErrValidationFailed, "not configured")

	h = newHarness(t, fakeGoogle{err: errors.New("exchange failed")})
	_, err = h.svc.GoogleLogin(ctx, "code", "")
	assert.ErrorIs(t, err, apperror.ErrInvalidCredential)

	h = newHarness(t, fakeGoogle{info: &model.GoogleUserInfo{ID: "g-x"}})
	_, err = h.svc.GoogleLogin(ctx, "code", "")
	assert.ErrorIs(t, err, apperror.ErrInvalidCredential, "no email")

	_, err = h.svc.GoogleLogin(ctx, "code", model.RoleAdmin)
	assert.ErrorIs(t, err, apperror.ErrValidationFailed)
}
