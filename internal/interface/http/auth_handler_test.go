package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/local-business-directory/internal/application"
	"github.com/oksasatya/local-business-directory/internal/infrastructure/memory"
	"github.com/oksasatya/local-business-directory/pkg/helpers"
)

type stubProvider struct{}

func (stubProvider) AuthCodeURL(state string) string {
	return "https://idp.example.com/authorize?state=" + url.QueryEscape(state)
}

func (stubProvider) Exchange(_ context.Context, code string) (*application.Identity, error) {
	return &application.Identity{Subject: "sub-" + code, Email: code + "@example.com"}, nil
}

func newAuthEngine(t *testing.T) (*gin.Engine, *miniredis.Miniredis) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	jwt := helpers.NewJWTManager("a", "r", time.Minute, time.Hour)
	logger := helpers.NewDiscardLogger()
	svc := application.NewAuthService(memory.NewStore().Users(), stubProvider{}, jwt, rdb, time.Hour, logger)
	h := NewAuthHandler(svc, jwt, helpers.NewCookie("", false), "/app", logger)

	r := gin.New()
	r.GET("/login", h.Login)
	r.GET("/callback", h.Callback)
	r.POST("/refresh", h.Refresh)
	return r, mr
}

func cookieByName(cs []*http.Cookie, name string) *http.Cookie {
	for _, c := range cs {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestLocalPath(t *testing.T) {
	assert.True(t, localPath("/"))
	assert.True(t, localPath("/businesses/3"))
	assert.False(t, localPath(""))
	assert.False(t, localPath("https://evil.example.com"))
	assert.False(t, localPath("//evil.example.com"))
	assert.False(t, localPath(`/\evil.example.com`))
}

func TestLoginCallbackRefresh(t *testing.T) {
	r, mr := newAuthEngine(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login?return_to=/my", nil))
	require.Equal(t, http.StatusFound, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	state := loc.Query().Get("state")
	require.NotEmpty(t, state)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/callback?code=ada&state="+url.QueryEscape(state), nil))
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/my", w.Header().Get("Location"))
	access := cookieByName(w.Result().Cookies(), helpers.AccessCookie)
	refresh := cookieByName(w.Result().Cookies(), helpers.RefreshCookie)
	require.NotNil(t, access)
	require.NotNil(t, refresh)
	assert.True(t, access.HttpOnly)
	assert.True(t, mr.Exists("user:session:sub-ada"))
	oldSID := mr.HGet("user:session:sub-ada", "sid")

	// state is single use
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/callback?code=ada&state="+url.QueryEscape(state), nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/refresh", nil)
	req.AddCookie(refresh)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEqual(t, oldSID, mr.HGet("user:session:sub-ada", "sid"))

	// the rotated-out refresh token no longer works
	req = httptest.NewRequest(http.MethodPost, "/refresh", nil)
	req.AddCookie(refresh)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCallbackRejections(t *testing.T) {
	r, _ := newAuthEngine(t)
	for _, path := range []string{"/callback?error=access_denied", "/callback?code=x", "/callback?code=x&state=unknown"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.GreaterOrEqual(t, w.Code, 400, path)
		assert.Less(t, w.Code, 500, path)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login?return_to=https://evil.example.com", nil))
	require.Equal(t, http.StatusFound, w.Code)
}
