package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/local-business-directory/internal/application"
	"github.com/oksasatya/local-business-directory/internal/interface/middleware"
	"github.com/oksasatya/local-business-directory/pkg/helpers"
	"github.com/oksasatya/local-business-directory/pkg/response"
)

type AuthHandler struct {
	Svc          *application.AuthService
	JWT          *helpers.JWTManager
	Cookies      *helpers.Manager
	AfterLoginTo string
	Logger       *logrus.Logger
}

func NewAuthHandler(svc *application.AuthService, jwt *helpers.JWTManager, cookies *helpers.Manager, afterLogin string, logger *logrus.Logger) *AuthHandler {
	if afterLogin == "" {
		afterLogin = "/"
	}
	return &AuthHandler{Svc: svc, JWT: jwt, Cookies: cookies, AfterLoginTo: afterLogin, Logger: logger}
}

// localPath accepts only same-site absolute paths as redirect targets.
func localPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.Contains(p, `\`)
}

// Login GET /api/login
// Redirects the browser to the identity provider.
func (h *AuthHandler) Login(c *gin.Context) {
	if h.Svc.Provider == nil {
		response.Error[any](c, http.StatusServiceUnavailable, "login is not configured", nil)
		return
	}
	returnTo := c.Query("return_to")
	if !localPath(returnTo) {
		returnTo = h.AfterLoginTo
	}
	target, err := h.Svc.BeginLogin(c.Request.Context(), returnTo)
	if err != nil {
		helpers.LogError(h.Logger, "begin login failed", err, logrus.Fields{"request_id": c.GetString("request_id")})
		response.Error[any](c, http.StatusInternalServerError, "failed to start login", nil)
		return
	}
	c.Redirect(http.StatusFound, target)
}

// Callback GET /api/callback?code=&state=
func (h *AuthHandler) Callback(c *gin.Context) {
	if e := c.Query("error"); e != "" {
		response.Error[any](c, http.StatusUnauthorized, "login was not completed", gin.H{"provider_error": e})
		return
	}
	code, state := c.Query("code"), c.Query("state")
	if code == "" || state == "" {
		response.Error[any](c, http.StatusBadRequest, "missing code or state", nil)
		return
	}

	u, pair, returnTo, err := h.Svc.CompleteLogin(c.Request.Context(), state, code)
	if err != nil {
		if errors.Is(err, application.ErrInvalidState) {
			response.Error[any](c, http.StatusBadRequest, "invalid or expired login state", nil)
			return
		}
		helpers.LogError(h.Logger, "complete login failed", err, logrus.Fields{"request_id": c.GetString("request_id")})
		response.Error[any](c, http.StatusBadGateway, "login failed", nil)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	helpers.LogInfo(h.Logger, "user signed in", logrus.Fields{"user_id": u.ID})

	if !localPath(returnTo) {
		returnTo = h.AfterLoginTo
	}
	c.Redirect(http.StatusFound, returnTo)
}

// Refresh POST /api/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	token, err := c.Cookie(helpers.RefreshCookie)
	if err != nil || token == "" {
		response.Error[any](c, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}
	pair, uid, err := h.Svc.Refresh(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, application.ErrInvalidSession) {
			h.Cookies.Clear(c)
			response.Error[any](c, http.StatusUnauthorized, "invalid refresh token", nil)
			return
		}
		helpers.LogError(h.Logger, "refresh failed", err, logrus.Fields{"request_id": c.GetString("request_id")})
		response.Error[any](c, http.StatusInternalServerError, "failed to refresh session", nil)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, gin.H{"user_id": uid}, "session refreshed", nil)
}

// Logout GET /api/logout
// Works with either cookie so an expired access token can still sign out.
func (h *AuthHandler) Logout(c *gin.Context) {
	if uid := h.cookieUser(c); uid != "" {
		if err := h.Svc.Logout(c.Request.Context(), uid); err != nil {
			helpers.LogError(h.Logger, "logout failed", err, logrus.Fields{"user_id": uid})
		}
	}
	h.Cookies.Clear(c)
	c.Redirect(http.StatusFound, "/")
}

// CurrentUser GET /api/auth/user (auth required)
func (h *AuthHandler) CurrentUser(c *gin.Context) {
	u, err := h.Svc.CurrentUser(c.Request.Context(), middleware.UserID(c))
	switch {
	case err == nil:
		response.Success(c, http.StatusOK, u, "current user", nil)
	case errors.Is(err, application.ErrUnauthenticated):
		response.Error[any](c, http.StatusUnauthorized, "unauthorized", nil)
	case errors.Is(err, application.ErrUserNotFound):
		response.Error[any](c, http.StatusNotFound, "user not found", nil)
	default:
		helpers.LogError(h.Logger, "get current user failed", err, logrus.Fields{"request_id": c.GetString("request_id")})
		response.Error[any](c, http.StatusInternalServerError, "failed to fetch user", nil)
	}
}

func (h *AuthHandler) cookieUser(c *gin.Context) string {
	if t, err := c.Cookie(helpers.AccessCookie); err == nil && t != "" {
		if claims, err := h.JWT.ParseAccessToken(t); err == nil {
			return claims.UserID
		}
	}
	if t, err := c.Cookie(helpers.RefreshCookie); err == nil && t != "" {
		if claims, err := h.JWT.ParseRefreshToken(t); err == nil {
			return claims.UserID
		}
	}
	return ""
}
