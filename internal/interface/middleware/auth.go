package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/local-business-directory/pkg/helpers"
	"github.com/oksasatya/local-business-directory/pkg/response"
)

const (
	CtxUserIDKey    = "userID"
	CtxUserNameKey  = "userName"
	CtxUserEmailKey = "userEmail"
)

// Auth validates the access token cookie and requires the live Redis session
// to carry the same session id. On success the caller identity is set in the
// Gin context under CtxUserIDKey.
func Auth(rdb *redis.Client, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(helpers.AccessCookie)
		if err != nil || token == "" {
			response.Abort(c, http.StatusUnauthorized, "missing access token", nil)
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "invalid access token", nil)
			return
		}

		data, err := rdb.HGetAll(c.Request.Context(), helpers.SessionKey(claims.UserID)).Result()
		if err != nil || len(data) == 0 || data["sid"] != claims.SessionID {
			response.Abort(c, http.StatusUnauthorized, "session not found", nil)
			return
		}

		c.Set(CtxUserIDKey, claims.UserID)
		c.Set(CtxUserNameKey, data["name"])
		c.Set(CtxUserEmailKey, data["email"])
		c.Next()
	}
}

// UserID returns the authenticated caller, or "" on public routes.
func UserID(c *gin.Context) string {
	return c.GetString(CtxUserIDKey)
}
