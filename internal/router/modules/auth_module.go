package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/local-business-directory/internal/interface/http"
	"github.com/oksasatya/local-business-directory/internal/interface/middleware"
	"github.com/oksasatya/local-business-directory/pkg/helpers"
)

// AuthModule wires the login flow and session endpoints.
type AuthModule struct {
	Handler *handlers.AuthHandler
	Redis   *redis.Client
	JWT     *helpers.JWTManager
}

func NewAuthModule(h *handlers.AuthHandler, rdb *redis.Client, jwt *helpers.JWTManager) *AuthModule {
	return &AuthModule{Handler: h, Redis: rdb, JWT: jwt}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	loginLimiter := middleware.RateLimit(m.Redis, 20, time.Minute, middleware.KeyByIPAndPath(), nil)
	refreshLimiter := middleware.RateLimit(m.Redis, 60, time.Minute, middleware.KeyByIP(), nil)

	rg.GET("/login", loginLimiter, m.Handler.Login)
	rg.GET("/callback", loginLimiter, m.Handler.Callback)
	rg.POST("/refresh", refreshLimiter, m.Handler.Refresh)
	rg.GET("/logout", m.Handler.Logout)

	auth := rg.Group("/auth")
	auth.Use(middleware.Auth(m.Redis, m.JWT))
	{
		auth.GET("/user", m.Handler.CurrentUser)
	}
}
