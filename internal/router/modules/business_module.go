package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/local-business-directory/internal/interface/http"
	"github.com/oksasatya/local-business-directory/internal/interface/middleware"
	"github.com/oksasatya/local-business-directory/pkg/helpers"
)

// BusinessModule wires the directory endpoints.
// Public: GET /businesses, GET /businesses/:id
// Protected: POST /businesses, GET /my-businesses, PUT|DELETE /businesses/:id
type BusinessModule struct {
	Handler *handlers.BusinessHandler
	Redis   *redis.Client
	JWT     *helpers.JWTManager
}

func NewBusinessModule(h *handlers.BusinessHandler, rdb *redis.Client, jwt *helpers.JWTManager) *BusinessModule {
	return &BusinessModule{Handler: h, Redis: rdb, JWT: jwt}
}

func (m *BusinessModule) Register(rg *gin.RouterGroup) {
	browseLimiter := middleware.RateLimit(m.Redis, 300, time.Minute, middleware.KeyByIP(), nil)
	rg.GET("/businesses", browseLimiter, m.Handler.List)
	rg.GET("/businesses/:id", browseLimiter, m.Handler.Get)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Redis, m.JWT))
	// reads are cheap; only writes count against the per-user budget
	auth.Use(middleware.RateLimit(m.Redis, 60, time.Minute, middleware.KeyByUserID(), middleware.AllowSafeMethods()))
	{
		auth.GET("/my-businesses", m.Handler.Mine)
		auth.POST("/businesses", m.Handler.Create)
		auth.PUT("/businesses/:id", m.Handler.Update)
		auth.DELETE("/businesses/:id", m.Handler.Delete)
	}
}
