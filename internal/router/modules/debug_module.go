package modules

import (
	"expvar"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/local-business-directory/internal/interface/http"
	"github.com/oksasatya/local-business-directory/internal/interface/middleware"
)

type DebugModule struct {
	Health         *handlers.HealthHandler
	Redis          *redis.Client
	MetricsEnabled bool
}

func NewDebugModule(h *handlers.HealthHandler, rdb *redis.Client, metrics bool) *DebugModule {
	return &DebugModule{Health: h, Redis: rdb, MetricsEnabled: metrics}
}

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rl := middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())
	rg.GET("/healthz", rl, m.Health.Check)
	if m.MetricsEnabled {
		rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
	}
}
