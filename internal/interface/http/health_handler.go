package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/local-business-directory/pkg/helpers"
	"github.com/oksasatya/local-business-directory/pkg/response"
)

// Pinger is anything that can report its own reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	Store  Pinger
	Redis  *redis.Client
	Logger *logrus.Logger
}

func NewHealthHandler(store Pinger, rdb *redis.Client, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{Store: store, Redis: rdb, Logger: logger}
}

// Check GET /api/healthz
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{"store": "ok", "redis": "ok"}
	healthy := true
	if err := h.Store.Ping(ctx); err != nil {
		helpers.LogError(h.Logger, "store ping failed", err, nil)
		checks["store"] = "unavailable"
		healthy = false
	}
	if h.Redis != nil {
		if err := h.Redis.Ping(ctx).Err(); err != nil {
			helpers.LogError(h.Logger, "redis ping failed", err, nil)
			checks["redis"] = "unavailable"
			healthy = false
		}
	}
	if !healthy {
		response.Error[any](c, http.StatusServiceUnavailable, "unhealthy", checks)
		return
	}
	response.Success(c, http.StatusOK, checks, "ok", nil)
}
