package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/local-business-directory/pkg/response"
)

// Registry collects modules and group-wide middleware, then mounts them all
// under /api in one pass.
type Registry struct {
	Engine      *gin.Engine
	API         *gin.RouterGroup
	middlewares []gin.HandlerFunc
	modules     []Module
}

func NewRegistry(engine *gin.Engine) *Registry {
	return &Registry{Engine: engine, API: engine.Group("/api")}
}

func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.middlewares = append(r.middlewares, mw...)
}

func (r *Registry) Add(mod ...Module) {
	r.modules = append(r.modules, mod...)
}

// RegisterAll mounts every module and makes unknown routes answer with the
// JSON envelope instead of gin's plain-text 404.
func (r *Registry) RegisterAll() {
	if len(r.middlewares) > 0 {
		r.API.Use(r.middlewares...)
	}
	for _, m := range r.modules {
		m.Register(r.API)
	}

	r.Engine.HandleMethodNotAllowed = true
	r.Engine.NoRoute(func(c *gin.Context) {
		response.Error[any](c, http.StatusNotFound, "route not found", gin.H{"path": c.Request.URL.Path})
	})
	r.Engine.NoMethod(func(c *gin.Context) {
		response.Error[any](c, http.StatusMethodNotAllowed, "method not allowed", gin.H{"method": c.Request.Method})
	})
}
