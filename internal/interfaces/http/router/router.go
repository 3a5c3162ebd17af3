// Package router 提供 HTTP 路由配置
package router

import (
	"rpg-motif-api/internal/config"
	"rpg-motif-api/internal/interfaces/http/handler"
	"rpg-motif-api/internal/interfaces/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterHandlers 路由所需的全部处理器
type RouterHandlers struct {
	Health    *handler.HealthHandler
	Motif     *handler.MotifHandler
	Spatial   *handler.SpatialHandler
	Synthesis *handler.SynthesisHandler
	Conflict  *handler.ConflictHandler
	Admin     *handler.AdminHandler
}

// Router HTTP 路由器
type Router struct {
	engine   *gin.Engine
	cfg      *config.Config
	handlers RouterHandlers
	limiter  middleware.Limiter
}

// NewWithDeps 创建带处理器依赖的路由器
func NewWithDeps(cfg *config.Config, handlers RouterHandlers, limiter middleware.Limiter) *Router {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := &Router{
		engine:   gin.New(),
		cfg:      cfg,
		handlers: handlers,
		limiter:  limiter,
	}

	r.setupMiddleware()
	r.setupRoutes()

	return r
}

// Engine 返回 Gin Engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// setupMiddleware 配置中间件
func (r *Router) setupMiddleware() {
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())

	r.engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: r.cfg.Security.CORS.AllowedOrigins,
		AllowedMethods: r.cfg.Security.CORS.AllowedMethods,
		AllowedHeaders: r.cfg.Security.CORS.AllowedHeaders,
	}))

	if r.cfg.Observability.Tracing.Enabled {
		r.engine.Use(middleware.Trace(r.cfg.App.Name))
		r.engine.Use(middleware.TraceContext())
	}

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.Use(middleware.Metrics())
	}

	rl := r.cfg.Security.RateLimit
	if rl.Enabled && r.limiter != nil {
		r.engine.Use(middleware.RateLimit(r.limiter, rl.Requests, rl.Window))
	}
}

// setupRoutes 配置路由
func (r *Router) setupRoutes() {
	// 系统端点
	r.engine.GET("/health", r.handlers.Health.Health)
	r.engine.GET("/ready", r.handlers.Health.Ready)
	r.engine.GET("/live", r.handlers.Health.Live)

	// Prometheus 指标端点
	if r.cfg.Observability.Metrics.Enabled {
		path := r.cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		r.engine.GET(path, gin.WrapH(promhttp.Handler()))
	}

	v1 := r.engine.Group("/v1")
	RegisterV1Routes(v1, r.handlers)
}
