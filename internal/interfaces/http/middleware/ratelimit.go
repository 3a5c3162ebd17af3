package middleware

import (
	"context"
	"net/http"
	"time"

	"rpg-motif-api/internal/infrastructure/persistence/redis"
	"rpg-motif-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Limiter 限流判定接口
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimit 按客户端 IP 与路由的限流中间件，限流器故障时放行
func RateLimit(limiter Limiter, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		key := redis.BuildRateLimitKey(c.ClientIP(), route)

		allowed, err := limiter.Allow(c.Request.Context(), key, limit, window)
		if err != nil {
			logger.Warn(c.Request.Context(), "rate limiter unavailable, allowing request", "key", key, "error", err.Error())
			c.Next()
			return
		}

		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":    http.StatusTooManyRequests,
				"message": "too many requests",
			})
			return
		}

		c.Next()
	}
}
