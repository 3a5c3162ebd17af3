// Package router 提供 HTTP 路由配置
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterV1Routes 注册 v1 版本路由
func RegisterV1Routes(v1 *gin.RouterGroup, h RouterHandlers) {
	// 主题管理
	motifs := v1.Group("/motifs")
	{
		motifs.GET("", h.Motif.List)
		motifs.POST("", h.Motif.Create)

		// 统计与常驻主题
		motifs.GET("/stats/summary", h.Motif.Stats)
		motifs.POST("/canonical/generate", h.Motif.SeedCanonical)

		// 空间查询
		motifs.GET("/spatial/position", h.Spatial.AtPosition)
		motifs.GET("/spatial/region/:region_id", h.Spatial.InRegion)
		motifs.GET("/spatial/global", h.Spatial.Global)
		motifs.GET("/player/:player_id", h.Spatial.ForPlayer)

		// 叙事上下文合成
		motifs.GET("/context/position", h.Synthesis.ContextAtPosition)
		motifs.GET("/context/global", h.Synthesis.GlobalContext)

		// 冲突管理
		motifs.GET("/conflicts", h.Conflict.List)
		motifs.POST("/conflicts", h.Conflict.Detect)
		motifs.POST("/conflicts/resolve", h.Conflict.Resolve)

		// 批量生命周期与演化
		motifs.POST("/lifecycle/advance", h.Admin.AdvanceLifecycles)
		motifs.POST("/evolution/process", h.Admin.ProcessEvolution)
		motifs.POST("/maintenance/cleanup", h.Admin.Cleanup)

		// 单主题操作
		motifs.GET("/:id", h.Motif.Get)
		motifs.GET("/:id/lifecycle", h.Motif.Lifecycle)
		motifs.PATCH("/:id", h.Motif.Update)
		motifs.DELETE("/:id", h.Motif.Delete)
		motifs.POST("/:id/evolve", h.Admin.Evolve)
		motifs.POST("/:id/effects/apply", h.Synthesis.ApplyEffects)
	}
}
