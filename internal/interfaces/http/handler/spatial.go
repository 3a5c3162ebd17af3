// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"rpg-motif-api/internal/application/spatial"
	"rpg-motif-api/internal/interfaces/http/dto"
)

// SpatialHandler 空间查询处理器
type SpatialHandler struct {
	resolver *spatial.Resolver
}

// NewSpatialHandler 创建空间查询处理器
func NewSpatialHandler(resolver *spatial.Resolver) *SpatialHandler {
	return &SpatialHandler{resolver: resolver}
}

// AtPosition 查询覆盖指定坐标的主题
// @Summary 按坐标查询主题
// @Description 返回影响范围覆盖该坐标的全部活跃主题，按强度降序
// @Tags Spatial
// @Produce json
// @Param x query number true "X 坐标"
// @Param y query number true "Y 坐标"
// @Param radius query number false "查询半径"
// @Param region_id query string false "所在区域 ID"
// @Param player_id query string false "玩家 ID"
// @Success 200 {object} dto.Response[[]entity.Motif]
// @Router /v1/motifs/spatial/position [get]
func (h *SpatialHandler) AtPosition(c *gin.Context) {
	var q dto.PositionQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		dto.BadRequest(c, "invalid query: "+err.Error())
		return
	}
	if err := q.Validate(); err != nil {
		dto.Fail(c, err)
		return
	}

	sq := q.ToSpatialQuery()
	motifs, err := h.resolver.MotifsAt(c.Request.Context(), &sq)
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.Success(c, motifs)
}

// InRegion 查询覆盖指定区域的主题
// @Summary 按区域查询主题
// @Tags Spatial
// @Produce json
// @Param region_id path string true "区域 ID"
// @Success 200 {object} dto.Response[[]entity.Motif]
// @Router /v1/motifs/spatial/region/{region_id} [get]
func (h *SpatialHandler) InRegion(c *gin.Context) {
	sq := spatial.Query{RegionID: c.Param("region_id")}
	motifs, err := h.resolver.MotifsAt(c.Request.Context(), &sq)
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.Success(c, motifs)
}

// Global 查询全局主题
// @Summary 查询全局主题
// @Tags Spatial
// @Produce json
// @Success 200 {object} dto.Response[[]entity.Motif]
// @Router /v1/motifs/spatial/global [get]
func (h *SpatialHandler) Global(c *gin.Context) {
	sq := spatial.Query{Global: true}
	motifs, err := h.resolver.MotifsAt(c.Request.Context(), &sq)
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.Success(c, motifs)
}

// ForPlayer 查询对指定玩家可见的主题
// @Summary 按玩家查询主题
// @Description 返回全局主题加该玩家名下的玩家主题
// @Tags Spatial
// @Produce json
// @Param player_id path string true "玩家 ID"
// @Success 200 {object} dto.Response[[]entity.Motif]
// @Router /v1/motifs/player/{player_id} [get]
func (h *SpatialHandler) ForPlayer(c *gin.Context) {
	sq := spatial.Query{PlayerID: c.Param("player_id")}
	motifs, err := h.resolver.MotifsAt(c.Request.Context(), &sq)
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.Success(c, motifs)
}
