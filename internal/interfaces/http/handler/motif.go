// Package handler 提供 HTTP 请求处理器
package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"rpg-motif-api/internal/application/motif"
	"rpg-motif-api/internal/interfaces/http/dto"
)

// MotifHandler 主题 CRUD 处理器
type MotifHandler struct {
	svc *motif.Service
}

// NewMotifHandler 创建主题处理器
func NewMotifHandler(svc *motif.Service) *MotifHandler {
	return &MotifHandler{svc: svc}
}

// Create 创建主题
// @Summary 创建主题
// @Description 创建新主题；玩家作用域下已有同类别活跃主题时强化既有主题
// @Tags Motifs
// @Accept json
// @Produce json
// @Param body body dto.CreateMotifRequest true "主题信息"
// @Success 201 {object} dto.Response[motif.CreateResult]
// @Failure 422 {object} dto.ErrorResponse
// @Router /v1/motifs [post]
func (h *MotifHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateMotifRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.svc.Create(ctx, req.ToEntity())
	if err != nil {
		dto.Fail(c, err)
		return
	}

	if result.Reinforced {
		dto.Success(c, result)
		return
	}
	dto.Created(c, result)
}

// Get 获取主题详情
// @Summary 获取主题详情
// @Tags Motifs
// @Produce json
// @Param id path string true "主题 ID"
// @Success 200 {object} dto.Response[entity.Motif]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/motifs/{id} [get]
func (h *MotifHandler) Get(c *gin.Context) {
	m, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.Success(c, m)
}

// Update 部分更新主题
// @Summary 更新主题
// @Description 部分更新；生命周期只允许前向变更
// @Tags Motifs
// @Accept json
// @Produce json
// @Param id path string true "主题 ID"
// @Param body body dto.UpdateMotifRequest true "更新字段"
// @Success 200 {object} dto.Response[entity.Motif]
// @Failure 409 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /v1/motifs/{id} [patch]
func (h *MotifHandler) Update(c *gin.Context) {
	var req dto.UpdateMotifRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	m, err := h.svc.Update(c.Request.Context(), c.Param("id"), req.ToInput())
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.Success(c, m)
}

// Delete 删除主题
// @Summary 删除主题
// @Tags Motifs
// @Param id path string true "主题 ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/motifs/{id} [delete]
func (h *MotifHandler) Delete(c *gin.Context) {
	deleted, err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		dto.Fail(c, err)
		return
	}
	if !deleted {
		dto.NotFound(c, "motif not found: "+c.Param("id"))
		return
	}
	dto.NoContent(c)
}

// List 列出主题
// @Summary 列出主题
// @Description 按类别、作用域、生命周期、强度区间等条件过滤
// @Tags Motifs
// @Produce json
// @Success 200 {object} dto.Response[[]entity.Motif]
// @Router /v1/motifs [get]
func (h *MotifHandler) List(c *gin.Context) {
	var q dto.ListMotifsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		dto.BadRequest(c, "invalid query: "+err.Error())
		return
	}

	filter := q.ToFilter()
	motifs, total, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		dto.Fail(c, err)
		return
	}

	dto.SuccessWithPage(c, motifs, &dto.PageMeta{
		Limit:  filter.Limit,
		Offset: filter.Offset,
		Total:  total,
	})
}

// Lifecycle 查询主题生命周期状态
// @Summary 查询主题生命周期状态
// @Description 返回当前生命周期阶段与时间进度；常驻主题无进度
// @Tags Motifs
// @Produce json
// @Param id path string true "主题 ID"
// @Success 200 {object} dto.Response[dto.LifecycleStatus]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/motifs/{id}/lifecycle [get]
func (h *MotifHandler) Lifecycle(c *gin.Context) {
	m, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		dto.Fail(c, err)
		return
	}

	status := dto.LifecycleStatus{
		MotifID:   m.ID,
		Lifecycle: string(m.Lifecycle),
		Active:    m.IsActive(),
		StartTime: m.StartTime,
		EndTime:   m.EndTime,
	}
	if progress, ok := m.Progress(time.Now()); ok {
		status.Progress = &progress
	} else {
		status.Perpetual = true
	}
	dto.Success(c, status)
}

// Stats 主题统计汇总
// @Summary 主题统计汇总
// @Tags Motifs
// @Produce json
// @Success 200 {object} dto.Response[repository.MotifStats]
// @Router /v1/motifs/stats/summary [get]
func (h *MotifHandler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.Success(c, stats)
}

// SeedCanonical 生成常驻主题
// @Summary 生成常驻主题
// @Description 幂等地补齐缺失的常驻全局主题
// @Tags Motifs
// @Produce json
// @Success 200 {object} dto.Response[dto.SeedResult]
// @Router /v1/motifs/canonical/generate [post]
func (h *MotifHandler) SeedCanonical(c *gin.Context) {
	created, err := h.svc.SeedCanonical(c.Request.Context())
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.Success(c, dto.SeedResult{Created: created})
}
