// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"rpg-motif-api/internal/application/evolution"
	"rpg-motif-api/internal/application/lifecycle"
	"rpg-motif-api/internal/domain/entity"
	"rpg-motif-api/internal/interfaces/http/dto"
)

// AdminHandler 生命周期与演化的运维处理器
type AdminHandler struct {
	scheduler *lifecycle.Scheduler
	engine    *evolution.Engine
}

// NewAdminHandler 创建运维处理器
func NewAdminHandler(scheduler *lifecycle.Scheduler, engine *evolution.Engine) *AdminHandler {
	return &AdminHandler{
		scheduler: scheduler,
		engine:    engine,
	}
}

// AdvanceLifecycles 按时间进度推进全部活跃主题的生命周期
// @Summary 推进主题生命周期
// @Description 重复调用幂等；单个主题失败不阻断整批
// @Tags Admin
// @Produce json
// @Success 200 {object} dto.Response[lifecycle.SweepResult]
// @Router /v1/motifs/lifecycle/advance [post]
func (h *AdminHandler) AdvanceLifecycles(c *gin.Context) {
	result, err := h.scheduler.Advance(c.Request.Context())
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.Success(c, result)
}

// Evolve 对单个主题触发演化
// @Summary 触发主题演化
// @Description 按文档顺序独立评估演化规则，受冷却与概率约束
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "主题 ID"
// @Param body body dto.EvolveMotifRequest true "触发信息"
// @Success 200 {object} dto.Response[evolution.Result]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/motifs/{id}/evolve [post]
func (h *AdminHandler) Evolve(c *gin.Context) {
	var req dto.EvolveMotifRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.engine.Trigger(c.Request.Context(), c.Param("id"), entity.TriggerType(req.Trigger), req.Description)
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.Success(c, result)
}

// ProcessEvolution 对全部活跃主题执行时间流逝演化
// @Summary 批量时间流逝演化
// @Tags Admin
// @Produce json
// @Success 200 {object} dto.Response[evolution.SweepResult]
// @Router /v1/motifs/evolution/process [post]
func (h *AdminHandler) ProcessEvolution(c *gin.Context) {
	result, err := h.engine.ProcessTimePassage(c.Request.Context())
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.Success(c, result)
}

// Cleanup 过期主题休眠与终止态清理
// @Summary 清理过期主题
// @Description 过期主题转入 DORMANT，超过保留期的终止态主题物理删除
// @Tags Admin
// @Produce json
// @Success 200 {object} dto.Response[lifecycle.CleanupResult]
// @Router /v1/motifs/maintenance/cleanup [post]
func (h *AdminHandler) Cleanup(c *gin.Context) {
	result, err := h.scheduler.Cleanup(c.Request.Context())
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.Success(c, result)
}
