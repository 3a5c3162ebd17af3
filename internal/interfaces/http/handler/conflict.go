// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"rpg-motif-api/internal/application/conflict"
	"rpg-motif-api/internal/interfaces/http/dto"
)

// ConflictHandler 主题冲突处理器
type ConflictHandler struct {
	detector *conflict.Detector
}

// NewConflictHandler 创建冲突处理器
func NewConflictHandler(detector *conflict.Detector) *ConflictHandler {
	return &ConflictHandler{detector: detector}
}

// List 列出活跃冲突
// @Summary 列出活跃冲突
// @Tags Conflicts
// @Produce json
// @Success 200 {object} dto.Response[[]entity.MotifConflict]
// @Router /v1/motifs/conflicts [get]
func (h *ConflictHandler) List(c *gin.Context) {
	conflicts, err := h.detector.ListActive(c.Request.Context())
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.Success(c, conflicts)
}

// Detect 扫描全部活跃主题对并刷新冲突记录
// @Summary 检测主题冲突
// @Description 对立主题或高强度碰撞且影响范围重叠时记录冲突，不视为错误
// @Tags Conflicts
// @Produce json
// @Success 200 {object} dto.Response[[]entity.MotifConflict]
// @Router /v1/motifs/conflicts [post]
func (h *ConflictHandler) Detect(c *gin.Context) {
	conflicts, err := h.detector.Detect(c.Request.Context())
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.Success(c, conflicts)
}

// Resolve 消解全部活跃冲突
// @Summary 消解主题冲突
// @Description auto 为真时削弱较弱主题并关闭冲突，否则仅标记忽略
// @Tags Conflicts
// @Accept json
// @Produce json
// @Param body body dto.ResolveConflictsRequest false "消解模式"
// @Success 200 {object} dto.Response[conflict.ResolveResult]
// @Router /v1/motifs/conflicts/resolve [post]
func (h *ConflictHandler) Resolve(c *gin.Context) {
	var req dto.ResolveConflictsRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.detector.Resolve(c.Request.Context(), req.Auto)
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.Success(c, result)
}
