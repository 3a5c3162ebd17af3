// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"rpg-motif-api/internal/application/motif"
	"rpg-motif-api/internal/application/spatial"
	"rpg-motif-api/internal/application/synthesis"
	"rpg-motif-api/internal/interfaces/http/dto"
)

// SynthesisHandler 叙事合成与效果处理器
type SynthesisHandler struct {
	synth *synthesis.Synthesizer
	svc   *motif.Service
}

// NewSynthesisHandler 创建叙事合成处理器
func NewSynthesisHandler(synth *synthesis.Synthesizer, svc *motif.Service) *SynthesisHandler {
	return &SynthesisHandler{
		synth: synth,
		svc:   svc,
	}
}

// ContextAtPosition 合成指定位置的叙事上下文
// @Summary 合成位置叙事上下文
// @Description 汇聚覆盖该位置的主题，输出主导主题、混合强度与叙事指引
// @Tags Synthesis
// @Produce json
// @Param x query number false "X 坐标"
// @Param y query number false "Y 坐标"
// @Param region_id query string false "区域 ID"
// @Param player_id query string false "玩家 ID"
// @Param size query string false "上下文规模 (small, medium, large)" default(medium)
// @Success 200 {object} dto.Response[synthesis.Payload]
// @Router /v1/motifs/context/position [get]
func (h *SynthesisHandler) ContextAtPosition(c *gin.Context) {
	var q dto.SynthesisQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		dto.BadRequest(c, "invalid query: "+err.Error())
		return
	}

	sq := q.ToSpatialQuery()
	payload, err := h.synth.SynthesizeAt(c.Request.Context(), &sq, q.ContextSize())
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.Success(c, payload)
}

// GlobalContext 合成全局叙事上下文
// @Summary 合成全局叙事上下文
// @Tags Synthesis
// @Produce json
// @Param size query string false "上下文规模 (small, medium, large)" default(medium)
// @Success 200 {object} dto.Response[synthesis.Payload]
// @Router /v1/motifs/context/global [get]
func (h *SynthesisHandler) GlobalContext(c *gin.Context) {
	sq := spatial.Query{Global: true}
	payload, err := h.synth.SynthesizeAt(c.Request.Context(), &sq, synthesis.ContextSize(c.Query("size")))
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.Success(c, payload)
}

// ApplyEffects 计算并发布主题效果
// @Summary 应用主题效果
// @Description 按生命周期权重计算各目标域的效果载荷并发布效果事件
// @Tags Synthesis
// @Accept json
// @Produce json
// @Param id path string true "主题 ID"
// @Param body body dto.ApplyEffectsRequest false "目标域列表，缺省为全部"
// @Success 200 {object} dto.Response[map[string][]synthesis.EffectResult]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/motifs/{id}/effects/apply [post]
func (h *SynthesisHandler) ApplyEffects(c *gin.Context) {
	var req dto.ApplyEffectsRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	results, err := h.svc.ApplyEffects(c.Request.Context(), c.Param("id"), req.ToTargets())
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.Success(c, results)
}
