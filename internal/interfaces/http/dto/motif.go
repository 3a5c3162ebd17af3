// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"rpg-motif-api/internal/application/motif"
	"rpg-motif-api/internal/application/spatial"
	"rpg-motif-api/internal/application/synthesis"
	"rpg-motif-api/internal/domain/entity"
	"rpg-motif-api/internal/domain/repository"
	"rpg-motif-api/pkg/errors"
)

// CreateMotifRequest 创建主题请求
type CreateMotifRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category" binding:"required"`
	Scope       string  `json:"scope" binding:"required"`
	Intensity   float64 `json:"intensity"`
	IsCanonical bool    `json:"is_canonical"`

	Location *entity.LocationInfo `json:"location"`
	PlayerID string               `json:"player_id"`

	Theme              string   `json:"theme"`
	Tone               string   `json:"tone"`
	NarrativeDirection string   `json:"narrative_direction"`
	Descriptors        []string `json:"descriptors"`

	Effects        []entity.MotifEffect        `json:"effects"`
	EvolutionRules []entity.MotifEvolutionRule `json:"evolution_rules"`

	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`

	Metadata map[string]string `json:"metadata"`
	Tags     []string          `json:"tags"`
}

// ToEntity 转换为领域实体
func (r *CreateMotifRequest) ToEntity() *entity.Motif {
	m := entity.NewMotif(r.Name, entity.MotifCategory(r.Category), entity.MotifScope(r.Scope), r.Intensity)
	m.Description = r.Description
	m.IsCanonical = r.IsCanonical
	m.Location = r.Location
	m.PlayerID = r.PlayerID
	if r.Theme != "" {
		m.Theme = r.Theme
	}
	if r.Tone != "" {
		m.Tone = r.Tone
	}
	m.NarrativeDirection = r.NarrativeDirection
	if len(r.Descriptors) > 0 {
		m.Descriptors = r.Descriptors
	}
	m.Effects = r.Effects
	m.EvolutionRules = r.EvolutionRules
	m.StartTime = r.StartTime
	m.EndTime = r.EndTime
	if len(r.Metadata) > 0 {
		m.Metadata = r.Metadata
	}
	m.Tags = r.Tags
	return m
}

// UpdateMotifRequest 部分更新请求，缺省字段不修改
type UpdateMotifRequest struct {
	Name               *string                      `json:"name"`
	Description        *string                      `json:"description"`
	Intensity          *float64                     `json:"intensity"`
	Lifecycle          *string                      `json:"lifecycle"`
	Theme              *string                      `json:"theme"`
	Tone               *string                      `json:"tone"`
	NarrativeDirection *string                      `json:"narrative_direction"`
	Descriptors        *[]string                    `json:"descriptors"`
	Effects            *[]entity.MotifEffect        `json:"effects"`
	EvolutionRules     *[]entity.MotifEvolutionRule `json:"evolution_rules"`
	EndTime            *time.Time                   `json:"end_time"`
	Metadata           *map[string]string           `json:"metadata"`
	Tags               *[]string                    `json:"tags"`
}

// ToInput 转换为应用层更新输入
func (r *UpdateMotifRequest) ToInput() *motif.UpdateInput {
	in := &motif.UpdateInput{
		Name:               r.Name,
		Description:        r.Description,
		Intensity:          r.Intensity,
		Theme:              r.Theme,
		Tone:               r.Tone,
		NarrativeDirection: r.NarrativeDirection,
		Descriptors:        r.Descriptors,
		Effects:            r.Effects,
		EvolutionRules:     r.EvolutionRules,
		EndTime:            r.EndTime,
		Metadata:           r.Metadata,
		Tags:               r.Tags,
	}
	if r.Lifecycle != nil {
		lc := entity.MotifLifecycle(*r.Lifecycle)
		in.Lifecycle = &lc
	}
	return in
}

// ListMotifsQuery 列表查询参数
type ListMotifsQuery struct {
	Category     string   `form:"category"`
	Scope        string   `form:"scope"`
	Lifecycle    string   `form:"lifecycle"`
	MinIntensity *float64 `form:"min_intensity"`
	MaxIntensity *float64 `form:"max_intensity"`
	RegionID     string   `form:"region_id"`
	PlayerID     string   `form:"player_id"`
	ActiveOnly   bool     `form:"active_only"`
	Tags         []string `form:"tags"`
	Limit        int      `form:"limit"`
	Offset       int      `form:"offset"`
}

// ToFilter 转换为仓储过滤条件
func (q *ListMotifsQuery) ToFilter() *repository.MotifFilter {
	return &repository.MotifFilter{
		Category:     entity.MotifCategory(q.Category),
		Scope:        entity.MotifScope(q.Scope),
		Lifecycle:    entity.MotifLifecycle(q.Lifecycle),
		MinIntensity: q.MinIntensity,
		MaxIntensity: q.MaxIntensity,
		RegionID:     q.RegionID,
		PlayerID:     q.PlayerID,
		ActiveOnly:   q.ActiveOnly,
		Tags:         q.Tags,
		Limit:        q.Limit,
		Offset:       q.Offset,
	}
}

// PositionQuery 位置查询参数。
// 坐标用指针以区分“未提供”和合法的 0 值，required 标签会把 0 当缺省拒掉。
type PositionQuery struct {
	X        *float64 `form:"x"`
	Y        *float64 `form:"y"`
	Radius   float64  `form:"radius"`
	RegionID string   `form:"region_id"`
	PlayerID string   `form:"player_id"`
}

// Validate 校验坐标是否齐全
func (q *PositionQuery) Validate() error {
	if q.X == nil || q.Y == nil {
		return errors.NewInvalidQuery("x and y coordinates are required")
	}
	return nil
}

// ToSpatialQuery 转换为空间查询，须先通过 Validate
func (q *PositionQuery) ToSpatialQuery() spatial.Query {
	sq := spatial.Query{
		RegionID: q.RegionID,
		PlayerID: q.PlayerID,
	}
	if q.X != nil && q.Y != nil {
		sq.Point = &spatial.Point{X: *q.X, Y: *q.Y, Radius: q.Radius}
	}
	return sq
}

// SynthesisQuery 叙事合成查询参数，位置参数可选
type SynthesisQuery struct {
	X        *float64 `form:"x"`
	Y        *float64 `form:"y"`
	Radius   float64  `form:"radius"`
	RegionID string   `form:"region_id"`
	PlayerID string   `form:"player_id"`
	Size     string   `form:"size"`
}

// ToSpatialQuery 转换为空间查询；无任何定位参数时视为全局查询
func (q *SynthesisQuery) ToSpatialQuery() spatial.Query {
	sq := spatial.Query{
		RegionID: q.RegionID,
		PlayerID: q.PlayerID,
	}
	if q.X != nil && q.Y != nil {
		sq.Point = &spatial.Point{X: *q.X, Y: *q.Y, Radius: q.Radius}
	}
	if sq.RegionID == "" && sq.PlayerID == "" && sq.Point == nil {
		sq.Global = true
	}
	return sq
}

// ContextSize 转换上下文规模
func (q *SynthesisQuery) ContextSize() synthesis.ContextSize {
	return synthesis.ContextSize(q.Size)
}

// ApplyEffectsRequest 应用效果请求，targets 为空表示全部目标域
type ApplyEffectsRequest struct {
	Targets []string `json:"targets"`
}

// ToTargets 转换为目标域列表
func (r *ApplyEffectsRequest) ToTargets() []entity.EffectTarget {
	targets := make([]entity.EffectTarget, 0, len(r.Targets))
	for _, t := range r.Targets {
		targets = append(targets, entity.EffectTarget(t))
	}
	return targets
}

// EvolveMotifRequest 触发演化请求
type EvolveMotifRequest struct {
	Trigger     string `json:"trigger" binding:"required"`
	Description string `json:"description"`
}

// ResolveConflictsRequest 冲突消解请求
type ResolveConflictsRequest struct {
	Auto bool `json:"auto"`
}

// SeedResult 常驻主题种子结果
type SeedResult struct {
	Created int `json:"created"`
}

// LifecycleStatus 主题生命周期状态
type LifecycleStatus struct {
	MotifID   string     `json:"motif_id"`
	Lifecycle string     `json:"lifecycle"`
	Progress  *float64   `json:"progress,omitempty"`
	Perpetual bool       `json:"perpetual"`
	Active    bool       `json:"active"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
}
