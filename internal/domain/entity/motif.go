// Package entity 定义领域实体
package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"rpg-motif-api/pkg/errors"
)

// MotifScope 主题作用域
type MotifScope string

const (
	ScopeGlobal          MotifScope = "GLOBAL"
	ScopeRegional        MotifScope = "REGIONAL"
	ScopeLocal           MotifScope = "LOCAL"
	ScopePlayerCharacter MotifScope = "PLAYER_CHARACTER"
)

// IsValid 检查作用域是否合法
func (s MotifScope) IsValid() bool {
	switch s {
	case ScopeGlobal, ScopeRegional, ScopeLocal, ScopePlayerCharacter:
		return true
	}
	return false
}

// MotifLifecycle 主题生命周期状态
type MotifLifecycle string

const (
	LifecycleEmerging  MotifLifecycle = "EMERGING"
	LifecycleStable    MotifLifecycle = "STABLE"
	LifecycleWaning    MotifLifecycle = "WANING"
	LifecycleDormant   MotifLifecycle = "DORMANT"
	LifecycleConcluded MotifLifecycle = "CONCLUDED"
)

// IsValid 检查生命周期状态是否合法
func (l MotifLifecycle) IsValid() bool {
	switch l {
	case LifecycleEmerging, LifecycleStable, LifecycleWaning, LifecycleDormant, LifecycleConcluded:
		return true
	}
	return false
}

// IsTerminal 是否为终止状态
func (l MotifLifecycle) IsTerminal() bool {
	return l == LifecycleDormant || l == LifecycleConcluded
}

// lifecycleOrder 生命周期单向推进顺序
var lifecycleOrder = map[MotifLifecycle]int{
	LifecycleEmerging: 0,
	LifecycleStable:   1,
	LifecycleWaning:   2,
	LifecycleDormant:  3,
}

// CanAdvanceTo 是否允许自然推进到 next。
// CONCLUDED 可从任意状态到达；其余状态只能前进，回退必须经由显式演化规则。
func (l MotifLifecycle) CanAdvanceTo(next MotifLifecycle) bool {
	if next == LifecycleConcluded {
		return true
	}
	cur, ok1 := lifecycleOrder[l]
	nxt, ok2 := lifecycleOrder[next]
	if !ok1 || !ok2 {
		return false
	}
	return nxt >= cur
}

// Multiplier 生命周期对效果强度的衰减系数
func (l MotifLifecycle) Multiplier() float64 {
	switch l {
	case LifecycleEmerging:
		return 0.7
	case LifecycleStable:
		return 1.0
	case LifecycleWaning:
		return 0.4
	default:
		return 0
	}
}

// TriggerType 演化触发类型
type TriggerType string

const (
	TriggerReinforcement TriggerType = "REINFORCEMENT"
	TriggerTimePassage   TriggerType = "TIME_PASSAGE"
	TriggerPlayerAction  TriggerType = "PLAYER_ACTION"
)

// IsValid 检查触发类型是否合法
func (t TriggerType) IsValid() bool {
	switch t {
	case TriggerReinforcement, TriggerTimePassage, TriggerPlayerAction:
		return true
	}
	return false
}

// EffectTarget 主题效果作用的目标系统，封闭枚举
type EffectTarget string

const (
	TargetNPC         EffectTarget = "NPC"
	TargetEvent       EffectTarget = "EVENT"
	TargetQuest       EffectTarget = "QUEST"
	TargetFaction     EffectTarget = "FACTION"
	TargetEnvironment EffectTarget = "ENVIRONMENT"
	TargetEconomy     EffectTarget = "ECONOMY"
	TargetNarrative   EffectTarget = "NARRATIVE"
)

// AllEffectTargets 全部目标系统
func AllEffectTargets() []EffectTarget {
	return []EffectTarget{
		TargetNPC, TargetEvent, TargetQuest, TargetFaction,
		TargetEnvironment, TargetEconomy, TargetNarrative,
	}
}

// IsValid 检查目标系统是否合法
func (t EffectTarget) IsValid() bool {
	switch t {
	case TargetNPC, TargetEvent, TargetQuest, TargetFaction,
		TargetEnvironment, TargetEconomy, TargetNarrative:
		return true
	}
	return false
}

// LocationInfo 主题的空间信息
type LocationInfo struct {
	RegionID      string  `json:"region_id,omitempty"`
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	Radius        float64 `json:"radius,omitempty"`
	FollowsPlayer bool    `json:"follows_player,omitempty"`
}

// MotifEffect 附着在主题上的单条跨系统效果
type MotifEffect struct {
	Target     EffectTarget      `json:"target"`
	Intensity  float64           `json:"intensity"`
	Parameters map[string]string `json:"parameters,omitempty"`
}

// MotifEvolutionRule 演化规则：触发类型 + 概率 + 冷却 + 变更量
type MotifEvolutionRule struct {
	TriggerType     TriggerType    `json:"trigger_type"`
	Probability     float64        `json:"probability"`
	CooldownHours   float64        `json:"cooldown_hours"`
	IntensityChange float64        `json:"intensity_change,omitempty"`
	LifecycleChange MotifLifecycle `json:"lifecycle_change,omitempty"`
	CategoryChange  MotifCategory  `json:"category_change,omitempty"`
	Description     string         `json:"description,omitempty"`
}

// EvolutionEvent 演化历史条目，只追加
type EvolutionEvent struct {
	Timestamp       time.Time      `json:"timestamp"`
	Trigger         TriggerType    `json:"trigger"`
	Description     string         `json:"description,omitempty"`
	IntensityBefore float64        `json:"intensity_before"`
	IntensityAfter  float64        `json:"intensity_after"`
	LifecycleBefore MotifLifecycle `json:"lifecycle_before"`
	LifecycleAfter  MotifLifecycle `json:"lifecycle_after"`
}

// 强度合法区间
const (
	MinIntensity = 1.0
	MaxIntensity = 10.0
)

// Motif 叙事主题实体
type Motif struct {
	ID          string         `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Category    MotifCategory  `json:"category" gorm:"index"`
	Scope       MotifScope     `json:"scope" gorm:"index"`
	Lifecycle   MotifLifecycle `json:"lifecycle" gorm:"index"`
	Intensity   float64        `json:"intensity"`
	IsCanonical bool           `json:"is_canonical"`

	Location *LocationInfo `json:"location,omitempty" gorm:"serializer:json"`
	PlayerID string        `json:"player_id,omitempty" gorm:"index"`

	// 叙事描述字段，创建时缺省从类别派生
	Theme              string   `json:"theme,omitempty"`
	Tone               string   `json:"tone,omitempty"`
	NarrativeDirection string   `json:"narrative_direction,omitempty"`
	Descriptors        []string `json:"descriptors,omitempty" gorm:"serializer:json"`

	Effects        []MotifEffect        `json:"effects,omitempty" gorm:"serializer:json"`
	EvolutionRules []MotifEvolutionRule `json:"evolution_rules,omitempty" gorm:"serializer:json"`

	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	EvolutionHistory []EvolutionEvent `json:"evolution_history,omitempty" gorm:"serializer:json"`
	LastEvolution    *time.Time       `json:"last_evolution,omitempty"`

	Metadata map[string]string `json:"metadata,omitempty" gorm:"serializer:json"`
	Tags     []string          `json:"tags,omitempty" gorm:"serializer:json"`

	// Version 乐观并发控制版本号，每次写回自增
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName GORM 表名
func (Motif) TableName() string {
	return "motifs"
}

// NewMotif 创建新主题并初始化派生字段
func NewMotif(name string, category MotifCategory, scope MotifScope, intensity float64) *Motif {
	now := time.Now().UTC()
	return &Motif{
		ID:          uuid.New().String(),
		Name:        name,
		Category:    category,
		Scope:       scope,
		Lifecycle:   LifecycleEmerging,
		Intensity:   intensity,
		Tone:        category.Tone(),
		Descriptors: []string{},
		Metadata:    make(map[string]string),
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Validate 校验全部不变量，返回包含所有违规项的校验错误
func (m *Motif) Validate() error {
	var violations []string

	if m.Name == "" {
		violations = append(violations, "name: must not be empty")
	}
	if !m.Category.IsValid() {
		violations = append(violations, fmt.Sprintf("category: unknown category %q", m.Category))
	}
	if !m.Scope.IsValid() {
		violations = append(violations, fmt.Sprintf("scope: unknown scope %q", m.Scope))
	}
	if !m.Lifecycle.IsValid() {
		violations = append(violations, fmt.Sprintf("lifecycle: unknown lifecycle %q", m.Lifecycle))
	}
	if m.Intensity < MinIntensity || m.Intensity > MaxIntensity {
		violations = append(violations,
			fmt.Sprintf("intensity: %.2f outside [%.0f, %.0f]", m.Intensity, MinIntensity, MaxIntensity))
	}

	switch {
	case m.Scope == ScopeGlobal && m.Location != nil:
		violations = append(violations, "location: must be null for GLOBAL scope")
	case m.Scope != ScopeGlobal && m.Scope.IsValid() && m.Location == nil:
		violations = append(violations, fmt.Sprintf("location: required for %s scope", m.Scope))
	}

	if m.Scope == ScopeRegional && m.Location != nil && m.Location.RegionID == "" {
		violations = append(violations, "location.region_id: required for REGIONAL scope")
	}
	if m.Scope == ScopeLocal && m.Location != nil && m.Location.Radius < 0 {
		violations = append(violations, "location.radius: must not be negative")
	}
	if m.Scope == ScopePlayerCharacter && m.PlayerID == "" {
		violations = append(violations, "player_id: required for PLAYER_CHARACTER scope")
	}
	if m.IsCanonical && m.Scope != ScopeGlobal {
		violations = append(violations, "is_canonical: canonical motifs must have GLOBAL scope")
	}

	if m.StartTime != nil && m.EndTime != nil && !m.EndTime.After(*m.StartTime) {
		violations = append(violations, "end_time: must be after start_time")
	}

	for i, e := range m.Effects {
		if !e.Target.IsValid() {
			violations = append(violations, fmt.Sprintf("effects[%d].target: unknown target %q", i, e.Target))
		}
		if e.Intensity < 0 {
			violations = append(violations, fmt.Sprintf("effects[%d].intensity: must not be negative", i))
		}
	}

	for i, r := range m.EvolutionRules {
		if !r.TriggerType.IsValid() {
			violations = append(violations, fmt.Sprintf("evolution_rules[%d].trigger_type: unknown trigger %q", i, r.TriggerType))
		}
		if r.Probability < 0 || r.Probability > 1 {
			violations = append(violations, fmt.Sprintf("evolution_rules[%d].probability: must be within [0, 1]", i))
		}
		if r.CooldownHours < 0 {
			violations = append(violations, fmt.Sprintf("evolution_rules[%d].cooldown_hours: must not be negative", i))
		}
		if r.LifecycleChange != "" && !r.LifecycleChange.IsValid() {
			violations = append(violations, fmt.Sprintf("evolution_rules[%d].lifecycle_change: unknown lifecycle %q", i, r.LifecycleChange))
		}
		if r.CategoryChange != "" && !r.CategoryChange.IsValid() {
			violations = append(violations, fmt.Sprintf("evolution_rules[%d].category_change: unknown category %q", i, r.CategoryChange))
		}
	}

	if len(violations) > 0 {
		return errors.NewValidation(violations)
	}
	return nil
}

// IsActive 主题是否处于活跃状态（非终止）
func (m *Motif) IsActive() bool {
	return !m.Lifecycle.IsTerminal()
}

// Progress 按时间计算生命周期进度，钳制到 [0, 1]。
// 缺少起止时间的常驻主题返回 ok=false。
func (m *Motif) Progress(now time.Time) (float64, bool) {
	if m.StartTime == nil || m.EndTime == nil {
		return 0, false
	}
	total := m.EndTime.Sub(*m.StartTime)
	if total <= 0 {
		return 1, true
	}
	p := float64(now.Sub(*m.StartTime)) / float64(total)
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return p, true
}

// LifecycleForProgress 时间进度对应的生命周期状态
func LifecycleForProgress(progress float64) MotifLifecycle {
	switch {
	case progress < 0.25:
		return LifecycleEmerging
	case progress < 0.75:
		return LifecycleStable
	case progress < 1.0:
		return LifecycleWaning
	default:
		return LifecycleDormant
	}
}

// IsExpired 主题是否已过期
func (m *Motif) IsExpired(now time.Time) bool {
	return m.EndTime != nil && now.After(*m.EndTime)
}

// ClampIntensity 将任意强度值钳制到合法区间
func ClampIntensity(v float64) float64 {
	if v < MinIntensity {
		return MinIntensity
	}
	if v > MaxIntensity {
		return MaxIntensity
	}
	return v
}

// ApplyIntensityChange 施加强度变更并钳制
func (m *Motif) ApplyIntensityChange(delta float64) {
	m.Intensity = ClampIntensity(m.Intensity + delta)
	m.UpdatedAt = time.Now().UTC()
}

// RecordEvolution 追加一条演化历史并更新 last_evolution
func (m *Motif) RecordEvolution(ev EvolutionEvent) {
	m.EvolutionHistory = append(m.EvolutionHistory, ev)
	t := ev.Timestamp
	m.LastEvolution = &t
	m.UpdatedAt = time.Now().UTC()
}

// IntensityDescriptor 强度档位描述
func IntensityDescriptor(intensity float64) string {
	switch {
	case intensity >= 7:
		return "overwhelming"
	case intensity >= 4:
		return "significant"
	default:
		return "subtle"
	}
}
