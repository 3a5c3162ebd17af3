// Package evolution 实现主题的规则驱动演化
package evolution

import (
	"context"
	"math/rand"
	"time"

	"go.opentelemetry.io/otel"

	"rpg-motif-api/internal/domain/entity"
	"rpg-motif-api/internal/domain/repository"
	"rpg-motif-api/pkg/errors"
	"rpg-motif-api/pkg/logger"
	"rpg-motif-api/pkg/metrics"
)

var tracer = otel.Tracer("evolution")

// Result 单个主题一次演化触发的结果
type Result struct {
	MotifID        string                  `json:"motif_id"`
	RulesEvaluated int                     `json:"rules_evaluated"`
	RulesFired     int                     `json:"rules_fired"`
	Events         []entity.EvolutionEvent `json:"events,omitempty"`
	Motif          *entity.Motif           `json:"motif"`
}

// SweepResult 时间流逝演化扫描的结果
type SweepResult struct {
	Processed int      `json:"processed"`
	Fired     int      `json:"fired"`
	Failures  []string `json:"failures,omitempty"`
}

// Engine 演化引擎。
// 规则按文档顺序独立掷骰，同一次触发可命中多条规则。
type Engine struct {
	motifs repository.MotifRepository
	roll   func() float64
	now    func() time.Time
}

// NewEngine 创建演化引擎
func NewEngine(motifs repository.MotifRepository) *Engine {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Engine{
		motifs: motifs,
		roll:   rng.Float64,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithRoll 替换随机源，测试用
func (e *Engine) WithRoll(roll func() float64) *Engine {
	e.roll = roll
	return e
}

// WithClock 替换时钟，测试用
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Trigger 对单个主题应用一次外部触发
func (e *Engine) Trigger(ctx context.Context, motifID string, trigger entity.TriggerType, description string) (*Result, error) {
	ctx, span := tracer.Start(ctx, "evolution.Engine.Trigger")
	defer span.End()

	if !trigger.IsValid() {
		return nil, errors.NewInvalidQuery("unknown trigger type: " + string(trigger))
	}

	m, err := e.motifs.GetByID(ctx, motifID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errors.NewNotFound("motif", motifID)
	}

	result := e.applyRules(m, trigger, description)
	if result.RulesFired > 0 {
		if err := e.motifs.Update(ctx, m); err != nil {
			return nil, err
		}
		metrics.EvolutionsTriggeredTotal.WithLabelValues(string(trigger)).Add(float64(result.RulesFired))
	}
	return result, nil
}

// applyRules 按文档顺序评估匹配规则并施加变更
func (e *Engine) applyRules(m *entity.Motif, trigger entity.TriggerType, description string) *Result {
	now := e.now()
	result := &Result{MotifID: m.ID, Motif: m}

	for _, rule := range m.EvolutionRules {
		if rule.TriggerType != trigger {
			continue
		}
		result.RulesEvaluated++

		if !e.cooldownElapsed(m, rule, now) {
			continue
		}
		if e.roll() > rule.Probability {
			continue
		}

		ev := entity.EvolutionEvent{
			Timestamp:       now,
			Trigger:         trigger,
			Description:     description,
			IntensityBefore: m.Intensity,
			LifecycleBefore: m.Lifecycle,
		}
		if ev.Description == "" {
			ev.Description = rule.Description
		}

		if rule.IntensityChange != 0 {
			m.ApplyIntensityChange(rule.IntensityChange)
		}
		if rule.LifecycleChange != "" {
			// 显式规则允许回退生命周期
			m.Lifecycle = rule.LifecycleChange
		}
		if rule.CategoryChange != "" {
			m.Category = rule.CategoryChange
			m.Tone = rule.CategoryChange.Tone()
		}

		ev.IntensityAfter = m.Intensity
		ev.LifecycleAfter = m.Lifecycle
		m.RecordEvolution(ev)

		result.RulesFired++
		result.Events = append(result.Events, ev)
	}

	return result
}

// cooldownElapsed 规则冷却是否已过
func (e *Engine) cooldownElapsed(m *entity.Motif, rule entity.MotifEvolutionRule, now time.Time) bool {
	if m.LastEvolution == nil || rule.CooldownHours <= 0 {
		return true
	}
	cooldown := time.Duration(rule.CooldownHours * float64(time.Hour))
	return now.Sub(*m.LastEvolution) >= cooldown
}

// ProcessTimePassage 对全部活跃主题应用 TIME_PASSAGE 触发。
// 单个主题的失败不中断扫描，逐项收集后随成功计数一并返回。
func (e *Engine) ProcessTimePassage(ctx context.Context) (*SweepResult, error) {
	ctx, span := tracer.Start(ctx, "evolution.Engine.ProcessTimePassage")
	defer span.End()

	active, err := e.motifs.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	result := &SweepResult{}
	for _, m := range active {
		res := e.applyRules(m, entity.TriggerTimePassage, "the passage of time")
		result.Processed++
		if res.RulesFired == 0 {
			continue
		}
		if err := e.motifs.Update(ctx, m); err != nil {
			logger.Warn(ctx, "time-passage evolution write failed",
				"motif_id", m.ID, "error", err.Error())
			result.Failures = append(result.Failures, err.Error())
			continue
		}
		metrics.EvolutionsTriggeredTotal.WithLabelValues(string(entity.TriggerTimePassage)).Add(float64(res.RulesFired))
		result.Fired += res.RulesFired
	}
	return result, nil
}

// Reinforce 强化玩家名下同类别的既有主题而非创建重复主题。
// 返回被强化的主题；不存在匹配主题时返回 (nil, nil)，由调用方走创建路径。
func (e *Engine) Reinforce(ctx context.Context, playerID string, category entity.MotifCategory, boost float64, description string) (*entity.Motif, error) {
	ctx, span := tracer.Start(ctx, "evolution.Engine.Reinforce")
	defer span.End()

	existing, err := e.motifs.FindByPlayerAndCategory(ctx, playerID, category)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	now := e.now()
	ev := entity.EvolutionEvent{
		Timestamp:       now,
		Trigger:         entity.TriggerReinforcement,
		Description:     description,
		IntensityBefore: existing.Intensity,
		LifecycleBefore: existing.Lifecycle,
	}
	existing.ApplyIntensityChange(boost)
	ev.IntensityAfter = existing.Intensity
	ev.LifecycleAfter = existing.Lifecycle
	existing.RecordEvolution(ev)

	if err := e.motifs.Update(ctx, existing); err != nil {
		return nil, err
	}
	metrics.EvolutionsTriggeredTotal.WithLabelValues(string(entity.TriggerReinforcement)).Inc()
	return existing, nil
}
