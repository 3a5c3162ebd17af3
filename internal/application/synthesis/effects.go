// Package synthesis 将多个并存主题合成为单一叙事引导载荷
package synthesis

import (
	"fmt"

	"rpg-motif-api/internal/domain/entity"
)

// negligibleThreshold 低于该有效强度的效果直接跳过
const negligibleThreshold = 0.1

// EffectResult 单条效果对目标系统的计算产物。
// 本层只产出数据，由调用方负责分发到各目标系统。
type EffectResult struct {
	Target             entity.EffectTarget `json:"target"`
	Applied            bool                `json:"applied"`
	EffectiveIntensity float64             `json:"effective_intensity"`
	Payload            map[string]string   `json:"payload,omitempty"`
}

// effectApplier 目标系统效果计算的统一契约
type effectApplier interface {
	apply(effective float64, effect entity.MotifEffect, m *entity.Motif) EffectResult
}

// applierFor 封闭的目标系统分派表。
// 穷举全部枚举值：新增目标系统必须在此显式接入。
func applierFor(target entity.EffectTarget) effectApplier {
	switch target {
	case entity.TargetNPC:
		return npcApplier{}
	case entity.TargetEvent:
		return eventApplier{}
	case entity.TargetQuest:
		return questApplier{}
	case entity.TargetFaction:
		return factionApplier{}
	case entity.TargetEnvironment:
		return environmentApplier{}
	case entity.TargetEconomy:
		return economyApplier{}
	case entity.TargetNarrative:
		return narrativeApplier{}
	}
	return nil
}

// ApplyEffects 为选定目标系统计算主题效果载荷。
// 有效强度 = 效果强度 × 生命周期衰减系数；低于阈值的效果产出 no-op 结果。
func ApplyEffects(m *entity.Motif, targets []entity.EffectTarget) map[entity.EffectTarget][]EffectResult {
	if len(targets) == 0 {
		targets = entity.AllEffectTargets()
	}

	wanted := make(map[entity.EffectTarget]bool, len(targets))
	results := make(map[entity.EffectTarget][]EffectResult, len(targets))
	for _, t := range targets {
		if t.IsValid() {
			wanted[t] = true
			results[t] = []EffectResult{}
		}
	}

	multiplier := m.Lifecycle.Multiplier()
	for _, effect := range m.Effects {
		if !wanted[effect.Target] {
			continue
		}

		effective := effect.Intensity * multiplier
		if effective < negligibleThreshold {
			results[effect.Target] = append(results[effect.Target], EffectResult{
				Target:  effect.Target,
				Applied: false,
			})
			continue
		}

		applier := applierFor(effect.Target)
		results[effect.Target] = append(results[effect.Target], applier.apply(effective, effect, m))
	}

	return results
}

func basePayload(effective float64, effect entity.MotifEffect, m *entity.Motif) map[string]string {
	payload := map[string]string{
		"motif_id":  m.ID,
		"category":  string(m.Category),
		"tone":      m.Category.Tone(),
		"magnitude": entity.IntensityDescriptor(effective),
	}
	for k, v := range effect.Parameters {
		payload[k] = v
	}
	return payload
}

type npcApplier struct{}

func (npcApplier) apply(effective float64, effect entity.MotifEffect, m *entity.Motif) EffectResult {
	payload := basePayload(effective, effect, m)
	payload["behavior_bias"] = npcBehaviorByTone[m.Category.Tone()]
	return EffectResult{Target: entity.TargetNPC, Applied: true, EffectiveIntensity: effective, Payload: payload}
}

type eventApplier struct{}

func (eventApplier) apply(effective float64, effect entity.MotifEffect, m *entity.Motif) EffectResult {
	payload := basePayload(effective, effect, m)
	payload["event_frequency_bias"] = fmt.Sprintf("%.2f", effective/entity.MaxIntensity)
	return EffectResult{Target: entity.TargetEvent, Applied: true, EffectiveIntensity: effective, Payload: payload}
}

type questApplier struct{}

func (questApplier) apply(effective float64, effect entity.MotifEffect, m *entity.Motif) EffectResult {
	payload := basePayload(effective, effect, m)
	payload["quest_theme"] = string(m.Category)
	return EffectResult{Target: entity.TargetQuest, Applied: true, EffectiveIntensity: effective, Payload: payload}
}

type factionApplier struct{}

func (factionApplier) apply(effective float64, effect entity.MotifEffect, m *entity.Motif) EffectResult {
	payload := basePayload(effective, effect, m)
	if m.Category.IsDark() {
		payload["relation_drift"] = fmt.Sprintf("%.2f", -effective/entity.MaxIntensity)
	} else {
		payload["relation_drift"] = fmt.Sprintf("%.2f", effective/entity.MaxIntensity)
	}
	return EffectResult{Target: entity.TargetFaction, Applied: true, EffectiveIntensity: effective, Payload: payload}
}

type environmentApplier struct{}

func (environmentApplier) apply(effective float64, effect entity.MotifEffect, m *entity.Motif) EffectResult {
	payload := basePayload(effective, effect, m)
	payload["ambience"] = environmentByTone[m.Category.Tone()]
	return EffectResult{Target: entity.TargetEnvironment, Applied: true, EffectiveIntensity: effective, Payload: payload}
}

type economyApplier struct{}

func (economyApplier) apply(effective float64, effect entity.MotifEffect, m *entity.Motif) EffectResult {
	payload := basePayload(effective, effect, m)
	// 暗色主题收紧市场，亮色主题放松市场
	if m.Category.IsDark() {
		payload["price_volatility"] = fmt.Sprintf("%.2f", effective/entity.MaxIntensity)
	} else {
		payload["price_volatility"] = fmt.Sprintf("%.2f", effective/(2*entity.MaxIntensity))
	}
	return EffectResult{Target: entity.TargetEconomy, Applied: true, EffectiveIntensity: effective, Payload: payload}
}

type narrativeApplier struct{}

func (narrativeApplier) apply(effective float64, effect entity.MotifEffect, m *entity.Motif) EffectResult {
	payload := basePayload(effective, effect, m)
	payload["direction"] = m.NarrativeDirection
	payload["theme"] = m.Theme
	return EffectResult{Target: entity.TargetNarrative, Applied: true, EffectiveIntensity: effective, Payload: payload}
}
