// Package synthesis 将多个并存主题合成为单一叙事引导载荷
package synthesis

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"

	"rpg-motif-api/internal/application/spatial"
	"rpg-motif-api/internal/domain/entity"
	"rpg-motif-api/internal/domain/service"
	"rpg-motif-api/pkg/metrics"
)

var tracer = otel.Tracer("synthesis")

// ContextSize 语境规模，只影响生成文案的详略，不影响计算值
type ContextSize string

const (
	SizeSmall  ContextSize = "small"
	SizeMedium ContextSize = "medium"
	SizeLarge  ContextSize = "large"
)

// IsValid 检查语境规模是否合法
func (s ContextSize) IsValid() bool {
	switch s {
	case SizeSmall, SizeMedium, SizeLarge:
		return true
	}
	return false
}

// maxDescriptors 合成载荷中描述词上限
const maxDescriptors = 10

// DominantMotif 合成载荷中的主导主题摘要
type DominantMotif struct {
	ID        string                `json:"id"`
	Name      string                `json:"name"`
	Category  entity.MotifCategory  `json:"category"`
	Intensity float64               `json:"intensity"`
	Lifecycle entity.MotifLifecycle `json:"lifecycle"`
}

// Guidance 按目标域拆分的叙事引导
type Guidance struct {
	NPCBehavior      string   `json:"npc_behavior"`
	Events           []string `json:"events"`
	Environment      string   `json:"environment"`
	DialogueKeywords []string `json:"dialogue_keywords"`
	Emphasis         string   `json:"emphasis"`
}

// Payload 叙事合成结果
type Payload struct {
	DominantMotif      *DominantMotif `json:"dominant_motif,omitempty"`
	BlendedIntensity   float64        `json:"blended_intensity"`
	Theme              string         `json:"theme"`
	Tone               string         `json:"tone"`
	NarrativeDirection string         `json:"narrative_direction"`
	Descriptors        []string       `json:"descriptors"`
	Guidance           *Guidance      `json:"guidance,omitempty"`
	Summary            string         `json:"summary"`
	MotifCount         int            `json:"motif_count"`
}

// Synthesizer 叙事合成器
type Synthesizer struct {
	resolver *spatial.Resolver
}

// NewSynthesizer 创建合成器
func NewSynthesizer(resolver *spatial.Resolver) *Synthesizer {
	return &Synthesizer{resolver: resolver}
}

// SynthesizeAt 解析查询位置的活跃主题并合成载荷
func (s *Synthesizer) SynthesizeAt(ctx context.Context, q *spatial.Query, size ContextSize) (*Payload, error) {
	ctx, span := tracer.Start(ctx, "synthesis.Synthesizer.SynthesizeAt")
	defer span.End()

	motifs, err := s.resolver.MotifsAt(ctx, q)
	if err != nil {
		return nil, err
	}
	return s.Synthesize(motifs, size), nil
}

// Synthesize 将按影响力排序的主题集合成单一载荷。
// 空集合返回结构完整的中性载荷，不是错误。
func (s *Synthesizer) Synthesize(motifs []*entity.Motif, size ContextSize) *Payload {
	if !size.IsValid() {
		size = SizeMedium
	}
	metrics.SynthesisTotal.WithLabelValues(string(size)).Inc()
	metrics.SynthesisMotifCount.Observe(float64(len(motifs)))

	if len(motifs) == 0 {
		return &Payload{
			Tone:        "neutral",
			Descriptors: []string{},
			Summary:     "Events unfold without thematic influence.",
		}
	}

	dominant := motifs[0]
	blended := blendedIntensity(motifs)
	tone := blendedTone(motifs)
	descriptors := unionDescriptors(motifs)

	theme := dominant.Theme
	if theme == "" {
		theme = service.ThemeFor(dominant.Category)
	}
	direction := dominant.NarrativeDirection
	if direction == "" {
		direction = service.NarrativeDirectionFor(dominant.Category, blended)
	}

	p := &Payload{
		DominantMotif: &DominantMotif{
			ID:        dominant.ID,
			Name:      dominant.Name,
			Category:  dominant.Category,
			Intensity: dominant.Intensity,
			Lifecycle: dominant.Lifecycle,
		},
		BlendedIntensity:   blended,
		Theme:              theme,
		Tone:               tone,
		NarrativeDirection: direction,
		Descriptors:        descriptors,
		MotifCount:         len(motifs),
	}
	p.Guidance = buildGuidance(dominant, tone, blended, descriptors)
	p.Summary = summarize(p, motifs, size)
	return p
}

// blendedIntensity 以各主题自身强度为权重的加权平均
func blendedIntensity(motifs []*entity.Motif) float64 {
	var weighted, total float64
	for _, m := range motifs {
		weighted += m.Intensity * m.Intensity
		total += m.Intensity
	}
	if total == 0 {
		return 0
	}
	return weighted / total
}

// blendedTone 按强度加权的基调投票，平局回落中性
func blendedTone(motifs []*entity.Motif) string {
	votes := map[string]float64{}
	for _, m := range motifs {
		tone := m.Tone
		if tone == "" {
			tone = m.Category.Tone()
		}
		votes[tone] += m.Intensity
	}
	if votes["dark"] > votes["light"] && votes["dark"] > votes["neutral"] {
		return "dark"
	}
	if votes["light"] > votes["dark"] && votes["light"] > votes["neutral"] {
		return "light"
	}
	return "neutral"
}

// unionDescriptors 描述词并集，保持遭遇顺序，封顶截断
func unionDescriptors(motifs []*entity.Motif) []string {
	seen := map[string]bool{}
	out := make([]string, 0, maxDescriptors)
	for _, m := range motifs {
		descriptors := m.Descriptors
		if len(descriptors) == 0 {
			descriptors = service.GenerateDescriptors(m.Category, m.Intensity)
		}
		for _, d := range descriptors {
			if seen[d] || len(out) >= maxDescriptors {
				continue
			}
			seen[d] = true
			out = append(out, d)
		}
	}
	return out
}

// 按基调查表的引导素材
var (
	npcBehaviorByTone = map[string]string{
		"dark":    "NPCs are cautious and suspicious, quick to assume the worst",
		"light":   "NPCs are open and generous, inclined to trust and assist",
		"neutral": "NPCs are measured and watchful, committing to neither hope nor dread",
	}
	eventsByTone = map[string][]string{
		"dark":    {"rumors of misfortune spread", "old grudges resurface"},
		"light":   {"small acts of kindness ripple outward", "reunions and reconciliations occur"},
		"neutral": {"daily routines continue with an undercurrent of change"},
	}
	environmentByTone = map[string]string{
		"dark":    "shadows linger, sounds carry further than they should",
		"light":   "light softens hard edges, spaces feel more welcoming",
		"neutral": "the environment holds its breath, ordinary yet expectant",
	}
)

// buildGuidance 由基调、强度档位与描述词查表生成引导结构
func buildGuidance(dominant *entity.Motif, tone string, blended float64, descriptors []string) *Guidance {
	emphasis := entity.IntensityDescriptor(blended)

	events := append([]string{}, eventsByTone[tone]...)
	// 高强度混沌语境注入混沌事件
	if dominant.Category == entity.CategoryChaos && dominant.Intensity >= 7 {
		events = append(events, service.ChaosEventFor(int(dominant.Intensity)))
	}

	keywords := descriptors
	if len(keywords) > 5 {
		keywords = keywords[:5]
	}

	return &Guidance{
		NPCBehavior:      npcBehaviorByTone[tone],
		Events:           events,
		Environment:      environmentByTone[tone],
		DialogueKeywords: keywords,
		Emphasis:         emphasis,
	}
}

// summarize 生成文案摘要，语境规模只决定详略
func summarize(p *Payload, motifs []*entity.Motif, size ContextSize) string {
	base := fmt.Sprintf("The %s presence of %s shapes the narrative with a %s tone.",
		entity.IntensityDescriptor(p.BlendedIntensity), p.Theme, p.Tone)

	switch size {
	case SizeSmall:
		return base
	case SizeLarge:
		names := make([]string, 0, len(motifs))
		for _, m := range motifs {
			names = append(names, m.Name)
		}
		return fmt.Sprintf("%s %s Contributing motifs: %s. %s",
			base,
			fmt.Sprintf("Narrative direction: %s.", p.NarrativeDirection),
			strings.Join(names, ", "),
			fmt.Sprintf("Guidance emphasis is %s across %d motif(s).", p.Guidance.Emphasis, p.MotifCount),
		)
	default:
		return fmt.Sprintf("%s Narrative direction: %s.", base, p.NarrativeDirection)
	}
}
