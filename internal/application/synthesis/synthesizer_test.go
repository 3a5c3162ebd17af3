package synthesis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rpg-motif-api/internal/domain/entity"
)

func newSynth() *Synthesizer {
	return NewSynthesizer(nil)
}

func namedMotif(name string, category entity.MotifCategory, intensity float64) *entity.Motif {
	return entity.NewMotif(name, category, entity.ScopeGlobal, intensity)
}

func TestSynthesizeEmptyReturnsNeutralPayload(t *testing.T) {
	p := newSynth().Synthesize(nil, SizeMedium)

	require.NotNil(t, p)
	assert.Nil(t, p.DominantMotif)
	assert.Equal(t, "neutral", p.Tone)
	assert.Equal(t, 0.0, p.BlendedIntensity)
	assert.NotNil(t, p.Descriptors)
	assert.Empty(t, p.Descriptors)
	assert.Equal(t, "Events unfold without thematic influence.", p.Summary)
	assert.Equal(t, 0, p.MotifCount)
}

func TestSynthesizeDominantMotif(t *testing.T) {
	strong := namedMotif("Creeping Dread", entity.CategoryFear, 9)
	weak := namedMotif("Faint Hope", entity.CategoryHope, 3)

	p := newSynth().Synthesize([]*entity.Motif{strong, weak}, SizeMedium)

	require.NotNil(t, p.DominantMotif)
	assert.Equal(t, strong.ID, p.DominantMotif.ID)
	assert.Equal(t, entity.CategoryFear, p.DominantMotif.Category)
	assert.Equal(t, "fear", p.Theme)
	assert.Equal(t, "dark", p.Tone)
	assert.Equal(t, 2, p.MotifCount)
}

func TestSynthesizeBlendedIntensity(t *testing.T) {
	a := namedMotif("A", entity.CategoryFear, 8)
	b := namedMotif("B", entity.CategoryFear, 4)

	p := newSynth().Synthesize([]*entity.Motif{a, b}, SizeMedium)

	// 加权平均 (8² + 4²) / (8 + 4) = 80/12
	assert.InDelta(t, 80.0/12.0, p.BlendedIntensity, 1e-9)
}

func TestSynthesizeToneVoting(t *testing.T) {
	dark := namedMotif("Dark", entity.CategoryFear, 8)
	light := namedMotif("Light", entity.CategoryHope, 3)

	p := newSynth().Synthesize([]*entity.Motif{dark, light}, SizeMedium)
	assert.Equal(t, "dark", p.Tone)

	// 平局回落中性
	even := namedMotif("Even", entity.CategoryHope, 8)
	p = newSynth().Synthesize([]*entity.Motif{dark, even}, SizeMedium)
	assert.Equal(t, "neutral", p.Tone)
}

func TestSynthesizeDescriptorCap(t *testing.T) {
	motifs := make([]*entity.Motif, 0, 8)
	for _, c := range []entity.MotifCategory{
		entity.CategoryFear, entity.CategoryHope, entity.CategoryWar, entity.CategoryPeace,
		entity.CategoryGreed, entity.CategoryMercy, entity.CategoryChaos, entity.CategoryTruth,
	} {
		motifs = append(motifs, namedMotif(string(c), c, 5))
	}

	p := newSynth().Synthesize(motifs, SizeMedium)
	assert.LessOrEqual(t, len(p.Descriptors), maxDescriptors)

	seen := map[string]bool{}
	for _, d := range p.Descriptors {
		assert.False(t, seen[d], "duplicate descriptor %s", d)
		seen[d] = true
	}
}

func TestSynthesizeSummarySizes(t *testing.T) {
	m := namedMotif("Creeping Dread", entity.CategoryFear, 9)
	s := newSynth()

	small := s.Synthesize([]*entity.Motif{m}, SizeSmall)
	medium := s.Synthesize([]*entity.Motif{m}, SizeMedium)
	large := s.Synthesize([]*entity.Motif{m}, SizeLarge)

	assert.Less(t, len(small.Summary), len(medium.Summary))
	assert.Less(t, len(medium.Summary), len(large.Summary))
	assert.Contains(t, large.Summary, "Creeping Dread")

	// 规模只影响文案，不影响计算值
	assert.Equal(t, small.BlendedIntensity, large.BlendedIntensity)
	assert.Equal(t, small.Tone, large.Tone)
}

func TestSynthesizeInvalidSizeFallsBackToMedium(t *testing.T) {
	m := namedMotif("Subject", entity.CategoryFear, 5)
	p := newSynth().Synthesize([]*entity.Motif{m}, ContextSize("huge"))
	medium := newSynth().Synthesize([]*entity.Motif{m}, SizeMedium)
	assert.Equal(t, medium.Summary, p.Summary)
}

func TestSynthesizeGuidance(t *testing.T) {
	m := namedMotif("Creeping Dread", entity.CategoryFear, 9)
	p := newSynth().Synthesize([]*entity.Motif{m}, SizeMedium)

	require.NotNil(t, p.Guidance)
	assert.Equal(t, "overwhelming", p.Guidance.Emphasis)
	assert.NotEmpty(t, p.Guidance.NPCBehavior)
	assert.NotEmpty(t, p.Guidance.Events)
	assert.LessOrEqual(t, len(p.Guidance.DialogueKeywords), 5)
}

func TestSynthesizeChaosEventInjection(t *testing.T) {
	chaos := namedMotif("Spreading Chaos", entity.CategoryChaos, 8)
	calm := namedMotif("Mild Chaos", entity.CategoryChaos, 4)

	s := newSynth()
	intense := s.Synthesize([]*entity.Motif{chaos}, SizeMedium)
	mild := s.Synthesize([]*entity.Motif{calm}, SizeMedium)

	assert.Greater(t, len(intense.Guidance.Events), len(mild.Guidance.Events))
}
