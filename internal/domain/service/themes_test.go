package service

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rpg-motif-api/internal/domain/entity"
)

func TestAreOpposing(t *testing.T) {
	assert.True(t, AreOpposing(entity.CategoryHope, entity.CategoryDespair))
	assert.True(t, AreOpposing(entity.CategoryChaos, entity.CategoryControl))
	assert.False(t, AreOpposing(entity.CategoryHope, entity.CategoryWar))
	assert.False(t, AreOpposing(entity.CategoryHope, entity.CategoryHope))
}

func TestOpposingMapIsSymmetric(t *testing.T) {
	for cat, opponents := range opposingCategories {
		for _, o := range opponents {
			assert.True(t, AreOpposing(o, cat), "%s -> %s has no reverse entry", cat, o)
		}
	}
}

func TestGenerateName(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	name := GenerateName(rng, entity.CategoryFear, entity.ScopeLocal)
	assert.Contains(t, name, "Fear")
	assert.Contains(t, name, "of the")
}

func TestGenerateDescriptors(t *testing.T) {
	d := GenerateDescriptors(entity.CategoryHope, 8)
	require.Len(t, d, 3)
	assert.Contains(t, d, "hope")
	assert.Contains(t, d, "overwhelming")
	assert.Contains(t, d, "light")
}

func TestNarrativeDirectionForScalesWithIntensity(t *testing.T) {
	low := NarrativeDirectionFor(entity.CategoryGreed, 2)
	mid := NarrativeDirectionFor(entity.CategoryGreed, 5)
	high := NarrativeDirectionFor(entity.CategoryGreed, 9)

	assert.Contains(t, low, "faint traces")
	assert.Contains(t, mid, "runs beneath")
	assert.Contains(t, high, "inexorably")
}

func TestDurationDaysWithinBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 100; i++ {
		days := DurationDays(rng, entity.ScopeGlobal, 10)
		assert.GreaterOrEqual(t, days, 30)
		assert.LessOrEqual(t, days, 90)

		days = DurationDays(rng, entity.ScopeLocal, 1)
		assert.GreaterOrEqual(t, days, 5)
		assert.LessOrEqual(t, days, 15)
	}
}

func TestChaosEventFor(t *testing.T) {
	assert.Equal(t, ChaosEvents[0], ChaosEventFor(0))
	assert.Equal(t, ChaosEvents[3], ChaosEventFor(3+len(ChaosEvents)))
	assert.NotEmpty(t, ChaosEventFor(-5))
}
