package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConflictPairKeyIsOrderIndependent(t *testing.T) {
	assert.Equal(t, ConflictPairKey("a", "b"), ConflictPairKey("b", "a"))
	assert.Equal(t, "a:b", ConflictPairKey("b", "a"))
}

func TestSeverityForIntensity(t *testing.T) {
	assert.Equal(t, SeverityLow, SeverityForIntensity(8))
	assert.Equal(t, SeverityLow, SeverityForIntensity(11.9))
	assert.Equal(t, SeverityMedium, SeverityForIntensity(12))
	assert.Equal(t, SeverityMedium, SeverityForIntensity(15.9))
	assert.Equal(t, SeverityHigh, SeverityForIntensity(16))
	assert.Equal(t, SeverityHigh, SeverityForIntensity(20))
}

func TestNewMotifConflict(t *testing.T) {
	a := NewMotif("Rising Hope", CategoryHope, ScopeGlobal, 8)
	b := NewMotif("Creeping Despair", CategoryDespair, ScopeGlobal, 9)

	c := NewMotifConflict(a, b, ConflictOpposingThemes, 1.0)

	assert.NotEmpty(t, c.ID)
	assert.Equal(t, ConflictPairKey(a.ID, b.ID), c.PairKey)
	assert.Equal(t, SeverityHigh, c.Severity)
	assert.Equal(t, ConflictActive, c.Status)
	assert.Equal(t, 1.0, c.OverlapFraction)
}

func TestConflictTransitions(t *testing.T) {
	a := NewMotif("Rising Hope", CategoryHope, ScopeGlobal, 5)
	b := NewMotif("Creeping Despair", CategoryDespair, ScopeGlobal, 4)
	c := NewMotifConflict(a, b, ConflictOpposingThemes, 0.5)

	c.Refresh(17, 0.8)
	assert.Equal(t, SeverityHigh, c.Severity)
	assert.Equal(t, 0.8, c.OverlapFraction)

	c.Resolve()
	assert.Equal(t, ConflictResolved, c.Status)
	require.NotNil(t, c.ResolvedAt)

	d := NewMotifConflict(a, b, ConflictOpposingThemes, 0.5)
	d.Ignore()
	assert.Equal(t, ConflictIgnored, d.Status)
	assert.Nil(t, d.ResolvedAt)
}
