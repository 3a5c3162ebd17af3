package messaging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rpg-motif-api/internal/application/synthesis"
	"rpg-motif-api/internal/domain/entity"
)

func TestNewMessage(t *testing.T) {
	msg, err := NewMessage("motif_effect", "m1", map[string]string{"k": "v"})
	require.NoError(t, err)

	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, "motif_effect", msg.Type)
	assert.Equal(t, "m1", msg.MotifID)
	assert.False(t, msg.CreatedAt.IsZero())

	var payload map[string]string
	require.NoError(t, msg.UnmarshalPayload(&payload))
	assert.Equal(t, "v", payload["k"])
}

func TestSetMetadata(t *testing.T) {
	msg, err := NewMessage("motif_effect", "m1", nil)
	require.NoError(t, err)

	msg.SetMetadata("category", "FEAR")
	assert.Equal(t, "FEAR", msg.Metadata["category"])
}

func TestFilterApplied(t *testing.T) {
	results := map[entity.EffectTarget][]synthesis.EffectResult{
		entity.TargetNPC: {
			{Target: entity.TargetNPC, Applied: true, EffectiveIntensity: 4},
			{Target: entity.TargetNPC, Applied: false},
		},
		entity.TargetQuest:   {{Target: entity.TargetQuest, Applied: false}},
		entity.TargetEconomy: {},
	}

	filtered := filterApplied(results)

	require.Len(t, filtered, 1)
	require.Len(t, filtered[entity.TargetNPC], 1)
	assert.True(t, filtered[entity.TargetNPC][0].Applied)
}
