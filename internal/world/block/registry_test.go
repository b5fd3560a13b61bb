package block

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrefabRegistry(t *testing.T) {
	RegisterPrefab("test-gem", Config{
		Name:               "Gem",
		TargetTags:         TargetTags{"Player"},
		Reactions:          []ReactionRule{mustRule("Player", "ChangeScore", 50)},
		RemoveAfterTouches: 1,
	})
	defer delete(prefabs, "test-gem")

	assert.True(t, IsValidPrefab("test-gem"))
	assert.Contains(t, PrefabNames(), "test-gem")

	// Шаблон возвращается копией
	cfg, ok := Prefab("test-gem")
	require.True(t, ok)
	cfg.Reactions[0] = mustRule("Player", "Die", 0)
	again, _ := Prefab("test-gem")
	assert.Equal(t, FuncChangeScore, again.Reactions[0].Action.Function())

	b, err := FromPrefab("test-gem", "gem-7", Env{}, func(c *Config) {
		c.Position = mgl32.Vec3{1, 0, 1}
	})
	require.NoError(t, err)
	assert.Equal(t, "gem-7", b.ID())
	assert.Equal(t, "Gem", b.Name())
	assert.Equal(t, mgl32.Vec3{1, 0, 1}, b.Position())
	assert.True(t, b.Removable())

	_, err = FromPrefab("missing", "x", Env{}, nil)
	assert.ErrorIs(t, err, ErrUnknownPrefab)
}
