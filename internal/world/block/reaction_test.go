package block

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRule_Variants(t *testing.T) {
	r, err := NewRule("Player", "", 5)
	require.NoError(t, err)
	assert.Equal(t, Inert{}, r.Action)
	assert.False(t, r.fires())

	r, err = NewRule("Player", "AttachToThis", 5)
	require.NoError(t, err)
	assert.Equal(t, AttachSelf{}, r.Action)
	assert.True(t, r.fires())

	r, err = NewRule(ControllerTag, "ChangeScore", 5)
	require.NoError(t, err)
	assert.Equal(t, SendMessage{Fn: FuncChangeScore, Param: 5}, r.Action)

	_, err = NewRule("Player", "Explode", 1)
	assert.ErrorIs(t, err, ErrUnknownFunction)
}

func TestReactionRule_IsCandidate(t *testing.T) {
	player := ReactionRule{TargetTag: "Player"}
	controller := ReactionRule{TargetTag: ControllerTag}
	enemy := ReactionRule{TargetTag: "Enemy"}

	assert.True(t, player.isCandidate("Player"))
	assert.False(t, player.isCandidate("Player1"))
	assert.True(t, controller.isCandidate("Player1"))
	assert.False(t, enemy.isCandidate("Player"))
}

func TestKnownFunctions(t *testing.T) {
	fns := KnownFunctions()
	assert.Len(t, fns, 6)
	assert.Contains(t, fns, FuncAttach)
	assert.True(t, FuncDie.Known())
	assert.False(t, Function("Fly").Known())
}

func TestTargetTags(t *testing.T) {
	tt, err := NewTargetTags("Player", "Player1")
	require.NoError(t, err)
	assert.True(t, tt.Contains("Player1"))
	assert.False(t, tt.Contains(""))
	assert.Equal(t, []Tag{"Player", "Player1"}, tt.List())
	assert.False(t, tt.Empty())

	_, err = NewTargetTags("a", "b", "c", "d")
	assert.ErrorIs(t, err, ErrTooManyTargetTags)

	assert.True(t, TargetTags{}.Empty())
}
