package entity

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/touchblock/internal/world/block"
)

func msg(fn block.Function, param float64) block.Message {
	return block.Message{Function: fn, Payload: block.Param(param), SourceID: "test"}
}

func newPlatform(t *testing.T, pos mgl32.Vec3) *block.Block {
	t.Helper()
	rule, err := block.NewRule("Player", "AttachToThis", 0)
	require.NoError(t, err)
	b, err := block.New(block.Config{
		ID:                 "log-1",
		TargetTags:         block.TargetTags{"Player"},
		Reactions:          []block.ReactionRule{rule},
		RemoveAfterTouches: 2,
		Position:           pos,
	}, block.Env{})
	require.NoError(t, err)
	return b
}

func TestPlayer_ScoreHealSpeed(t *testing.T) {
	p := NewPlayer("Player")
	p.Receive(msg(block.FuncChangeScore, 10))
	p.Receive(msg(block.FuncChangeScore, -3))
	assert.Equal(t, 7.0, p.Score)

	p.Health = 50
	p.Receive(msg(block.FuncHeal, 20))
	assert.Equal(t, 70.0, p.Health)
	p.Receive(msg(block.FuncHeal, 1000))
	assert.Equal(t, p.MaxHealth, p.Health)

	p.Receive(msg(block.FuncChangeSpeed, 2))
	assert.Equal(t, DefaultPlayerSpeed*2, p.Speed)
	p.Receive(msg(block.FuncChangeSpeed, 0))
	assert.Equal(t, DefaultPlayerSpeed*2, p.Speed)
}

func TestPlayer_DieAndShield(t *testing.T) {
	p := NewPlayer("Player")
	p.Receive(msg(block.FuncShield, 1.5))
	assert.True(t, p.Shielded())

	p.Receive(msg(block.FuncDie, 0))
	assert.True(t, p.Alive, "щит должен поглотить смерть")

	p.Update(1)
	assert.True(t, p.Shielded())
	p.Update(1)
	assert.False(t, p.Shielded())

	p.Receive(msg(block.FuncDie, 0))
	assert.False(t, p.Alive)
	assert.Zero(t, p.Health)

	// Мёртвый игрок ничего не принимает
	p.Receive(msg(block.FuncChangeScore, 100))
	assert.Zero(t, p.Score)
}

func TestPlayer_AttachFollowsPlatform(t *testing.T) {
	platform := newPlatform(t, mgl32.Vec3{10, 0, 0})
	p := NewPlayer("Player")
	p.SetPosition(mgl32.Vec3{11, 0, 0})

	p.Receive(block.Message{Function: block.FuncAttach, Payload: block.SelfRef{Block: platform}})
	require.Same(t, platform, p.AttachedTo())

	platform.SetPosition(mgl32.Vec3{15, 0, 2})
	p.Update(0.1)
	assert.Equal(t, mgl32.Vec3{16, 0, 2}, p.Position())

	// Платформа исчезла: игрок отцепляется
	platform.OnContact(block.ContactEvent{ActorTag: "Player"})
	platform.OnContact(block.ContactEvent{ActorTag: "Player"})
	require.True(t, platform.Removed())
	p.Update(0.1)
	assert.Nil(t, p.AttachedTo())
}

func TestPlayer_AttachWithoutBlockIgnored(t *testing.T) {
	p := NewPlayer("Player")
	p.Receive(msg(block.FuncAttach, 3))
	assert.Nil(t, p.AttachedTo())
}

func TestPlayer_DeathDetaches(t *testing.T) {
	platform := newPlatform(t, mgl32.Vec3{})
	p := NewPlayer("Player")
	p.Receive(block.Message{Function: block.FuncAttach, Payload: block.SelfRef{Block: platform}})
	p.Receive(msg(block.FuncDie, 0))
	assert.Nil(t, p.AttachedTo())
}

func TestController_CountsOnlyScore(t *testing.T) {
	c := NewController("")
	assert.Equal(t, block.ControllerTag, c.Tag())

	c.Receive(msg(block.FuncChangeScore, 100))
	c.Receive(msg(block.FuncDie, 0))
	c.Receive(msg(block.FuncChangeScore, 50))

	assert.Equal(t, 150.0, c.Score)
	assert.Equal(t, 3, c.Received)
}

func TestNewAndParseKind(t *testing.T) {
	k, ok := ParseKind("controller")
	require.True(t, ok)
	assert.Equal(t, KindController, k)

	_, ok = ParseKind("tank")
	assert.False(t, ok)

	a := New(KindPlayer, "Player1", mgl32.Vec3{1, 2, 3})
	assert.Equal(t, block.Tag("Player1"), a.Tag())
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, a.Position())
	assert.Equal(t, "player", a.Kind().String())

	a = New(KindController, block.ControllerTag, mgl32.Vec3{})
	assert.IsType(t, &Controller{}, a)
}
