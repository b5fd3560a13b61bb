package block

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scoreConfig(touches int) Config {
	return Config{
		ID:                 "coin-1",
		Name:               "Coin",
		TargetTags:         TargetTags{"Player"},
		Reactions:          []ReactionRule{mustRule("Player", "ChangeScore", 10)},
		RemoveAfterTouches: touches,
		HitAnimation:       "hit",
		HitSound:           "ding",
		SoundSourceTag:     ControllerTag,
		DeathEffect:        "sparkle",
		Position:           mgl32.Vec3{5, 0, 7},
	}
}

func TestNew_ComputesRemovable(t *testing.T) {
	f := newFixture("Player")

	b, err := New(scoreConfig(2), f.env())
	require.NoError(t, err)
	assert.True(t, b.Removable())
	assert.Equal(t, State{ID: "coin-1", Phase: PhaseActive, Remaining: 2}, b.State())

	b, err = New(scoreConfig(0), f.env())
	require.NoError(t, err)
	assert.False(t, b.Removable())
	assert.Equal(t, PhaseNonRemovable, b.State().Phase)
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	f := newFixture()

	cfg := scoreConfig(-1)
	_, err := New(cfg, f.env())
	assert.ErrorIs(t, err, ErrNegativeTouches)

	cfg = scoreConfig(1)
	cfg.TargetTags = TargetTags{}
	_, err = New(cfg, f.env())
	assert.ErrorIs(t, err, ErrNoTargetTags)

	cfg = scoreConfig(1)
	cfg.Reactions = []ReactionRule{{TargetTag: "Player", Action: SendMessage{Fn: "Teleport"}}}
	_, err = New(cfg, f.env())
	assert.ErrorIs(t, err, ErrUnknownFunction)
}

func TestNew_GeneratesIDAndName(t *testing.T) {
	cfg := scoreConfig(1)
	cfg.ID = ""
	cfg.Name = ""

	b, err := New(cfg, Env{})
	require.NoError(t, err)
	assert.NotEmpty(t, b.ID())
	assert.Equal(t, b.ID(), b.Name())
}

func TestNew_ConfigIsCopied(t *testing.T) {
	cfg := scoreConfig(1)
	b, err := New(cfg, Env{})
	require.NoError(t, err)

	cfg.Reactions[0] = mustRule("Player", "Die", 0)
	assert.Equal(t, FuncChangeScore, b.Config().Reactions[0].Action.Function())
}

func TestOnContact_IrrelevantActorIsNoop(t *testing.T) {
	f := newFixture("Player", "Enemy")
	b, err := New(scoreConfig(2), f.env())
	require.NoError(t, err)
	b.AttachAnimator(f.animator)

	b.OnContact(contact("Enemy"))

	assert.Empty(t, f.j.entries)
	assert.Empty(t, f.observer.diagnostics)
	assert.Empty(t, f.observer.transitions)
	assert.Equal(t, State{ID: "coin-1", Phase: PhaseActive, Remaining: 2}, b.State())
}

func TestOnContact_ScenarioRemovableAfterTwo(t *testing.T) {
	f := newFixture("Player")
	b, err := New(scoreConfig(2), f.env())
	require.NoError(t, err)
	b.AttachAnimator(f.animator)

	// Первое касание: Score(10), Active(1), без уничтожения
	b.OnContact(contact("Player"))
	require.Len(t, f.actor("Player").received, 1)
	assert.Equal(t, Message{Function: FuncChangeScore, Payload: Param(10), SourceID: "coin-1"}, f.actor("Player").received[0])
	assert.Equal(t, "Active(1)", b.State().String())
	assert.Empty(t, f.lifecycle.destroyed)

	// Второе касание: Score(10), Removed, эффект и уничтожение
	b.OnContact(contact("Player"))
	assert.Len(t, f.actor("Player").received, 2)
	assert.True(t, b.Removed())
	assert.Equal(t, []string{"coin-1"}, f.lifecycle.destroyed)
	require.Len(t, f.effects.spawned, 1)
	assert.Equal(t, "sparkle", f.effects.spawned[0].template)
	assert.Equal(t, mgl32.Vec3{5, 0, 7}, f.effects.spawned[0].pos)
	assert.Equal(t, mgl32.QuatIdent(), f.effects.spawned[0].rot)

	// Третье касание ничего не делает
	before := len(f.j.entries)
	b.OnContact(contact("Player"))
	assert.Len(t, f.j.entries, before)
	assert.Len(t, f.actor("Player").received, 2)
	assert.Len(t, f.lifecycle.destroyed, 1)
}

func TestOnContact_ScenarioNonRemovable(t *testing.T) {
	f := newFixture("Player")
	b, err := New(scoreConfig(0), f.env())
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		b.OnContact(contact("Player"))
	}

	assert.Len(t, f.actor("Player").received, 10)
	assert.Equal(t, PhaseNonRemovable, b.State().Phase)
	assert.Empty(t, f.lifecycle.destroyed)
	assert.Empty(t, f.effects.spawned)
	assert.Len(t, f.observer.transitions, 10)
}

func TestOnContact_OrderingOnTerminalTouch(t *testing.T) {
	f := newFixture("Player")
	b, err := New(scoreConfig(1), f.env())
	require.NoError(t, err)
	b.AttachAnimator(f.animator)

	b.OnContact(contact("Player"))

	assert.Equal(t, []string{
		"send:Player:ChangeScore",
		"anim:stop",
		"anim:play:hit",
		"sound:GameController:ding",
		"effect:sparkle",
		"destroy:coin-1",
	}, f.j.entries)
}

func TestOnContact_FeedbackIndependentOfReactions(t *testing.T) {
	// Реестр пуст: реакции не доставляются, но обратная связь звучит
	f := newFixture()
	b, err := New(scoreConfig(0), f.env())
	require.NoError(t, err)
	b.AttachAnimator(f.animator)

	b.OnContact(contact("Player"))

	assert.Equal(t, []string{"anim:stop", "anim:play:hit", "sound:GameController:ding"}, f.j.entries)
	require.Len(t, f.observer.dispatches, 1)
	assert.False(t, f.observer.dispatches[0].Delivered)
}

func TestOnContact_FeedbackDisabledByConfigGaps(t *testing.T) {
	f := newFixture("Player")
	cfg := scoreConfig(1)
	cfg.HitAnimation = ""
	cfg.HitSound = ""
	cfg.DeathEffect = ""
	b, err := New(cfg, f.env())
	require.NoError(t, err)
	b.AttachAnimator(f.animator)

	b.OnContact(contact("Player"))

	assert.Equal(t, []string{"send:Player:ChangeScore", "destroy:coin-1"}, f.j.entries)
	assert.Empty(t, f.effects.spawned)
}

func TestOnContact_NoAnimatorAttached(t *testing.T) {
	f := newFixture("Player")
	b, err := New(scoreConfig(0), f.env())
	require.NoError(t, err)

	b.OnContact(contact("Player"))
	assert.NotContains(t, f.j.entries, "anim:stop")
}

func TestOnContact_MissingSoundSourceIsCollaboratorConcern(t *testing.T) {
	f := newFixture("Player")
	cfg := scoreConfig(0)
	cfg.SoundSourceTag = "Speaker"
	b, err := New(cfg, f.env())
	require.NoError(t, err)

	b.OnContact(contact("Player"))
	assert.Equal(t, 1, f.audio.misses)
	assert.Equal(t, []string{"send:Player:ChangeScore"}, f.j.entries)
}

func TestOnContact_NilEnvIsSafe(t *testing.T) {
	b, err := New(scoreConfig(1), Env{})
	require.NoError(t, err)

	b.OnContact(contact("Player"))
	assert.True(t, b.Removed())
}

func TestOnContact_MultipleTargetTags(t *testing.T) {
	f := newFixture("Player1", "Player2")
	cfg := scoreConfig(0)
	cfg.TargetTags = TargetTags{"Player", "Player1", "Player2"}
	cfg.Reactions = []ReactionRule{
		mustRule("Player1", "ChangeScore", 1),
		mustRule("Player2", "ChangeScore", 2),
	}
	b, err := New(cfg, f.env())
	require.NoError(t, err)

	b.OnContact(contact("Player2"))
	assert.Empty(t, f.actor("Player1").received)
	require.Len(t, f.actor("Player2").received, 1)
	assert.Equal(t, Param(2), f.actor("Player2").received[0].Payload)
}

func TestRestore(t *testing.T) {
	f := newFixture("Player")
	b, err := New(scoreConfig(3), f.env())
	require.NoError(t, err)

	require.NoError(t, b.Restore(State{ID: "coin-1", Phase: PhaseActive, Remaining: 1}))
	assert.Equal(t, 1, b.State().Remaining)

	assert.ErrorIs(t, b.Restore(State{Phase: PhaseActive, Remaining: 4}), ErrStateMismatch)
	assert.ErrorIs(t, b.Restore(State{Phase: PhaseNonRemovable}), ErrStateMismatch)
	assert.ErrorIs(t, b.Restore(State{ID: "other", Phase: PhaseActive, Remaining: 1}), ErrStateMismatch)

	// Следующее касание удаляет блок
	b.OnContact(contact("Player"))
	assert.True(t, b.Removed())
	assert.ErrorIs(t, b.Restore(State{Phase: PhaseActive, Remaining: 1}), ErrStateMismatch)
}

func TestRestore_NonRemovableCannotBeRearmed(t *testing.T) {
	b, err := New(scoreConfig(0), Env{})
	require.NoError(t, err)

	assert.ErrorIs(t, b.Restore(State{Phase: PhaseActive, Remaining: 1}), ErrStateMismatch)
	assert.ErrorIs(t, b.Restore(State{Phase: PhaseRemoved}), ErrStateMismatch)
	require.NoError(t, b.Restore(State{Phase: PhaseNonRemovable}))
	assert.False(t, b.Removable())
}

func TestRestore_RemovedCompletesRemovalWithoutEffect(t *testing.T) {
	f := newFixture("Player")
	b, err := New(scoreConfig(2), f.env())
	require.NoError(t, err)

	require.NoError(t, b.Restore(State{Phase: PhaseRemoved}))
	assert.True(t, b.Removed())
	assert.Equal(t, []string{"coin-1"}, f.lifecycle.destroyed)
	assert.Empty(t, f.effects.spawned)

	b.OnContact(contact("Player"))
	assert.Empty(t, f.actor("Player").received)
}

func TestPositionFollowsBlock(t *testing.T) {
	f := newFixture("Player")
	b, err := New(scoreConfig(1), f.env())
	require.NoError(t, err)

	b.SetPosition(mgl32.Vec3{9, 9, 9})
	b.OnContact(contact("Player"))

	require.Len(t, f.effects.spawned, 1)
	assert.Equal(t, mgl32.Vec3{9, 9, 9}, f.effects.spawned[0].pos)
}
