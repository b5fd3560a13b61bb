package block

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// journal общий журнал вызовов коллабораторов для проверки порядка
type journal struct {
	entries []string
}

func (j *journal) add(format string, args ...interface{}) {
	j.entries = append(j.entries, fmt.Sprintf(format, args...))
}

// mockActor записывает полученные сообщения
type mockActor struct {
	tag      Tag
	j        *journal
	received []Message
}

func (a *mockActor) Tag() Tag { return a.tag }

func (a *mockActor) SendMessage(msg Message) {
	a.received = append(a.received, msg)
	a.j.add("send:%s:%s", a.tag, msg.Function)
}

// mockRegistry реализует ActorRegistry и запоминает промахи разрешения
type mockRegistry struct {
	actors  map[Tag]*mockActor
	misses  []Tag
	lookups []Tag
}

func newMockRegistry(j *journal, tags ...Tag) *mockRegistry {
	r := &mockRegistry{actors: make(map[Tag]*mockActor)}
	for _, tag := range tags {
		r.actors[tag] = &mockActor{tag: tag, j: j}
	}
	return r
}

func (r *mockRegistry) Resolve(tag Tag) (Actor, error) {
	r.lookups = append(r.lookups, tag)
	a, ok := r.actors[tag]
	if !ok {
		r.misses = append(r.misses, tag)
		return nil, fmt.Errorf("актор %s не найден", tag)
	}
	return a, nil
}

type mockAnimator struct{ j *journal }

func (a *mockAnimator) Stop()            { a.j.add("anim:stop") }
func (a *mockAnimator) Play(clip string) { a.j.add("anim:play:%s", clip) }

type mockAudioSource struct {
	tag Tag
	j   *journal
}

func (s *mockAudioSource) PlayOneShot(clip string) { s.j.add("sound:%s:%s", s.tag, clip) }

type mockAudio struct {
	j       *journal
	sources map[Tag]bool
	misses  int
}

func (m *mockAudio) ResolveAudio(tag Tag) (AudioSource, error) {
	if !m.sources[tag] {
		m.misses++
		return nil, fmt.Errorf("источник звука %s не найден", tag)
	}
	return &mockAudioSource{tag: tag, j: m.j}, nil
}

type spawnedEffect struct {
	template string
	pos      mgl32.Vec3
	rot      mgl32.Quat
}

type mockEffects struct {
	j       *journal
	spawned []spawnedEffect
}

func (m *mockEffects) Spawn(template string, pos mgl32.Vec3, rot mgl32.Quat) {
	m.spawned = append(m.spawned, spawnedEffect{template, pos, rot})
	m.j.add("effect:%s", template)
}

type mockLifecycle struct {
	j         *journal
	destroyed []string
}

func (m *mockLifecycle) Destroy(b *Block) {
	m.destroyed = append(m.destroyed, b.ID())
	m.j.add("destroy:%s", b.ID())
}

type recordingObserver struct {
	diagnostics []Diagnostic
	dispatches  []Dispatch
	transitions []Transition
}

func (o *recordingObserver) OnDiagnostic(d Diagnostic) { o.diagnostics = append(o.diagnostics, d) }
func (o *recordingObserver) OnDispatch(d Dispatch)     { o.dispatches = append(o.dispatches, d) }
func (o *recordingObserver) OnTransition(t Transition) { o.transitions = append(o.transitions, t) }

// fixture собирает блок со всеми коллабораторами
type fixture struct {
	j         *journal
	registry  *mockRegistry
	audio     *mockAudio
	effects   *mockEffects
	lifecycle *mockLifecycle
	observer  *recordingObserver
	animator  *mockAnimator
}

func newFixture(actorTags ...Tag) *fixture {
	j := &journal{}
	return &fixture{
		j:         j,
		registry:  newMockRegistry(j, actorTags...),
		audio:     &mockAudio{j: j, sources: map[Tag]bool{ControllerTag: true}},
		effects:   &mockEffects{j: j},
		lifecycle: &mockLifecycle{j: j},
		observer:  &recordingObserver{},
		animator:  &mockAnimator{j: j},
	}
}

func (f *fixture) env() Env {
	return Env{
		Actors:    f.registry,
		Audio:     f.audio,
		Effects:   f.effects,
		Lifecycle: f.lifecycle,
		Observer:  f.observer,
	}
}

func (f *fixture) actor(tag Tag) *mockActor {
	return f.registry.actors[tag]
}

func mustRule(target Tag, fn string, param float64) ReactionRule {
	r, err := NewRule(target, fn, param)
	if err != nil {
		panic(err)
	}
	return r
}

func contact(tag Tag) ContactEvent {
	return ContactEvent{ActorTag: tag, Position: mgl32.Vec3{1, 2, 3}}
}
