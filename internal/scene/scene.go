package scene

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/annel0/touchblock/internal/logging"
	"github.com/annel0/touchblock/internal/media"
	"github.com/annel0/touchblock/internal/observability"
	"github.com/annel0/touchblock/internal/storage"
	"github.com/annel0/touchblock/internal/world/block"
	"github.com/annel0/touchblock/internal/world/entity"
)

// Ошибки сцены
var (
	ErrActorNotFound  = errors.New("актор не найден")
	ErrAudioNotFound  = errors.New("источник звука не найден")
	ErrBlockNotFound  = errors.New("блок не найден")
	ErrDuplicateActor = errors.New("тег актора уже занят")
	ErrDuplicateBlock = errors.New("ID блока уже занят")
)

// DefaultEffectTTL время жизни эффекта по умолчанию, секунды
const DefaultEffectTTL = 1.0

// Scene хост блоков на donburi: акторы, блоки и эффекты живут сущностями мира.
// Сцена реализует ActorRegistry, AudioResolver, EffectSpawner и EntityLifecycle.
// Однопоточная: все вызовы из игрового цикла.
type Scene struct {
	id     string
	world  donburi.World
	tracer trace.Tracer
	log    *logging.Logger

	observers block.Observers
	library   *media.Library
	output    *media.Output
	effectTTL float64

	actors    map[block.Tag]donburi.Entity
	blocks    map[string]donburi.Entity
	graveyard map[string]block.State // Удалённые блоки: их состояние сохраняется вместе со сценой
	restoring bool
}

// Option настраивает сцену
type Option func(*Scene)

// WithObserver добавляет наблюдателя блоков (метрики, шина событий)
func WithObserver(o block.Observer) Option {
	return func(s *Scene) {
		if o != nil {
			s.observers = append(s.observers, o)
		}
	}
}

// WithAudio задаёт библиотеку звуков и, при out != nil, вывод на устройство
func WithAudio(lib *media.Library, out *media.Output) Option {
	return func(s *Scene) {
		s.library = lib
		s.output = out
	}
}

// WithTracer задаёт трассировщик касаний
func WithTracer(t trace.Tracer) Option {
	return func(s *Scene) { s.tracer = t }
}

// WithEffectTTL задаёт время жизни эффектов
func WithEffectTTL(seconds float64) Option {
	return func(s *Scene) { s.effectTTL = seconds }
}

// New создаёт пустую сцену
func New(id string, opts ...Option) *Scene {
	s := &Scene{
		id:        id,
		world:     donburi.NewWorld(),
		tracer:    observability.Tracer(),
		log:       logging.GetSceneLogger(),
		observers: block.Observers{logObserver{}},
		library:   media.DefaultLibrary(),
		effectTTL: DefaultEffectTTL,
		actors:    make(map[block.Tag]donburi.Entity),
		blocks:    make(map[string]donburi.Entity),
		graveyard: make(map[string]block.State),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID возвращает идентификатор сцены
func (s *Scene) ID() string { return s.id }

// World возвращает мир donburi (для подписки на события сцены)
func (s *Scene) World() donburi.World { return s.world }

// env коллабораторы, которые получает каждый блок сцены
func (s *Scene) env() block.Env {
	return block.Env{
		Actors:    s,
		Audio:     s,
		Effects:   s,
		Lifecycle: s,
		Observer:  s.observers,
	}
}

//================ Акторы =================//

// SpawnActor создаёт актора. Тег актора уникален в сцене,
// контроллер с пустым тегом получает block.ControllerTag.
func (s *Scene) SpawnActor(kind entity.Kind, tag block.Tag, pos mgl32.Vec3) (entity.Actor, error) {
	actor := entity.New(kind, tag, pos)
	tag = actor.Tag()
	if _, exists := s.actors[tag]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateActor, tag)
	}

	source := media.NewSource(s.library)
	if s.output != nil {
		s.output.Connect(source)
	}

	e := s.world.Create(ActorComponent, TransformComponent)
	entry := s.world.Entry(e)
	ActorComponent.SetValue(entry, ActorData{Tag: tag, Actor: actor, Audio: source})
	TransformComponent.SetValue(entry, Transform{Position: pos, Rotation: mgl32.QuatIdent()})
	s.actors[tag] = e

	s.log.Debug("Актор %s (%s) создан на %v", tag, kind, pos)
	return actor, nil
}

// Actor возвращает актора по тегу
func (s *Scene) Actor(tag block.Tag) (entity.Actor, bool) {
	data, ok := s.actorData(tag)
	if !ok {
		return nil, false
	}
	return data.Actor, true
}

func (s *Scene) actorData(tag block.Tag) (*ActorData, bool) {
	e, ok := s.actors[tag]
	if !ok || !s.world.Valid(e) {
		return nil, false
	}
	return ActorComponent.Get(s.world.Entry(e)), true
}

// Resolve реализует block.ActorRegistry
func (s *Scene) Resolve(tag block.Tag) (block.Actor, error) {
	data, ok := s.actorData(tag)
	if !ok {
		s.log.Warn("Реакция для %s: %v", tag, ErrActorNotFound)
		return nil, fmt.Errorf("%w: %s", ErrActorNotFound, tag)
	}
	return deliveringActor{world: s.world, Actor: data.Actor}, nil
}

// ResolveAudio реализует block.AudioResolver
func (s *Scene) ResolveAudio(tag block.Tag) (block.AudioSource, error) {
	data, ok := s.actorData(tag)
	if !ok || data.Audio == nil {
		s.log.Warn("Звук для %s: %v", tag, ErrAudioNotFound)
		return nil, fmt.Errorf("%w: %s", ErrAudioNotFound, tag)
	}
	return data.Audio, nil
}

// AudioSource возвращает источник звука актора
func (s *Scene) AudioSource(tag block.Tag) (*media.Source, bool) {
	data, ok := s.actorData(tag)
	if !ok {
		return nil, false
	}
	return data.Audio, true
}

// deliveringActor публикует событие доставки и передаёт сообщение актору
type deliveringActor struct {
	entity.Actor
	world donburi.World
}

func (a deliveringActor) SendMessage(msg block.Message) {
	a.Actor.SendMessage(msg)
	MessageDeliveredEvent.Publish(a.world, MessageDelivered{Tag: a.Actor.Tag(), Message: msg})
}

//================ Блоки =================//

// SpawnBlock создаёт блок из конфигурации. Блок с клипом удара получает проигрыватель анимаций.
func (s *Scene) SpawnBlock(cfg block.Config) (*block.Block, error) {
	return s.spawn(cfg.ID, "", func(env block.Env) (*block.Block, error) {
		return block.New(cfg, env)
	})
}

// SpawnPrefab создаёт блок по зарегистрированному шаблону в позиции pos
func (s *Scene) SpawnPrefab(prefab, id string, pos mgl32.Vec3) (*block.Block, error) {
	return s.spawn(id, prefab, func(env block.Env) (*block.Block, error) {
		return block.FromPrefab(prefab, id, env, func(c *block.Config) { c.Position = pos })
	})
}

func (s *Scene) spawn(id, prefab string, build func(block.Env) (*block.Block, error)) (*block.Block, error) {
	if id != "" {
		if _, exists := s.blocks[id]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateBlock, id)
		}
	}

	b, err := build(s.env())
	if err != nil {
		return nil, err
	}

	var animator *media.Animator
	if b.Config().HitAnimation != "" {
		animator = media.NewAnimator(media.DefaultClips()...)
		b.AttachAnimator(animator)
	}

	e := s.world.Create(BlockComponent, TransformComponent)
	entry := s.world.Entry(e)
	BlockComponent.SetValue(entry, BlockData{Block: b, Animator: animator, Prefab: prefab})
	TransformComponent.SetValue(entry, Transform{Position: b.Position(), Rotation: mgl32.QuatIdent()})
	s.blocks[b.ID()] = e

	s.log.Debug("Блок %s (%s) создан, состояние %s", b.Name(), b.ID(), b.State())
	return b, nil
}

// Block возвращает живой блок по ID
func (s *Scene) Block(id string) (*block.Block, bool) {
	data, ok := s.blockData(id)
	if !ok {
		return nil, false
	}
	return data.Block, true
}

// Animator возвращает проигрыватель анимаций блока
func (s *Scene) Animator(id string) (*media.Animator, bool) {
	data, ok := s.blockData(id)
	if !ok || data.Animator == nil {
		return nil, false
	}
	return data.Animator, true
}

func (s *Scene) blockData(id string) (*BlockData, bool) {
	e, ok := s.blocks[id]
	if !ok || !s.world.Valid(e) {
		return nil, false
	}
	return BlockComponent.Get(s.world.Entry(e)), true
}

// Blocks возвращает отсортированные ID живых блоков
func (s *Scene) Blocks() []string {
	ids := make([]string, 0, len(s.blocks))
	for id := range s.blocks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// MoveBlock перемещает блок (движущаяся платформа, машина)
func (s *Scene) MoveBlock(id string, pos mgl32.Vec3) error {
	data, ok := s.blockData(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrBlockNotFound, id)
	}
	data.Block.SetPosition(pos)
	return nil
}

// Destroy реализует block.EntityLifecycle: сущность блока удаляется из мира,
// состояние переходит на кладбище сцены.
func (s *Scene) Destroy(b *block.Block) {
	e, ok := s.blocks[b.ID()]
	if !ok {
		return
	}
	delete(s.blocks, b.ID())
	s.graveyard[b.ID()] = b.State()
	if s.world.Valid(e) {
		s.world.Remove(e)
	}

	BlockDestroyedEvent.Publish(s.world, BlockDestroyed{
		BlockID:  b.ID(),
		Name:     b.Name(),
		Position: b.Position(),
		Restored: s.restoring,
	})
}

//================ Эффекты =================//

// Spawn реализует block.EffectSpawner
func (s *Scene) Spawn(template string, pos mgl32.Vec3, rot mgl32.Quat) {
	e := s.world.Create(EffectComponent, TransformComponent)
	entry := s.world.Entry(e)
	EffectComponent.SetValue(entry, EffectData{Template: template, TTL: s.effectTTL})
	TransformComponent.SetValue(entry, Transform{Position: pos, Rotation: rot})

	EffectSpawnedEvent.Publish(s.world, EffectSpawned{Template: template, Position: pos})
	s.log.Debug("✨ Эффект %s на %v", template, pos)
}

// Effect активный эффект сцены
type Effect struct {
	Template  string
	Transform Transform
	Age       float64
}

// Effects возвращает активные эффекты
func (s *Scene) Effects() []Effect {
	var out []Effect
	effectQuery.Each(s.world, func(entry *donburi.Entry) {
		data := EffectComponent.Get(entry)
		out = append(out, Effect{
			Template:  data.Template,
			Transform: *TransformComponent.Get(entry),
			Age:       data.Age,
		})
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Template < out[j].Template })
	return out
}

//================ Касания и цикл =================//

// Contact передаёт блоку касание актора. Касание трассируется отдельным спаном.
func (s *Scene) Contact(ctx context.Context, actorTag block.Tag, blockID string, pos mgl32.Vec3) error {
	_, span := s.tracer.Start(ctx, "block.contact", trace.WithAttributes(
		attribute.String("scene.id", s.id),
		attribute.String("block.id", blockID),
		attribute.String("actor.tag", string(actorTag)),
	))
	defer span.End()

	b, ok := s.Block(blockID)
	if !ok {
		err := fmt.Errorf("%w: %s", ErrBlockNotFound, blockID)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	ev := block.ContactEvent{ActorTag: actorTag, Position: pos}
	if actor, ok := s.Actor(actorTag); ok {
		ev.Actor = actor
	}

	before := b.State()
	b.OnContact(ev)
	after := b.State()

	span.SetAttributes(
		attribute.Bool("block.relevant", b.IsRelevant(actorTag)),
		attribute.String("block.state.before", before.String()),
		attribute.String("block.state.after", after.String()),
	)
	return nil
}

// Update продвигает акторов, их звук, анимации и эффекты на dt секунд и доставляет события сцены
func (s *Scene) Update(dt float64) {
	step := time.Duration(dt * float64(time.Second))
	actorQuery.Each(s.world, func(entry *donburi.Entry) {
		data := ActorComponent.Get(entry)
		data.Actor.Update(dt)
		data.Audio.Advance(step)
		TransformComponent.Get(entry).Position = data.Actor.Position()
	})

	blockQuery.Each(s.world, func(entry *donburi.Entry) {
		data := BlockComponent.Get(entry)
		if data.Animator != nil {
			data.Animator.Update(float32(dt))
		}
		TransformComponent.Get(entry).Position = data.Block.Position()
	})

	var expired []donburi.Entity
	effectQuery.Each(s.world, func(entry *donburi.Entry) {
		data := EffectComponent.Get(entry)
		data.Age += dt
		if data.Age >= data.TTL {
			expired = append(expired, entry.Entity())
		}
	})
	for _, e := range expired {
		s.world.Remove(e)
	}

	events.ProcessAllEvents(s.world)
}

//================ Сохранение =================//

// Save сохраняет состояния всех блоков сцены, включая удалённые
func (s *Scene) Save(ctx context.Context, repo storage.StateRepo) error {
	states := make([]block.State, 0, len(s.blocks)+len(s.graveyard))
	for _, id := range s.Blocks() {
		b, _ := s.Block(id)
		states = append(states, b.Snapshot())
	}
	for _, st := range s.graveyard {
		states = append(states, st)
	}

	if err := repo.BatchSave(ctx, s.id, states); err != nil {
		return fmt.Errorf("сохранение сцены %s: %w", s.id, err)
	}
	s.log.Info("💾 Сцена %s сохранена: %d блоков", s.id, len(states))
	return nil
}

// Load восстанавливает сохранённые состояния живых блоков. Блок, сохранённый
// удалённым, покидает сцену без эффекта смерти. Ошибки отдельных блоков
// собираются, остальные блоки восстанавливаются.
func (s *Scene) Load(ctx context.Context, repo storage.StateRepo) error {
	states, err := repo.LoadAll(ctx, s.id)
	if err != nil {
		return fmt.Errorf("загрузка сцены %s: %w", s.id, err)
	}

	var errs []error
	restored := 0
	for _, id := range sortedKeys(states) {
		b, ok := s.Block(id)
		if !ok {
			if _, gone := s.graveyard[id]; !gone {
				s.log.Warn("Сохранённое состояние %s: блока нет в сцене", id)
			}
			continue
		}

		s.restoring = true
		err := b.Restore(states[id])
		s.restoring = false
		if err != nil {
			errs = append(errs, err)
			continue
		}
		restored++
	}

	s.log.Info("📂 Сцена %s: восстановлено %d состояний", s.id, restored)
	return errors.Join(errs...)
}

func sortedKeys(m map[string]block.State) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
