package block

import (
	"github.com/go-gl/mathgl/mgl32"
)

// ActorRegistry разрешает логический тег в адресуемого актора.
// Возвращает ошибку, если под тегом никто не зарегистрирован.
type ActorRegistry interface {
	Resolve(tag Tag) (Actor, error)
}

// Actor адресуемый актор сцены
type Actor interface {
	Tag() Tag
	// SendMessage доставляет реакцию. Fire-and-forget: результат блоку не важен.
	SendMessage(msg Message)
}

// AnimationPlayer проигрыватель клипов, прикреплённый к блоку
type AnimationPlayer interface {
	Stop()
	Play(clip string)
}

// AudioResolver находит источник звука по тегу актора
type AudioResolver interface {
	ResolveAudio(tag Tag) (AudioSource, error)
}

// AudioSource проигрывает звук поверх уже звучащих, не прерывая их
type AudioSource interface {
	PlayOneShot(clip string)
}

// EffectSpawner создаёт визуальный эффект в мировой точке
type EffectSpawner interface {
	Spawn(template string, pos mgl32.Vec3, rot mgl32.Quat)
}

// EntityLifecycle удаляет сущность блока со сцены
type EntityLifecycle interface {
	Destroy(b *Block)
}

// ContactEvent касание блока актором, поставляемое физикой
type ContactEvent struct {
	ActorTag Tag
	Actor    Actor      // может быть nil; для разрешения реакций не используется
	Position mgl32.Vec3 // точка касания, только для диагностики
}

// Env внешние коллабораторы блока. Любое поле может быть nil:
// соответствующая возможность тогда отключена.
type Env struct {
	Actors    ActorRegistry
	Audio     AudioResolver
	Effects   EffectSpawner
	Lifecycle EntityLifecycle
	Observer  Observer
}
