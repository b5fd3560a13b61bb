package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/filter"

	"github.com/annel0/touchblock/internal/media"
	"github.com/annel0/touchblock/internal/world/block"
	"github.com/annel0/touchblock/internal/world/entity"
)

// Transform мировое положение сущности
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
}

// ActorData актор сцены и его источник звука
type ActorData struct {
	Tag   block.Tag
	Actor entity.Actor
	Audio *media.Source
}

// BlockData блок и его проигрыватель анимаций
type BlockData struct {
	Block    *block.Block
	Animator *media.Animator
	Prefab   string
}

// EffectData визуальный эффект с ограниченным временем жизни
type EffectData struct {
	Template string
	Age      float64
	TTL      float64
}

var (
	TransformComponent = donburi.NewComponentType[Transform]()
	ActorComponent     = donburi.NewComponentType[ActorData]()
	BlockComponent     = donburi.NewComponentType[BlockData]()
	EffectComponent    = donburi.NewComponentType[EffectData]()
)

var (
	actorQuery  = donburi.NewQuery(filter.Contains(ActorComponent, TransformComponent))
	blockQuery  = donburi.NewQuery(filter.Contains(BlockComponent, TransformComponent))
	effectQuery = donburi.NewQuery(filter.Contains(EffectComponent, TransformComponent))
)
