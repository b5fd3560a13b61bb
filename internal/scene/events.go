package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/yohamta/donburi/features/events"

	"github.com/annel0/touchblock/internal/world/block"
)

// BlockDestroyed публикуется, когда блок покидает сцену
type BlockDestroyed struct {
	BlockID  string
	Name     string
	Position mgl32.Vec3
	Restored bool // true, если удаление пришло из сохранённого состояния
}

// EffectSpawned публикуется при создании эффекта
type EffectSpawned struct {
	Template string
	Position mgl32.Vec3
}

// MessageDelivered публикуется для каждого сообщения, доставленного актору сцены
type MessageDelivered struct {
	Tag     block.Tag
	Message block.Message
}

// События сцены. Доставляются подписчикам в Update.
var (
	BlockDestroyedEvent   = events.NewEventType[BlockDestroyed]()
	EffectSpawnedEvent    = events.NewEventType[EffectSpawned]()
	MessageDeliveredEvent = events.NewEventType[MessageDelivered]()
)
