package entity

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/annel0/touchblock/internal/world/block"
)

// Controller игровой контроллер: ведёт общий счёт и служит источником звука сцены
type Controller struct {
	tag      block.Tag
	Score    float64
	Received int // Сколько реакций получено
}

// NewController создаёт контроллер. Пустой тег заменяется на block.ControllerTag.
func NewController(tag block.Tag) *Controller {
	if tag == "" {
		tag = block.ControllerTag
	}
	return &Controller{tag: tag}
}

func (c *Controller) Tag() block.Tag       { return c.tag }
func (c *Controller) Kind() Kind           { return KindController }
func (c *Controller) Position() mgl32.Vec3 { return mgl32.Vec3{} }
func (c *Controller) Update(float64)       {}

// SendMessage реализует block.Actor
func (c *Controller) SendMessage(msg block.Message) { c.Receive(msg) }

// Receive принимает реакцию. Контроллер понимает только ChangeScore.
func (c *Controller) Receive(msg block.Message) {
	c.Received++
	switch msg.Function {
	case block.FuncChangeScore:
		c.Score += paramOf(msg)
		entityLogger().Debug("🏆 Счёт %.0f (+%.0f от %s)", c.Score, paramOf(msg), msg.SourceID)
	default:
		entityLogger().Warn("Контроллер %s не обрабатывает %s", c.tag, msg.Function)
	}
}
