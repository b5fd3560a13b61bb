package entity

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/annel0/touchblock/internal/world/block"
)

// Параметры игрока по умолчанию
const (
	DefaultPlayerSpeed  = 5.0 // Клеток в секунду
	DefaultPlayerHealth = 100.0
)

// Player игрок: копит очки, может погибнуть, прикрепиться к блоку и получить щит
type Player struct {
	tag      block.Tag
	position mgl32.Vec3

	Score     float64
	Health    float64
	MaxHealth float64
	Speed     float64
	Alive     bool

	shield   float64      // Оставшееся время щита, секунды
	attached *block.Block // Платформа, на которой едет игрок
	offset   mgl32.Vec3   // Смещение относительно платформы
}

// NewPlayer создаёт живого игрока с параметрами по умолчанию
func NewPlayer(tag block.Tag) *Player {
	return &Player{
		tag:       tag,
		Health:    DefaultPlayerHealth,
		MaxHealth: DefaultPlayerHealth,
		Speed:     DefaultPlayerSpeed,
		Alive:     true,
	}
}

func (p *Player) Tag() block.Tag       { return p.tag }
func (p *Player) Kind() Kind           { return KindPlayer }
func (p *Player) Position() mgl32.Vec3 { return p.position }

// SetPosition перемещает игрока. Прикреплённый игрок сохраняет смещение относительно платформы.
func (p *Player) SetPosition(pos mgl32.Vec3) {
	p.position = pos
	if p.attached != nil {
		p.offset = pos.Sub(p.attached.Position())
	}
}

// Shielded сообщает, активен ли щит
func (p *Player) Shielded() bool { return p.shield > 0 }

// AttachedTo возвращает платформу игрока или nil
func (p *Player) AttachedTo() *block.Block { return p.attached }

// Detach снимает игрока с платформы
func (p *Player) Detach() {
	p.attached = nil
	p.offset = mgl32.Vec3{}
}

// SendMessage реализует block.Actor
func (p *Player) SendMessage(msg block.Message) { p.Receive(msg) }

// Receive применяет реакцию блока к игроку
func (p *Player) Receive(msg block.Message) {
	if !p.Alive {
		entityLogger().Trace("Игрок %s мёртв, %s от %s проигнорировано", p.tag, msg.Function, msg.SourceID)
		return
	}

	switch msg.Function {
	case block.FuncChangeScore:
		p.Score += paramOf(msg)
	case block.FuncDie:
		if p.Shielded() {
			entityLogger().Debug("🛡 Щит игрока %s поглотил смертельное касание %s", p.tag, msg.SourceID)
			return
		}
		p.Alive = false
		p.Health = 0
		p.Detach()
		entityLogger().Info("💀 Игрок %s погиб от %s", p.tag, msg.SourceID)
	case block.FuncAttach:
		ref, ok := msg.Payload.(block.SelfRef)
		if !ok || ref.Block == nil {
			entityLogger().Warn("AttachToThis от %s без ссылки на блок", msg.SourceID)
			return
		}
		p.attached = ref.Block
		p.offset = p.position.Sub(ref.Block.Position())
	case block.FuncChangeSpeed:
		if factor := paramOf(msg); factor > 0 {
			p.Speed *= factor
		}
	case block.FuncHeal:
		p.Health += paramOf(msg)
		if p.Health > p.MaxHealth {
			p.Health = p.MaxHealth
		}
	case block.FuncShield:
		if d := paramOf(msg); d > p.shield {
			p.shield = d
		}
	default:
		entityLogger().Warn("Игрок %s: неизвестная реакция %q", p.tag, msg.Function)
	}
}

// Update отсчитывает щит и двигает игрока вместе с платформой
func (p *Player) Update(dt float64) {
	if p.shield > 0 {
		p.shield -= dt
		if p.shield < 0 {
			p.shield = 0
		}
	}
	if p.attached == nil {
		return
	}
	if p.attached.Removed() {
		p.Detach()
		return
	}
	p.position = p.attached.Position().Add(p.offset)
}

func paramOf(msg block.Message) float64 {
	if v, ok := msg.Payload.(block.Param); ok {
		return float64(v)
	}
	return 0
}
