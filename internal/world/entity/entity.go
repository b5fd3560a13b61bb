package entity

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/annel0/touchblock/internal/logging"
	"github.com/annel0/touchblock/internal/world/block"
)

// Kind представляет тип актора
type Kind uint8

const (
	KindPlayer Kind = iota
	KindController
)

func (k Kind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindController:
		return "controller"
	default:
		return "unknown"
	}
}

// Actor актор сцены, принимающий реакции блоков
type Actor interface {
	block.Actor
	Kind() Kind
	Position() mgl32.Vec3
	// Update продвигает внутренние таймеры актора
	Update(dt float64)
}

// ParseKind разбирает тип актора из конфигурации
func ParseKind(name string) (Kind, bool) {
	switch name {
	case "player", "":
		return KindPlayer, true
	case "controller":
		return KindController, true
	default:
		return 0, false
	}
}

// New создаёт актора заданного типа
func New(kind Kind, tag block.Tag, pos mgl32.Vec3) Actor {
	if kind == KindController {
		return NewController(tag)
	}
	p := NewPlayer(tag)
	p.SetPosition(pos)
	return p
}

func entityLogger() *logging.Logger {
	return logging.GetComponentLogger(logging.ComponentEntity)
}
