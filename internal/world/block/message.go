package block

import "errors"

// Payload полезная нагрузка сообщения. Варианты: Param, SelfRef.
type Payload interface {
	isPayload()
}

// Param непрозрачный числовой параметр реакции из конфигурации
type Param float64

// SelfRef ссылка на блок-источник (для AttachToThis)
type SelfRef struct {
	Block *Block
}

func (Param) isPayload()   {}
func (SelfRef) isPayload() {}

// Message сообщение, доставляемое актору реакцией блока
type Message struct {
	Function Function
	Payload  Payload
	SourceID string // ID блока-источника
}

// Ошибки конфигурации блока
var (
	ErrUnknownFunction   = errors.New("неизвестная реакция")
	ErrNegativeTouches   = errors.New("количество касаний не может быть отрицательным")
	ErrNoTargetTags      = errors.New("не задан ни один целевой тег")
	ErrTooManyTargetTags = errors.New("целевых тегов больше трёх")
	ErrUnknownPrefab     = errors.New("неизвестный префаб")
	ErrStateMismatch     = errors.New("состояние не соответствует блоку")
)
