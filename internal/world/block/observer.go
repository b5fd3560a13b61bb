package block

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Diagnostic запись о правиле-кандидате. Пишется для каждого правила, чей тег
// совпал, ещё до решения о срабатывании (в том числе для Inert).
type Diagnostic struct {
	BlockID   string
	BlockName string
	Function  Function
	ActorTag  Tag // тег актора, инициировавшего касание
	TargetTag Tag // тег правила, по которому разрешается получатель
	Position  mgl32.Vec3
}

// Dispatch запись о сработавшем правиле
type Dispatch struct {
	BlockID   string
	TargetTag Tag
	Message   Message
	Delivered bool // false, если получатель не разрешился
}

// Transition запись о шаге счётчика удаления при релевантном касании
type Transition struct {
	BlockID   string
	BlockName string
	ActorTag  Tag
	Position  mgl32.Vec3
	Before    State
	After     State
}

// Removed сообщает, завершилось ли касание удалением блока
func (t Transition) Removed() bool {
	return t.Before.Phase != PhaseRemoved && t.After.Phase == PhaseRemoved
}

// Observer получает записи о работе блока. Вызывается синхронно из OnContact.
type Observer interface {
	OnDiagnostic(d Diagnostic)
	OnDispatch(d Dispatch)
	OnTransition(t Transition)
}

// Observers рассылает записи нескольким наблюдателям по порядку
type Observers []Observer

func (o Observers) OnDiagnostic(d Diagnostic) {
	for _, obs := range o {
		obs.OnDiagnostic(d)
	}
}

func (o Observers) OnDispatch(d Dispatch) {
	for _, obs := range o {
		obs.OnDispatch(d)
	}
}

func (o Observers) OnTransition(t Transition) {
	for _, obs := range o {
		obs.OnTransition(t)
	}
}

type nopObserver struct{}

func (nopObserver) OnDiagnostic(Diagnostic) {}
func (nopObserver) OnDispatch(Dispatch)     {}
func (nopObserver) OnTransition(Transition) {}
