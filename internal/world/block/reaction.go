package block

import (
	"fmt"
	"sort"
)

// Function имя реакции, отправляемой актору. Набор известных реакций закрыт.
type Function string

// Известные реакции
const (
	FuncChangeScore Function = "ChangeScore"
	FuncDie         Function = "Die"
	FuncAttach      Function = "AttachToThis" // зарезервировано: полезная нагрузка всегда сам блок
	FuncChangeSpeed Function = "ChangeSpeed"
	FuncHeal        Function = "Heal"
	FuncShield      Function = "Shield"
)

var knownFunctions = map[Function]struct{}{
	FuncChangeScore: {},
	FuncDie:         {},
	FuncAttach:      {},
	FuncChangeSpeed: {},
	FuncHeal:        {},
	FuncShield:      {},
}

// Known проверяет, входит ли реакция в каталог
func (f Function) Known() bool {
	_, ok := knownFunctions[f]
	return ok
}

// KnownFunctions возвращает отсортированный каталог реакций
func KnownFunctions() []Function {
	out := make([]Function, 0, len(knownFunctions))
	for fn := range knownFunctions {
		out = append(out, fn)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Action действие правила реакции. Варианты: Inert, SendMessage, AttachSelf.
type Action interface {
	// Function возвращает имя реакции ("" для Inert)
	Function() Function
	isAction()
}

// Inert правило настроено без имени функции: занимает слот, но ничего не отправляет
type Inert struct{}

// SendMessage отправляет актору реакцию Fn с параметром Param
type SendMessage struct {
	Fn    Function
	Param Param
}

// AttachSelf отправляет AttachToThis со ссылкой на сам блок вместо параметра
type AttachSelf struct{}

func (Inert) Function() Function         { return "" }
func (a SendMessage) Function() Function { return a.Fn }
func (AttachSelf) Function() Function    { return FuncAttach }

func (Inert) isAction()       {}
func (SendMessage) isAction() {}
func (AttachSelf) isAction()  {}

// ReactionRule одно правило таблицы реакций
type ReactionRule struct {
	TargetTag Tag
	Action    Action
}

// NewRule строит правило из конфигурационной тройки (tag, function, parameter).
// Пустое имя даёт Inert, AttachToThis даёт AttachSelf (параметр отбрасывается).
func NewRule(target Tag, function string, param float64) (ReactionRule, error) {
	fn := Function(function)
	switch {
	case fn == "":
		return ReactionRule{TargetTag: target, Action: Inert{}}, nil
	case fn == FuncAttach:
		return ReactionRule{TargetTag: target, Action: AttachSelf{}}, nil
	case fn.Known():
		return ReactionRule{TargetTag: target, Action: SendMessage{Fn: fn, Param: Param(param)}}, nil
	default:
		return ReactionRule{}, fmt.Errorf("%w: %q", ErrUnknownFunction, function)
	}
}

// normalize приводит действие к каноническому варианту и проверяет каталог
func (r ReactionRule) normalize() (ReactionRule, error) {
	switch a := r.Action.(type) {
	case nil:
		r.Action = Inert{}
	case SendMessage:
		switch {
		case a.Fn == "":
			r.Action = Inert{}
		case a.Fn == FuncAttach:
			r.Action = AttachSelf{}
		case !a.Fn.Known():
			return r, fmt.Errorf("%w: %q", ErrUnknownFunction, a.Fn)
		}
	}
	return r, nil
}

// isCandidate правило рассматривается, если его тег совпал с тегом актора или это тег контроллера
func (r ReactionRule) isCandidate(actorTag Tag) bool {
	return r.TargetTag == actorTag || r.TargetTag == ControllerTag
}

// fires кандидат срабатывает, только если действие не Inert
func (r ReactionRule) fires() bool {
	_, inert := r.Action.(Inert)
	return !inert
}
