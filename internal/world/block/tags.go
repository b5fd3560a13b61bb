package block

import "fmt"

// Tag логический тег актора сцены ("Player", "GameController", ...)
type Tag string

// ControllerTag зарезервированный тег контроллера игры. Правило с этим тегом
// является кандидатом при любом релевантном касании, независимо от тега актора.
const ControllerTag Tag = "GameController"

// MaxTargetTags число слотов целевых тегов у блока
const MaxTargetTags = 3

// TargetTags набор тегов акторов, которые могут касаться блока.
// Пустой слот не задан и ни с чем не совпадает.
type TargetTags [MaxTargetTags]Tag

// NewTargetTags собирает набор из не более чем трёх тегов
func NewTargetTags(tags ...Tag) (TargetTags, error) {
	var tt TargetTags
	if len(tags) > MaxTargetTags {
		return tt, fmt.Errorf("%w: получено %d", ErrTooManyTargetTags, len(tags))
	}
	copy(tt[:], tags)
	return tt, nil
}

// Contains проверяет, совпадает ли tag с одним из заданных слотов
func (t TargetTags) Contains(tag Tag) bool {
	for _, target := range t {
		if target != "" && target == tag {
			return true
		}
	}
	return false
}

// Empty возвращает true, если ни один слот не задан
func (t TargetTags) Empty() bool {
	for _, target := range t {
		if target != "" {
			return false
		}
	}
	return true
}

// List возвращает заданные теги в порядке слотов
func (t TargetTags) List() []Tag {
	out := make([]Tag, 0, MaxTargetTags)
	for _, target := range t {
		if target != "" {
			out = append(out, target)
		}
	}
	return out
}
