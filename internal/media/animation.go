package media

import (
	"sort"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/annel0/touchblock/internal/logging"
)

// Clip описывает анимацию одного значения (смещение, масштаб, поворот)
type Clip struct {
	Name     string
	From     float32
	To       float32
	Duration float32 // Секунды
	Ease     ease.TweenFunc
}

// DefaultClips набор клипов для блоков по умолчанию
func DefaultClips() []Clip {
	return []Clip{
		{Name: "hit", From: 1.2, To: 1, Duration: 0.25, Ease: ease.OutQuad},
		{Name: "shake", From: -0.15, To: 0, Duration: 0.3, Ease: ease.OutElastic},
		{Name: "bob", From: -0.1, To: 0, Duration: 0.5, Ease: ease.OutBounce},
	}
}

// Animator проигрыватель клипов одного блока. Одновременно играет один клип.
// Update вызывается владельцем каждый кадр, глобального менеджера нет.
type Animator struct {
	clips   map[string]Clip
	tween   *gween.Tween
	current string
	value   float32
	plays   int
}

// NewAnimator создаёт проигрыватель с заданными клипами
func NewAnimator(clips ...Clip) *Animator {
	a := &Animator{clips: make(map[string]Clip, len(clips))}
	for _, c := range clips {
		a.AddClip(c)
	}
	return a
}

// AddClip добавляет или заменяет клип
func (a *Animator) AddClip(c Clip) {
	if c.Ease == nil {
		c.Ease = ease.Linear
	}
	a.clips[c.Name] = c
}

// Clips возвращает отсортированные имена клипов
func (a *Animator) Clips() []string {
	names := make([]string, 0, len(a.clips))
	for name := range a.clips {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Stop останавливает текущий клип
func (a *Animator) Stop() {
	a.tween = nil
	a.current = ""
}

// Play запускает клип с нулевого кадра. Неизвестный клип игнорируется.
func (a *Animator) Play(name string) {
	c, ok := a.clips[name]
	if !ok {
		logging.GetComponentLogger(logging.ComponentMedia).Warn("Анимация %q не найдена", name)
		return
	}
	a.tween = gween.New(c.From, c.To, c.Duration, c.Ease)
	a.current = name
	a.value = c.From
	a.plays++
}

// Update продвигает клип на dt секунд и возвращает текущее значение.
// По завершении клип снимается.
func (a *Animator) Update(dt float32) (float32, bool) {
	if a.tween == nil {
		return a.value, true
	}
	val, finished := a.tween.Update(dt)
	a.value = val
	if finished {
		a.tween = nil
		a.current = ""
	}
	return val, finished
}

// Playing сообщает, играет ли клип
func (a *Animator) Playing() bool { return a.tween != nil }

// Current возвращает имя играющего клипа
func (a *Animator) Current() string { return a.current }

// Value возвращает последнее вычисленное значение
func (a *Animator) Value() float32 { return a.value }

// Plays возвращает число запусков клипов
func (a *Animator) Plays() int { return a.plays }
