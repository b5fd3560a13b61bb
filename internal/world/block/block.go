package block

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/annel0/touchblock/internal/logging"
)

// Config полная конфигурация блока. После New не меняется.
type Config struct {
	ID                 string
	Name               string
	TargetTags         TargetTags
	Reactions          []ReactionRule
	RemoveAfterTouches int // 0 - блок не удаляется касаниями
	HitAnimation       string
	HitSound           string
	SoundSourceTag     Tag
	DeathEffect        string
	Position           mgl32.Vec3
}

// Clone возвращает копию конфигурации с собственным срезом реакций
func (c Config) Clone() Config {
	out := c
	out.Reactions = append([]ReactionRule(nil), c.Reactions...)
	return out
}

// Block сущность, реагирующая на касания.
// Не потокобезопасен: касания обрабатываются по одному циклом хоста.
type Block struct {
	cfg       Config
	env       Env
	animator  AnimationPlayer
	position  mgl32.Vec3
	removable bool
	counter   removalCounter
}

// New проверяет конфигурацию и создаёт блок. Признак удаляемости
// вычисляется здесь один раз и больше не меняется.
func New(cfg Config, env Env) (*Block, error) {
	cfg = cfg.Clone()

	if cfg.RemoveAfterTouches < 0 {
		return nil, fmt.Errorf("блок %q: %w (%d)", cfg.Name, ErrNegativeTouches, cfg.RemoveAfterTouches)
	}
	if cfg.TargetTags.Empty() {
		return nil, fmt.Errorf("блок %q: %w", cfg.Name, ErrNoTargetTags)
	}
	for i, rule := range cfg.Reactions {
		normalized, err := rule.normalize()
		if err != nil {
			return nil, fmt.Errorf("блок %q, правило %d: %w", cfg.Name, i, err)
		}
		cfg.Reactions[i] = normalized
	}
	if cfg.TargetTags.Contains(ControllerTag) {
		logging.GetBlockLogger().Warn("блок %q: тег %s среди целевых, правила контроллера совпадут с тегом актора", cfg.Name, ControllerTag)
	}

	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	if cfg.Name == "" {
		cfg.Name = cfg.ID
	}
	if env.Observer == nil {
		env.Observer = nopObserver{}
	}

	return &Block{
		cfg:       cfg,
		env:       env,
		position:  cfg.Position,
		removable: cfg.RemoveAfterTouches > 0,
		counter:   newRemovalCounter(cfg.RemoveAfterTouches),
	}, nil
}

// ID возвращает идентификатор блока
func (b *Block) ID() string { return b.cfg.ID }

// Name возвращает имя блока для диагностики
func (b *Block) Name() string { return b.cfg.Name }

// Config возвращает копию конфигурации
func (b *Block) Config() Config { return b.cfg.Clone() }

// Removable возвращает признак удаляемости, зафиксированный при создании
func (b *Block) Removable() bool { return b.removable }

// Position возвращает текущую мировую позицию блока
func (b *Block) Position() mgl32.Vec3 { return b.position }

// SetPosition перемещает блок (например, движущуюся платформу)
func (b *Block) SetPosition(pos mgl32.Vec3) { b.position = pos }

// AttachAnimator прикрепляет проигрыватель анимаций. nil открепляет.
func (b *Block) AttachAnimator(a AnimationPlayer) { b.animator = a }

// State возвращает текущее состояние счётчика удаления
func (b *Block) State() State {
	return State{ID: b.cfg.ID, Phase: b.counter.phase, Remaining: b.counter.remaining}
}

// Removed сообщает, уничтожен ли блок
func (b *Block) Removed() bool { return b.counter.phase == PhaseRemoved }

// IsRelevant решает, относится ли касание к блоку: тег актора совпадает с одним из целевых
func (b *Block) IsRelevant(actorTag Tag) bool {
	return b.cfg.TargetTags.Contains(actorTag)
}

// OnContact точка входа физики. Нерелевантное касание и касание удалённого
// блока ничего не делают. Порядок: реакции, обратная связь, счётчик удаления.
func (b *Block) OnContact(ev ContactEvent) {
	if b.counter.phase == PhaseRemoved {
		return
	}
	if !b.IsRelevant(ev.ActorTag) {
		return
	}

	b.dispatch(ev)
	b.emitFeedback()
	b.countTouch(ev)
}

// countTouch продвигает счётчик и при исчерпании удаляет блок
func (b *Block) countTouch(ev ContactEvent) {
	before := b.State()
	removed := b.counter.touch()

	if removed {
		if b.cfg.DeathEffect != "" && b.env.Effects != nil {
			b.env.Effects.Spawn(b.cfg.DeathEffect, b.position, mgl32.QuatIdent())
		}
		if b.env.Lifecycle != nil {
			b.env.Lifecycle.Destroy(b)
		}
	}

	b.env.Observer.OnTransition(Transition{
		BlockID:   b.cfg.ID,
		BlockName: b.cfg.Name,
		ActorTag:  ev.ActorTag,
		Position:  ev.Position,
		Before:    before,
		After:     b.State(),
	})
}

// Snapshot возвращает состояние для сохранения между сессиями
func (b *Block) Snapshot() State { return b.State() }

// Restore применяет сохранённое состояние. Неудаляемый блок нельзя перевзвести,
// удалённый нельзя воскресить. Восстановление Removed завершает удаление
// без повторного эффекта смерти: эффект уже был показан в прошлой сессии.
func (b *Block) Restore(st State) error {
	if st.ID != "" && st.ID != b.cfg.ID {
		return fmt.Errorf("%w: снимок %s для блока %s", ErrStateMismatch, st.ID, b.cfg.ID)
	}
	if err := b.counter.checkRestore(b.cfg.RemoveAfterTouches, st); err != nil {
		return err
	}

	switch st.Phase {
	case PhaseActive:
		b.counter.remaining = st.Remaining
	case PhaseRemoved:
		b.counter = removalCounter{phase: PhaseRemoved}
		if b.env.Lifecycle != nil {
			b.env.Lifecycle.Destroy(b)
		}
	}
	return nil
}
