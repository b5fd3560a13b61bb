package config

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/annel0/touchblock/internal/logging"
	"github.com/annel0/touchblock/internal/world/block"
)

// Ошибки сценария
var (
	ErrInvalidConfig    = errors.New("некорректная конфигурация")
	ErrDuplicateActor   = errors.New("повторный тег актора")
	ErrDuplicateBlock   = errors.New("повторный идентификатор блока")
	ErrUnknownReference = errors.New("касание ссылается на неизвестный объект")
)

// SceneConfig описывает сцену: акторы, блоки и сценарий касаний
type SceneConfig struct {
	ID        string        `yaml:"id" json:"id"`
	Step      float64       `yaml:"step_seconds" json:"step_seconds"`
	EffectTTL float64       `yaml:"effect_ttl_seconds" json:"effect_ttl_seconds"`
	Actors    []ActorSpec   `yaml:"actors" json:"actors,omitempty"`
	Blocks    []BlockSpec   `yaml:"blocks" json:"blocks,omitempty"`
	Contacts  []ContactSpec `yaml:"contacts" json:"contacts,omitempty"`
}

type ActorSpec struct {
	Kind     string    `yaml:"kind" json:"kind"` // player | controller
	Tag      string    `yaml:"tag" json:"tag"`
	Position []float32 `yaml:"position" json:"position,omitempty"`
}

// BlockSpec блок сцены: либо из префаба, либо полностью описанный
type BlockSpec struct {
	ID                 string     `yaml:"id" json:"id"`
	Prefab             string     `yaml:"prefab" json:"prefab,omitempty"`
	Name               string     `yaml:"name" json:"name,omitempty"`
	TargetTags         []string   `yaml:"target_tags" json:"target_tags,omitempty"`
	Reactions          []RuleSpec `yaml:"reactions" json:"reactions,omitempty"`
	RemoveAfterTouches int        `yaml:"remove_after_touches" json:"remove_after_touches"`
	HitAnimation       string     `yaml:"hit_animation" json:"hit_animation,omitempty"`
	HitSound           string     `yaml:"hit_sound" json:"hit_sound,omitempty"`
	SoundSource        string     `yaml:"sound_source" json:"sound_source,omitempty"`
	DeathEffect        string     `yaml:"death_effect" json:"death_effect,omitempty"`
	Position           []float32  `yaml:"position" json:"position,omitempty"`
}

// RuleSpec конфигурационная тройка (tag, function, parameter)
type RuleSpec struct {
	Target   string  `yaml:"target" json:"target"`
	Function string  `yaml:"function" json:"function"`
	Param    float64 `yaml:"param" json:"param"`
}

// ContactSpec касание из сценария. Advance - шаг Update после касания,
// 0 означает шаг сцены.
type ContactSpec struct {
	Actor    string    `yaml:"actor" json:"actor"`
	Block    string    `yaml:"block" json:"block"`
	Position []float32 `yaml:"position" json:"position,omitempty"`
	Advance  float64   `yaml:"advance" json:"advance"`
}

// Vec переводит позицию из конфигурации в mgl32.Vec3, пустая позиция - начало координат
func Vec(p []float32) mgl32.Vec3 {
	var v mgl32.Vec3
	copy(v[:], p)
	return v
}

// BlockConfig строит block.Config из описания.
// Для префабов используйте scene.SpawnPrefab с ID и позицией.
func (b BlockSpec) BlockConfig() (block.Config, error) {
	tags := make([]block.Tag, 0, len(b.TargetTags))
	for _, t := range b.TargetTags {
		tags = append(tags, block.Tag(t))
	}
	tt, err := block.NewTargetTags(tags...)
	if err != nil {
		return block.Config{}, fmt.Errorf("блок %q: %w", b.ID, err)
	}

	rules := make([]block.ReactionRule, 0, len(b.Reactions))
	for i, r := range b.Reactions {
		rule, err := block.NewRule(block.Tag(r.Target), r.Function, r.Param)
		if err != nil {
			return block.Config{}, fmt.Errorf("блок %q, правило %d: %w", b.ID, i, err)
		}
		rules = append(rules, rule)
	}

	return block.Config{
		ID:                 b.ID,
		Name:               b.Name,
		TargetTags:         tt,
		Reactions:          rules,
		RemoveAfterTouches: b.RemoveAfterTouches,
		HitAnimation:       b.HitAnimation,
		HitSound:           b.HitSound,
		SoundSourceTag:     block.Tag(b.SoundSource),
		DeathEffect:        b.DeathEffect,
		Position:           Vec(b.Position),
	}, nil
}

// StepFor возвращает шаг Update после касания
func (s *SceneConfig) StepFor(c ContactSpec) float64 {
	if c.Advance > 0 {
		return c.Advance
	}
	return s.Step
}

// Validate проверяет конфигурацию схемой и перекрёстные ссылки сцены
func (c *Config) Validate() error {
	if err := validateSchema(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return c.Scene.validate()
}

func (s *SceneConfig) validate() error {
	actors := make(map[string]struct{}, len(s.Actors))
	for _, a := range s.Actors {
		tag := a.Tag
		if tag == "" && a.Kind == "controller" {
			tag = string(block.ControllerTag)
		}
		if _, dup := actors[tag]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateActor, tag)
		}
		actors[tag] = struct{}{}
	}

	blocks := make(map[string]struct{}, len(s.Blocks))
	for _, b := range s.Blocks {
		if _, dup := blocks[b.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateBlock, b.ID)
		}
		blocks[b.ID] = struct{}{}

		if b.Prefab != "" {
			continue
		}
		if _, err := b.BlockConfig(); err != nil {
			return err
		}
		for _, t := range b.TargetTags {
			if block.Tag(t) == block.ControllerTag {
				logging.GetComponentLogger(logging.ComponentConfig).Warn("блок %q: %s среди целевых тегов", b.ID, block.ControllerTag)
			}
		}
	}

	for i, ct := range s.Contacts {
		if _, ok := actors[ct.Actor]; !ok {
			return fmt.Errorf("%w: касание %d, актор %q", ErrUnknownReference, i, ct.Actor)
		}
		if _, ok := blocks[ct.Block]; !ok {
			return fmt.Errorf("%w: касание %d, блок %q", ErrUnknownReference, i, ct.Block)
		}
	}
	return nil
}
