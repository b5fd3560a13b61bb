package block

import (
	"fmt"
	"sort"
)

var prefabs = make(map[string]Config)

// RegisterPrefab добавляет шаблон блока в регистр
func RegisterPrefab(name string, cfg Config) {
	prefabs[name] = cfg.Clone()
}

// Prefab возвращает копию шаблона по имени
func Prefab(name string) (Config, bool) {
	cfg, exists := prefabs[name]
	if !exists {
		return Config{}, false
	}
	return cfg.Clone(), true
}

// IsValidPrefab проверяет, зарегистрирован ли шаблон
func IsValidPrefab(name string) bool {
	_, exists := prefabs[name]
	return exists
}

// PrefabNames возвращает отсортированные имена шаблонов
func PrefabNames() []string {
	names := make([]string, 0, len(prefabs))
	for name := range prefabs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FromPrefab создаёт блок по шаблону. ID, имя и позиция берутся из аргументов,
// остальная конфигурация из шаблона.
func FromPrefab(name, id string, env Env, mutate func(*Config)) (*Block, error) {
	cfg, ok := Prefab(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPrefab, name)
	}
	cfg.ID = id
	if mutate != nil {
		mutate(&cfg)
	}
	return New(cfg, env)
}
