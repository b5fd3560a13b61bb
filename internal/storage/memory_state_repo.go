package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/annel0/touchblock/internal/world/block"
)

// MemoryStateRepo реализует StateRepo в памяти.
// Используется, когда внешнее хранилище не настроено, и в тестах.
// ВНИМАНИЕ: данные теряются при перезапуске!
type MemoryStateRepo struct {
	mu   sync.RWMutex
	data map[string]map[string]block.State // sceneID -> blockID -> состояние
}

// NewMemoryStateRepo создает новый репозиторий состояний в памяти
func NewMemoryStateRepo() *MemoryStateRepo {
	return &MemoryStateRepo{
		data: make(map[string]map[string]block.State),
	}
}

// Save сохраняет состояние блока в памяти
func (r *MemoryStateRepo) Save(ctx context.Context, sceneID string, st block.State) error {
	if err := validateKey(sceneID, st.ID); err != nil {
		return err
	}
	if err := checkContext(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.put(sceneID, st)
	return nil
}

func (r *MemoryStateRepo) put(sceneID string, st block.State) {
	scene, ok := r.data[sceneID]
	if !ok {
		scene = make(map[string]block.State)
		r.data[sceneID] = scene
	}
	scene[st.ID] = st
}

// Load загружает состояние блока из памяти
func (r *MemoryStateRepo) Load(ctx context.Context, sceneID, blockID string) (block.State, bool, error) {
	if err := validateKey(sceneID, blockID); err != nil {
		return block.State{}, false, err
	}
	if err := checkContext(ctx); err != nil {
		return block.State{}, false, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	st, exists := r.data[sceneID][blockID]
	return st, exists, nil
}

// LoadAll возвращает копию всех состояний сцены
func (r *MemoryStateRepo) LoadAll(ctx context.Context, sceneID string) (map[string]block.State, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make(map[string]block.State, len(r.data[sceneID]))
	for id, st := range r.data[sceneID] {
		result[id] = st
	}
	return result, nil
}

// Delete удаляет состояние блока
func (r *MemoryStateRepo) Delete(ctx context.Context, sceneID, blockID string) error {
	if err := validateKey(sceneID, blockID); err != nil {
		return err
	}
	if err := checkContext(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.data[sceneID][blockID]; !exists {
		return fmt.Errorf("состояние блока %s в сцене %s не найдено", blockID, sceneID)
	}
	delete(r.data[sceneID], blockID)
	return nil
}

// BatchSave сохраняет несколько состояний атомарно: при ошибке валидации ничего не пишется
func (r *MemoryStateRepo) BatchSave(ctx context.Context, sceneID string, states []block.State) error {
	if len(states) == 0 {
		return nil
	}
	if err := checkContext(ctx); err != nil {
		return err
	}
	for _, st := range states {
		if err := validateKey(sceneID, st.ID); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, st := range states {
		r.put(sceneID, st)
	}
	return nil
}

// Count возвращает количество сохранённых состояний сцены (для отладки)
func (r *MemoryStateRepo) Count(sceneID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.data[sceneID])
}

// Close ничего не делает
func (r *MemoryStateRepo) Close() error { return nil }
