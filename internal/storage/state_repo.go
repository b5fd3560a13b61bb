package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/annel0/touchblock/internal/world/block"
)

// ErrInvalidKey возвращается для пустого идентификатора сцены или блока
var ErrInvalidKey = errors.New("пустой идентификатор сцены или блока")

// StateRepo хранит состояния счётчиков удаления блоков между сессиями.
// Состояния сгруппированы по сцене (sceneID), внутри сцены ключ - ID блока.
type StateRepo interface {
	// Save сохраняет состояние одного блока
	Save(ctx context.Context, sceneID string, st block.State) error

	// Load загружает состояние блока. bool == false, если состояние не сохранялось.
	Load(ctx context.Context, sceneID, blockID string) (block.State, bool, error)

	// LoadAll загружает все состояния сцены
	LoadAll(ctx context.Context, sceneID string) (map[string]block.State, error)

	// Delete удаляет сохранённое состояние блока
	Delete(ctx context.Context, sceneID, blockID string) error

	// BatchSave сохраняет состояния нескольких блоков одной операцией
	BatchSave(ctx context.Context, sceneID string, states []block.State) error

	Close() error
}

func validateKey(sceneID, blockID string) error {
	if sceneID == "" || blockID == "" {
		return fmt.Errorf("%w: scene=%q block=%q", ErrInvalidKey, sceneID, blockID)
	}
	return nil
}

func encodeState(st block.State) ([]byte, error) {
	data, err := json.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации состояния %s: %w", st.ID, err)
	}
	return data, nil
}

func decodeState(data []byte) (block.State, error) {
	var st block.State
	if err := json.Unmarshal(data, &st); err != nil {
		return block.State{}, fmt.Errorf("ошибка десериализации состояния: %w", err)
	}
	return st, nil
}

func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
