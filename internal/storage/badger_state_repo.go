package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/dgraph-io/badger/v3"
	"github.com/klauspost/compress/zstd"

	"github.com/annel0/touchblock/internal/world/block"
)

// BadgerStateRepo хранит состояния блоков в BadgerDB.
// Значения сжимаются zstd: снимок сцены из тысяч блоков хорошо жмётся.
type BadgerStateRepo struct {
	db      *badger.DB
	dbPath  string
	encoder *zstd.Encoder
	decoder *zstd.Decoder
	mutex   sync.RWMutex
	isReady bool
}

// NewBadgerStateRepo открывает хранилище в каталоге dataPath/states.
// Пустой dataPath открывает хранилище в памяти.
func NewBadgerStateRepo(dataPath string) (*BadgerStateRepo, error) {
	var opts badger.Options
	dbPath := ""
	if dataPath == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		dbPath = filepath.Join(dataPath, "states")
		opts = badger.DefaultOptions(dbPath)
	}
	opts.Logger = nil // Отключаем логирование BadgerDB

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}

	return &BadgerStateRepo{
		db:      db,
		dbPath:  dbPath,
		encoder: encoder,
		decoder: decoder,
		isReady: true,
	}, nil
}

// Длина sceneID в ключе не даёт префиксу сцены "a" совпасть со сценой "a:b"
func stateKey(sceneID, blockID string) []byte {
	return append(scenePrefix(sceneID), blockID...)
}

func scenePrefix(sceneID string) []byte {
	return []byte(fmt.Sprintf("state:%d:%s:", len(sceneID), sceneID))
}

func (r *BadgerStateRepo) compress(st block.State) ([]byte, error) {
	data, err := encodeState(st)
	if err != nil {
		return nil, err
	}
	return r.encoder.EncodeAll(data, nil), nil
}

func (r *BadgerStateRepo) decompress(data []byte) (block.State, error) {
	raw, err := r.decoder.DecodeAll(data, nil)
	if err != nil {
		return block.State{}, fmt.Errorf("ошибка распаковки состояния: %w", err)
	}
	return decodeState(raw)
}

func (r *BadgerStateRepo) ready() error {
	if !r.isReady {
		return fmt.Errorf("хранилище не готово")
	}
	return nil
}

// Save сохраняет состояние блока
func (r *BadgerStateRepo) Save(ctx context.Context, sceneID string, st block.State) error {
	return r.BatchSave(ctx, sceneID, []block.State{st})
}

// BatchSave сохраняет состояния в одной транзакции
func (r *BadgerStateRepo) BatchSave(ctx context.Context, sceneID string, states []block.State) error {
	if len(states) == 0 {
		return nil
	}
	if err := checkContext(ctx); err != nil {
		return err
	}

	r.mutex.RLock()
	defer r.mutex.RUnlock()
	if err := r.ready(); err != nil {
		return err
	}

	values := make(map[string][]byte, len(states))
	for _, st := range states {
		if err := validateKey(sceneID, st.ID); err != nil {
			return err
		}
		data, err := r.compress(st)
		if err != nil {
			return err
		}
		values[string(stateKey(sceneID, st.ID))] = data
	}

	err := r.db.Update(func(txn *badger.Txn) error {
		for key, data := range values {
			if err := txn.Set([]byte(key), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("ошибка сохранения в BadgerDB: %w", err)
	}
	return nil
}

// Load загружает состояние блока
func (r *BadgerStateRepo) Load(ctx context.Context, sceneID, blockID string) (block.State, bool, error) {
	if err := validateKey(sceneID, blockID); err != nil {
		return block.State{}, false, err
	}
	if err := checkContext(ctx); err != nil {
		return block.State{}, false, err
	}

	r.mutex.RLock()
	defer r.mutex.RUnlock()
	if err := r.ready(); err != nil {
		return block.State{}, false, err
	}

	var st block.State
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(stateKey(sceneID, blockID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			st, err = r.decompress(val)
			return err
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return block.State{}, false, nil
	}
	if err != nil {
		return block.State{}, false, fmt.Errorf("ошибка загрузки из BadgerDB: %w", err)
	}
	return st, true, nil
}

// LoadAll перебирает все состояния сцены по префиксу ключа
func (r *BadgerStateRepo) LoadAll(ctx context.Context, sceneID string) (map[string]block.State, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	r.mutex.RLock()
	defer r.mutex.RUnlock()
	if err := r.ready(); err != nil {
		return nil, err
	}

	result := make(map[string]block.State)
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := scenePrefix(sceneID)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				st, err := r.decompress(val)
				if err != nil {
					return err
				}
				result[st.ID] = st
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения сцены %s: %w", sceneID, err)
	}
	return result, nil
}

// Delete удаляет состояние блока
func (r *BadgerStateRepo) Delete(ctx context.Context, sceneID, blockID string) error {
	if err := validateKey(sceneID, blockID); err != nil {
		return err
	}
	if err := checkContext(ctx); err != nil {
		return err
	}

	r.mutex.RLock()
	defer r.mutex.RUnlock()
	if err := r.ready(); err != nil {
		return err
	}

	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(stateKey(sceneID, blockID))
	})
}

// Close закрывает хранилище
func (r *BadgerStateRepo) Close() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if !r.isReady {
		return nil
	}
	r.isReady = false
	r.encoder.Close()
	r.decoder.Close()
	return r.db.Close()
}
