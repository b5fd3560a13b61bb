package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/annel0/touchblock/internal/logging"
	"github.com/annel0/touchblock/internal/world/block"
)

// RedisStateRepo хранит состояния сцены в хэше Redis: ключ сцены, поле - ID блока
type RedisStateRepo struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// RedisConfig содержит настройки подключения к Redis
type RedisConfig struct {
	Addr      string        // Адрес Redis сервера
	Password  string        // Пароль (пустой если не требуется)
	DB        int           // Номер базы данных
	KeyPrefix string        // Префикс для ключей
	TTL       time.Duration // Время жизни сцены, 0 - бессрочно
}

// DefaultRedisConfig возвращает конфигурацию по умолчанию
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Addr:      "localhost:6379",
		KeyPrefix: "touchblock:state:",
	}
}

// NewRedisStateRepo подключается к Redis и проверяет соединение
func NewRedisStateRepo(ctx context.Context, config *RedisConfig) (*RedisStateRepo, error) {
	if config == nil {
		config = DefaultRedisConfig()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("не удалось подключиться к Redis: %w", err)
	}

	logging.GetStorageLogger().Info("🔴 Подключено к Redis %s", config.Addr)
	return NewRedisStateRepoWithClient(client, config.KeyPrefix, config.TTL), nil
}

// NewRedisStateRepoWithClient оборачивает готовый клиент
func NewRedisStateRepoWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisStateRepo {
	return &RedisStateRepo{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

func (r *RedisStateRepo) sceneKey(sceneID string) string {
	return r.keyPrefix + sceneID
}

// Save сохраняет состояние блока
func (r *RedisStateRepo) Save(ctx context.Context, sceneID string, st block.State) error {
	return r.BatchSave(ctx, sceneID, []block.State{st})
}

// BatchSave пишет состояния пайплайном
func (r *RedisStateRepo) BatchSave(ctx context.Context, sceneID string, states []block.State) error {
	if len(states) == 0 {
		return nil
	}

	values := make([]interface{}, 0, len(states)*2)
	for _, st := range states {
		if err := validateKey(sceneID, st.ID); err != nil {
			return err
		}
		data, err := encodeState(st)
		if err != nil {
			return err
		}
		values = append(values, st.ID, data)
	}

	key := r.sceneKey(sceneID)
	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, key, values...)
	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("ошибка записи сцены %s в Redis: %w", sceneID, err)
	}
	return nil
}

// Load загружает состояние блока
func (r *RedisStateRepo) Load(ctx context.Context, sceneID, blockID string) (block.State, bool, error) {
	if err := validateKey(sceneID, blockID); err != nil {
		return block.State{}, false, err
	}

	data, err := r.client.HGet(ctx, r.sceneKey(sceneID), blockID).Bytes()
	if errors.Is(err, redis.Nil) {
		return block.State{}, false, nil
	}
	if err != nil {
		return block.State{}, false, fmt.Errorf("ошибка чтения из Redis: %w", err)
	}

	st, err := decodeState(data)
	if err != nil {
		return block.State{}, false, err
	}
	return st, true, nil
}

// LoadAll загружает все состояния сцены. Повреждённые записи пропускаются.
func (r *RedisStateRepo) LoadAll(ctx context.Context, sceneID string) (map[string]block.State, error) {
	raw, err := r.client.HGetAll(ctx, r.sceneKey(sceneID)).Result()
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения сцены %s из Redis: %w", sceneID, err)
	}

	result := make(map[string]block.State, len(raw))
	for id, data := range raw {
		st, err := decodeState([]byte(data))
		if err != nil {
			logging.GetStorageLogger().Warn("⚠️ Повреждённое состояние %s/%s: %v", sceneID, id, err)
			continue
		}
		result[id] = st
	}
	return result, nil
}

// Delete удаляет состояние блока
func (r *RedisStateRepo) Delete(ctx context.Context, sceneID, blockID string) error {
	if err := validateKey(sceneID, blockID); err != nil {
		return err
	}
	if err := r.client.HDel(ctx, r.sceneKey(sceneID), blockID).Err(); err != nil {
		return fmt.Errorf("ошибка удаления из Redis: %w", err)
	}
	return nil
}

// Close закрывает соединение с Redis
func (r *RedisStateRepo) Close() error {
	return r.client.Close()
}
