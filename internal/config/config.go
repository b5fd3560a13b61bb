package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации хоста блоков
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" json:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics" json:"metrics"`
	Telemetry TelemetryConfig `yaml:"telemetry" json:"telemetry"`
	EventBus  EventBusConfig  `yaml:"eventbus" json:"eventbus"`
	Storage   StorageConfig   `yaml:"storage" json:"storage"`
	Audio     AudioConfig     `yaml:"audio" json:"audio"`
	Scene     SceneConfig     `yaml:"scene" json:"scene"`
}

type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	Dir   string `yaml:"dir" json:"dir"` // пусто - только консоль
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	Port    int  `yaml:"port" json:"port"`
}

type TelemetryConfig struct {
	Enabled     bool    `yaml:"enabled" json:"enabled"`
	ServiceName string  `yaml:"service_name" json:"service_name"`
	Endpoint    string  `yaml:"endpoint" json:"endpoint"`
	Insecure    bool    `yaml:"insecure" json:"insecure"`
	SampleRatio float64 `yaml:"sample_ratio" json:"sample_ratio"`
}

type EventBusConfig struct {
	Driver      string `yaml:"driver" json:"driver"` // memory | jetstream
	URL         string `yaml:"url" json:"url"`
	Stream      string `yaml:"stream" json:"stream"`
	Retention   int    `yaml:"retention_hours" json:"retention_hours"`
	Capacity    int    `yaml:"capacity" json:"capacity"`
	Diagnostics bool   `yaml:"diagnostics" json:"diagnostics"`
}

type StorageConfig struct {
	Driver  string      `yaml:"driver" json:"driver"` // memory | badger | redis
	Path    string      `yaml:"path" json:"path"`
	Redis   RedisConfig `yaml:"redis" json:"redis"`
	Journal string      `yaml:"journal" json:"journal"` // путь к sqlite, пусто - без журнала
}

type RedisConfig struct {
	Addr       string `yaml:"addr" json:"addr"`
	Password   string `yaml:"password" json:"password"`
	DB         int    `yaml:"db" json:"db"`
	KeyPrefix  string `yaml:"key_prefix" json:"key_prefix"`
	TTLSeconds int    `yaml:"ttl_seconds" json:"ttl_seconds"`
}

type AudioConfig struct {
	Speaker  bool `yaml:"speaker" json:"speaker"`
	BufferMs int  `yaml:"buffer_ms" json:"buffer_ms"`
}

// Default возвращает конфигурацию, с которой хост работает без файла
func Default() *Config {
	return &Config{
		Logging:   LoggingConfig{Level: "info"},
		Telemetry: TelemetryConfig{ServiceName: "touchblock", SampleRatio: 1},
		EventBus:  EventBusConfig{Driver: "memory", Stream: "TOUCHBLOCK", Retention: 24, Capacity: 1024},
		Storage:   StorageConfig{Driver: "memory"},
		Audio:     AudioConfig{BufferMs: 100},
		Scene:     SceneConfig{ID: "main", Step: 0.1},
	}
}

// GetMetricsPort возвращает порт Prometheus с поддержкой fallback значений
func (m *MetricsConfig) GetMetricsPort() int {
	return getPortWithEnvFallback(m.Port, "TOUCHBLOCK_METRICS_PORT", 2112)
}

// GetURL возвращает адрес NATS: config -> env -> default
func (e *EventBusConfig) GetURL() string {
	return getStringWithEnvFallback(e.URL, "TOUCHBLOCK_NATS_URL", "nats://127.0.0.1:4222")
}

// RetentionDuration переводит часы хранения стрима в time.Duration
func (e *EventBusConfig) RetentionDuration() time.Duration {
	return time.Duration(e.Retention) * time.Hour
}

// GetAddr возвращает адрес Redis: config -> env -> default
func (r *RedisConfig) GetAddr() string {
	return getStringWithEnvFallback(r.Addr, "TOUCHBLOCK_REDIS_ADDR", "localhost:6379")
}

// TTL возвращает время жизни ключей сцены, 0 - без ограничения
func (r *RedisConfig) TTL() time.Duration {
	return time.Duration(r.TTLSeconds) * time.Second
}

// BufferDuration возвращает размер буфера динамика
func (a *AudioConfig) BufferDuration() time.Duration {
	if a.BufferMs <= 0 {
		return 100 * time.Millisecond
	}
	return time.Duration(a.BufferMs) * time.Millisecond
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	if configPort > 0 {
		return configPort
	}

	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	return defaultPort
}

func getStringWithEnvFallback(value, envVar, def string) string {
	if value != "" {
		return value
	}
	if envVal := os.Getenv(envVar); envVal != "" {
		return envVal
	}
	return def
}

// Load читает YAML файл конфигурации поверх Default и проверяет его.
// Если path == "", пытается прочитать из ENV TOUCHBLOCK_CONFIG или возвращает Default().
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("TOUCHBLOCK_CONFIG")
		if path == "" {
			return Default(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse разбирает YAML поверх значений по умолчанию
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("разбор конфигурации: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
