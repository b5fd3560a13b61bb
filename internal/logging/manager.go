package logging

import (
	"errors"
	"fmt"
	"log"
	"os"
	"sort"
	"sync"
)

// Компоненты хоста блоков
const (
	ComponentBlock    = "block"
	ComponentScene    = "scene"
	ComponentEntity   = "entity"
	ComponentMedia    = "media"
	ComponentStorage  = "storage"
	ComponentEventBus = "eventbus"
	ComponentConfig   = "config"
)

// ErrUnknownComponent логгер компонента ещё не создан
var ErrUnknownComponent = errors.New("логгер компонента не создан")

// Components возвращает компоненты хоста в порядке запуска
func Components() []string {
	return []string{
		ComponentConfig, ComponentEventBus, ComponentStorage,
		ComponentMedia, ComponentBlock, ComponentEntity, ComponentScene,
	}
}

// LoggerManager хранит логгеры компонентов.
// Уровень из SetLevel получают и логгеры, созданные после вызова.
type LoggerManager struct {
	mu      sync.Mutex
	loggers map[string]*Logger
	level   *LogLevel
}

var (
	globalManager *LoggerManager
	managerOnce   sync.Once
)

func newLoggerManager() *LoggerManager {
	return &LoggerManager{loggers: make(map[string]*Logger)}
}

// GetLoggerManager возвращает глобальный менеджер логгеров
func GetLoggerManager() *LoggerManager {
	managerOnce.Do(func() {
		globalManager = newLoggerManager()
	})
	return globalManager
}

// GetLogger возвращает логгер компонента, создавая его при первом обращении
func (lm *LoggerManager) GetLogger(component string) (*Logger, error) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	if logger, exists := lm.loggers[component]; exists {
		return logger, nil
	}

	logger, err := NewLogger(component)
	if err != nil {
		return nil, fmt.Errorf("логгер %s: %w", component, err)
	}
	if lm.level != nil {
		logger.setLevels(*lm.level, TRACE)
	}
	lm.loggers[component] = logger
	return logger, nil
}

// MustGetLogger возвращает логгер компонента. Если файл логов не открылся,
// компонент до конца работы пишет только в консоль.
func (lm *LoggerManager) MustGetLogger(component string) *Logger {
	logger, err := lm.GetLogger(component)
	if err == nil {
		return logger
	}

	lm.mu.Lock()
	defer lm.mu.Unlock()
	level := INFO
	if lm.level != nil {
		level = *lm.level
	}
	logger = &Logger{
		component:       component,
		consoleLogger:   log.New(os.Stdout, "", log.LstdFlags),
		minConsoleLevel: level,
		minFileLevel:    ERROR,
	}
	lm.loggers[component] = logger
	logger.Warn("Файл логов недоступен: %v", err)
	return logger
}

// Replace подменяет логгер компонента (например, на NewWriterLogger в тестах)
func (lm *LoggerManager) Replace(component string, logger *Logger) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	lm.loggers[component] = logger
}

// SetLevel задаёт консольный уровень всем логгерам, текущим и будущим. В файл пишется всё.
func (lm *LoggerManager) SetLevel(level LogLevel) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	lm.level = &level
	for _, logger := range lm.loggers {
		logger.setLevels(level, TRACE)
	}
}

// SetLogLevel устанавливает уровни одного компонента
func (lm *LoggerManager) SetLogLevel(component string, consoleLevel, fileLevel LogLevel) error {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	logger, exists := lm.loggers[component]
	if !exists {
		return fmt.Errorf("%w: %s", ErrUnknownComponent, component)
	}
	logger.setLevels(consoleLevel, fileLevel)
	return nil
}

// CloseAll закрывает файлы всех логгеров и забывает их
func (lm *LoggerManager) CloseAll() error {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	var errs []error
	for component, logger := range lm.loggers {
		if err := logger.Close(); err != nil {
			errs = append(errs, fmt.Errorf("логгер %s: %w", component, err))
		}
	}
	lm.loggers = make(map[string]*Logger)
	return errors.Join(errs...)
}

// ListComponents возвращает отсортированный список зарегистрированных компонентов
func (lm *LoggerManager) ListComponents() []string {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	components := make([]string, 0, len(lm.loggers))
	for component := range lm.loggers {
		components = append(components, component)
	}
	sort.Strings(components)
	return components
}

// GetComponentLogger логгер компонента из глобального менеджера
func GetComponentLogger(component string) *Logger {
	return GetLoggerManager().MustGetLogger(component)
}

func GetBlockLogger() *Logger    { return GetComponentLogger(ComponentBlock) }
func GetSceneLogger() *Logger    { return GetComponentLogger(ComponentScene) }
func GetStorageLogger() *Logger  { return GetComponentLogger(ComponentStorage) }
func GetEventBusLogger() *Logger { return GetComponentLogger(ComponentEventBus) }
