package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/annel0/touchblock/internal/config"
	"github.com/annel0/touchblock/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "YAML конфигурация (по умолчанию TOUCHBLOCK_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	logging.LogDir = cfg.Logging.Dir
	if err := logging.InitDefaultLogger("blockhost"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()
	applyLogLevel(cfg.Logging.Level)

	logging.Info("🧱 Запуск хоста блоков, сцена %s", cfg.Scene.ID)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	h, err := newHost(ctx, cfg)
	if err != nil {
		logging.Error("❌ Ошибка запуска: %v", err)
		logging.CloseDefaultLogger()
		os.Exit(1)
	}

	runErr := h.run(ctx)
	h.close()
	_ = logging.GetLoggerManager().CloseAll()

	if runErr != nil {
		logging.Error("❌ Сценарий завершился с ошибкой: %v", runErr)
		logging.CloseDefaultLogger()
		os.Exit(1)
	}
	logging.Info("👋 Хост блоков остановлен")
}

func applyLogLevel(name string) {
	level, ok := logging.ParseLevel(name)
	if !ok {
		logging.Warn("Неизвестный уровень логирования %q, используется INFO", name)
	}
	logging.SetDefaultLevel(level)

	lm := logging.GetLoggerManager()
	lm.SetLevel(level)
	for _, c := range logging.Components() {
		lm.MustGetLogger(c)
	}
}
