package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/annel0/touchblock/internal/config"
	"github.com/annel0/touchblock/internal/eventbus"
	"github.com/annel0/touchblock/internal/logging"
	"github.com/annel0/touchblock/internal/media"
	"github.com/annel0/touchblock/internal/observability"
	"github.com/annel0/touchblock/internal/scene"
	"github.com/annel0/touchblock/internal/storage"
	"github.com/annel0/touchblock/internal/world/block"
	"github.com/annel0/touchblock/internal/world/entity"

	// Регистрация префабов блоков
	_ "github.com/annel0/touchblock/internal/world/block/implementations"
)

// host собирает все подсистемы вокруг одной сцены
type host struct {
	cfg *config.Config

	registry          *prometheus.Registry
	metricsServer     *observability.MetricsServer
	shutdownTelemetry func(context.Context) error

	bus      eventbus.EventBus
	subs     []eventbus.Subscription
	exporter *eventbus.MetricsExporter

	repo    storage.StateRepo
	journal *storage.SQLiteJournal
	output  *media.Output

	scene *scene.Scene
}

// newHost поднимает подсистемы по конфигурации. При ошибке уже поднятые закрываются.
func newHost(ctx context.Context, cfg *config.Config) (*host, error) {
	h := &host{cfg: cfg, registry: prometheus.NewRegistry()}
	if err := h.init(ctx); err != nil {
		h.close()
		return nil, err
	}
	return h, nil
}

func (h *host) init(ctx context.Context) error {
	cfg := h.cfg
	h.registry.MustRegister(collectors.NewGoCollector())

	if cfg.Telemetry.Enabled {
		var err error
		h.shutdownTelemetry, err = observability.InitTelemetry(ctx, observability.TelemetryConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Endpoint:    cfg.Telemetry.Endpoint,
			Insecure:    cfg.Telemetry.Insecure,
			SampleRatio: cfg.Telemetry.SampleRatio,
		})
		if err != nil {
			return fmt.Errorf("телеметрия: %w", err)
		}
	}

	blockMetrics, err := observability.NewBlockMetrics(h.registry)
	if err != nil {
		return fmt.Errorf("метрики блоков: %w", err)
	}
	if cfg.Metrics.Enabled {
		addr := fmt.Sprintf(":%d", cfg.Metrics.GetMetricsPort())
		h.metricsServer = observability.StartMetricsServer(addr, h.registry)
	}

	if h.bus, err = h.openBus(); err != nil {
		return err
	}
	if err := h.startListeners(); err != nil {
		return err
	}

	if h.repo, err = h.openRepo(ctx); err != nil {
		return err
	}

	h.output = h.openOutput()

	opts := []scene.Option{
		scene.WithObserver(blockMetrics),
		scene.WithObserver(eventbus.NewBlockPublisher(h.bus, cfg.Scene.ID, cfg.EventBus.Diagnostics)),
		scene.WithAudio(media.DefaultLibrary(), h.output),
	}
	if cfg.Scene.EffectTTL > 0 {
		opts = append(opts, scene.WithEffectTTL(cfg.Scene.EffectTTL))
	}
	h.scene = scene.New(cfg.Scene.ID, opts...)

	return h.populate()
}

func (h *host) openBus() (eventbus.EventBus, error) {
	switch h.cfg.EventBus.Driver {
	case "jetstream":
		bus, err := eventbus.NewJetStreamBus(h.cfg.EventBus.GetURL(), h.cfg.EventBus.Stream, h.cfg.EventBus.RetentionDuration())
		if err != nil {
			return nil, fmt.Errorf("шина событий: %w", err)
		}
		return bus, nil
	default:
		return eventbus.NewMemoryBus(h.cfg.EventBus.Capacity), nil
	}
}

func (h *host) startListeners() error {
	sub, err := eventbus.StartLoggingListener(h.bus)
	if err != nil {
		return fmt.Errorf("логирование событий: %w", err)
	}
	h.subs = append(h.subs, sub)

	if h.cfg.Storage.Journal != "" {
		if h.journal, err = storage.OpenSQLiteJournal(h.cfg.Storage.Journal); err != nil {
			return fmt.Errorf("журнал: %w", err)
		}
		if sub, err = eventbus.StartJournalListener(h.bus, h.journal); err != nil {
			return fmt.Errorf("журнал: %w", err)
		}
		h.subs = append(h.subs, sub)
	}

	if h.exporter, err = eventbus.NewMetricsExporter(h.bus, h.registry); err != nil {
		return fmt.Errorf("метрики шины: %w", err)
	}
	h.exporter.Start(5 * time.Second)
	return nil
}

func (h *host) openRepo(ctx context.Context) (storage.StateRepo, error) {
	sc := h.cfg.Storage
	switch sc.Driver {
	case "badger":
		repo, err := storage.NewBadgerStateRepo(sc.Path)
		if err != nil {
			return nil, fmt.Errorf("badger: %w", err)
		}
		return repo, nil
	case "redis":
		repo, err := storage.NewRedisStateRepo(ctx, &storage.RedisConfig{
			Addr:      sc.Redis.GetAddr(),
			Password:  sc.Redis.Password,
			DB:        sc.Redis.DB,
			KeyPrefix: sc.Redis.KeyPrefix,
			TTL:       sc.Redis.TTL(),
		})
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		return repo, nil
	default:
		return storage.NewMemoryStateRepo(), nil
	}
}

// openOutput включает динамик. Без устройства звук остаётся в микшерах источников.
func (h *host) openOutput() *media.Output {
	if !h.cfg.Audio.Speaker {
		return nil
	}
	out := media.NewOutput()
	if err := out.Initialize(h.cfg.Audio.BufferDuration()); err != nil {
		logging.Warn("🔇 Звук отключён: %v", err)
		return nil
	}
	return out
}

// populate создаёт акторов и блоки сцены из конфигурации
func (h *host) populate() error {
	sc := h.cfg.Scene
	for _, a := range sc.Actors {
		kind, ok := entity.ParseKind(a.Kind)
		if !ok {
			return fmt.Errorf("актор %q: неизвестный вид %q", a.Tag, a.Kind)
		}
		if _, err := h.scene.SpawnActor(kind, actorTag(a), config.Vec(a.Position)); err != nil {
			return err
		}
	}

	for _, b := range sc.Blocks {
		if b.Prefab != "" {
			if _, err := h.scene.SpawnPrefab(b.Prefab, b.ID, config.Vec(b.Position)); err != nil {
				return err
			}
			continue
		}
		bc, err := b.BlockConfig()
		if err != nil {
			return err
		}
		if _, err := h.scene.SpawnBlock(bc); err != nil {
			return err
		}
	}

	logging.Info("🧱 Сцена %s: %d акторов, %d блоков", sc.ID, len(sc.Actors), len(h.scene.Blocks()))
	return nil
}

// run восстанавливает состояние, проигрывает сценарий касаний и сохраняет результат
func (h *host) run(ctx context.Context) error {
	if err := h.scene.Load(ctx, h.repo); err != nil {
		logging.Warn("⚠️ Не все состояния восстановлены: %v", err)
	}

	sc := h.cfg.Scene
	for i, c := range sc.Contacts {
		if ctx.Err() != nil {
			logging.Info("⏹️ Сценарий прерван на касании %d", i)
			break
		}

		pos := config.Vec(c.Position)
		if len(c.Position) == 0 {
			if actor, ok := h.scene.Actor(block.Tag(c.Actor)); ok {
				pos = actor.Position()
			}
		}

		err := h.scene.Contact(ctx, block.Tag(c.Actor), c.Block, pos)
		if errors.Is(err, scene.ErrBlockNotFound) {
			logging.Debug("Касание %d: блок %s уже удалён", i, c.Block)
		} else if err != nil {
			return fmt.Errorf("касание %d: %w", i, err)
		}
		h.scene.Update(sc.StepFor(c))
	}

	h.report()

	// Сохранение со своим таймаутом: контекст сигнала к этому моменту может быть отменён
	saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return h.scene.Save(saveCtx, h.repo)
}

func (h *host) report() {
	for _, a := range h.cfg.Scene.Actors {
		actor, ok := h.scene.Actor(actorTag(a))
		if !ok {
			continue
		}
		switch v := actor.(type) {
		case *entity.Player:
			logging.Info("🏃 %s: очки=%g здоровье=%g жив=%t", v.Tag(), v.Score, v.Health, v.Alive)
		case *entity.Controller:
			logging.Info("🎮 %s: очки=%g сообщений=%d", v.Tag(), v.Score, v.Received)
		}
	}
	logging.Info("🧱 Осталось блоков: %d, эффектов: %d", len(h.scene.Blocks()), len(h.scene.Effects()))
}

// close останавливает подсистемы в обратном порядке
func (h *host) close() {
	if h.exporter != nil {
		h.exporter.Stop()
	}
	if h.bus != nil {
		if err := h.bus.Close(); err != nil {
			logging.Warn("Закрытие шины: %v", err)
		}
	}
	for _, sub := range h.subs {
		sub.Unsubscribe()
	}
	if h.journal != nil {
		_ = h.journal.Close()
	}
	if h.repo != nil {
		if err := h.repo.Close(); err != nil {
			logging.Warn("Закрытие хранилища: %v", err)
		}
	}
	if h.output != nil {
		h.output.Cleanup()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if h.metricsServer != nil {
		_ = h.metricsServer.Shutdown(ctx)
	}
	if h.shutdownTelemetry != nil {
		if err := h.shutdownTelemetry(ctx); err != nil {
			logging.Warn("Остановка телеметрии: %v", err)
		}
	}
}

// actorTag тег актора из конфигурации, контроллер по умолчанию GameController
func actorTag(a config.ActorSpec) block.Tag {
	if a.Tag == "" && a.Kind == "controller" {
		return block.ControllerTag
	}
	return block.Tag(a.Tag)
}
