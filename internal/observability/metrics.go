package observability

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/annel0/touchblock/internal/logging"
	"github.com/annel0/touchblock/internal/world/block"
)

// BlockMetrics считает касания, реакции и удаления блоков. Реализует block.Observer.
type BlockMetrics struct {
	contacts      *prometheus.CounterVec
	candidates    *prometheus.CounterVec
	reactions     *prometheus.CounterVec
	removals      *prometheus.CounterVec
	remaining     *prometheus.GaugeVec
}

// NewBlockMetrics создаёт метрики и регистрирует их в reg
func NewBlockMetrics(reg prometheus.Registerer) (*BlockMetrics, error) {
	m := &BlockMetrics{
		contacts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "touchblock",
			Name:      "contacts_total",
			Help:      "Релевантные касания блоков.",
		}, []string{"block", "actor"}),
		candidates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "touchblock",
			Name:      "rule_candidates_total",
			Help:      "Правила-кандидаты, в том числе без функции.",
		}, []string{"function"}),
		reactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "touchblock",
			Name:      "reactions_total",
			Help:      "Отправленные сообщения реакций.",
		}, []string{"function", "delivered"}),
		removals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "touchblock",
			Name:      "removals_total",
			Help:      "Блоки, удалённые после исчерпания касаний.",
		}, []string{"block"}),
		remaining: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "touchblock",
			Name:      "remaining_touches",
			Help:      "Остаток касаний живого блока по его ID.",
		}, []string{"block_id"}),
	}

	for _, c := range []prometheus.Collector{m.contacts, m.candidates, m.reactions, m.removals, m.remaining} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *BlockMetrics) OnDiagnostic(d block.Diagnostic) {
	fn := string(d.Function)
	if fn == "" {
		fn = "none"
	}
	m.candidates.WithLabelValues(fn).Inc()
}

func (m *BlockMetrics) OnDispatch(d block.Dispatch) {
	m.reactions.WithLabelValues(string(d.Message.Function), strconv.FormatBool(d.Delivered)).Inc()
}

func (m *BlockMetrics) OnTransition(t block.Transition) {
	m.contacts.WithLabelValues(t.BlockName, string(t.ActorTag)).Inc()
	if t.Removed() {
		m.removals.WithLabelValues(t.BlockName).Inc()
		// Удалённый блок больше не касаются, его ряд не нужен
		m.remaining.DeleteLabelValues(t.BlockID)
		return
	}
	m.remaining.WithLabelValues(t.BlockID).Set(float64(t.After.Remaining))
}

// MetricsServer HTTP-эндпоинт Prometheus
type MetricsServer struct {
	srv *http.Server
}

// StartMetricsServer запускает /metrics на addr (например, ":2112").
// Метод неблокирующий: HTTP-сервер стартует в отдельной горутине.
func StartMetricsServer(addr string, gatherer prometheus.Gatherer) *MetricsServer {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logging.Info("📈 Prometheus /metrics доступен по адресу %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Ошибка Prometheus HTTP сервера: %v", err)
		}
	}()
	return &MetricsServer{srv: srv}
}

// Shutdown останавливает HTTP-сервер
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
