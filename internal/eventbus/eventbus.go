package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Envelope универсальный контейнер события блока.
type Envelope struct {
	ID            string            // UUID события
	Timestamp     time.Time         // Время создания (UTC)
	Source        string            // Сцена-источник
	EventType     string            // BlockContact, BlockReaction, ...
	Version       int               // Версия схемы полезной нагрузки
	CorrelationID string            // ID касания, породившего событие
	Priority      int               // 0=Low … 9=Critical (для backpressure)
	Payload       []byte            // JSON полезной нагрузки
	Metadata      map[string]string // Произвольные метаданные
}

// NewEnvelope сериализует полезную нагрузку и заполняет служебные поля
func NewEnvelope(eventType, source string, priority int, payload interface{}) (*Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("сериализация %s: %w", eventType, err)
	}
	return &Envelope{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Source:    source,
		EventType: eventType,
		Version:   1,
		Priority:  priority,
		Payload:   data,
	}, nil
}

// Decode разбирает полезную нагрузку в v
func (e *Envelope) Decode(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// ErrClosed возвращается при публикации в закрытую шину
var ErrClosed = errors.New("шина событий закрыта")

// Filter позволяет подписаться только на нужные события.
type Filter struct {
	Types   []string // Пусто: все типы.
	Sources []string // Пусто: все источники.
}

// Subscription возвращается при подписке; позволяет отписаться.
type Subscription interface {
	Unsubscribe()
}

// Handler потребляет события.
type Handler func(ctx context.Context, ev *Envelope)

// Stats агрегированные метрики шины.
type Stats struct {
	Published uint64
	Consumed  uint64
	Dropped   uint64
	InFlight  int
}

// EventBus абстракция шины событий: в памяти или JetStream.
type EventBus interface {
	Publish(ctx context.Context, ev *Envelope) error
	Subscribe(ctx context.Context, f Filter, h Handler) (Subscription, error)
	Metrics() Stats
	Close() error
}

//================ In-Memory implementation =================//

// MemoryBus шина в памяти. Один цикл доставки: подписчики получают события в порядке публикации.
type MemoryBus struct {
	mu          sync.RWMutex
	subscribers map[int]subscriber
	nextID      int
	stats       Stats
	buffer      chan *Envelope
	done        chan struct{}
	closeOnce   sync.Once

	sendMu sync.RWMutex // Защищает buffer от закрытия во время отправки
	closed bool
}

type subscriber struct {
	filter  Filter
	handler Handler
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewMemoryBus создаёт шину с указанным буфером.
func NewMemoryBus(capacity int) *MemoryBus {
	if capacity <= 0 {
		capacity = 1024
	}
	mb := &MemoryBus{
		subscribers: make(map[int]subscriber),
		buffer:      make(chan *Envelope, capacity),
		done:        make(chan struct{}),
	}
	go mb.dispatchLoop()
	return mb
}

func (mb *MemoryBus) Publish(ctx context.Context, ev *Envelope) error {
	mb.sendMu.RLock()
	defer mb.sendMu.RUnlock()
	if mb.closed {
		return ErrClosed
	}

	select {
	case mb.buffer <- ev:
		mb.count(func(s *Stats) { s.Published++ })
		return nil
	default:
		// Буфер заполнен, дропаем низкий приоритет (<5)
		if ev.Priority < 5 {
			mb.count(func(s *Stats) { s.Dropped++ })
			return nil
		}
		// Для High-priority блокируем до освобождения места или отмены контекста
		select {
		case mb.buffer <- ev:
			mb.count(func(s *Stats) { s.Published++ })
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (mb *MemoryBus) count(f func(*Stats)) {
	mb.mu.Lock()
	f(&mb.stats)
	mb.mu.Unlock()
}

func (mb *MemoryBus) Subscribe(ctx context.Context, f Filter, h Handler) (Subscription, error) {
	mb.mu.Lock()
	id := mb.nextID
	mb.nextID++
	cctx, cancel := context.WithCancel(ctx)
	mb.subscribers[id] = subscriber{filter: f, handler: h, ctx: cctx, cancel: cancel}
	mb.mu.Unlock()

	return &memSub{bus: mb, id: id}, nil
}

func (mb *MemoryBus) Metrics() Stats {
	mb.mu.RLock()
	defer mb.mu.RUnlock()
	s := mb.stats
	s.InFlight = len(mb.buffer)
	return s
}

// Close прекращает приём событий и дожидается доставки уже опубликованных
func (mb *MemoryBus) Close() error {
	mb.closeOnce.Do(func() {
		mb.sendMu.Lock()
		mb.closed = true
		close(mb.buffer)
		mb.sendMu.Unlock()
		<-mb.done
	})
	return nil
}

// dispatchLoop рассылает события подписчикам в порядке подписки.
func (mb *MemoryBus) dispatchLoop() {
	defer close(mb.done)

	for ev := range mb.buffer {
		mb.mu.RLock()
		ids := make([]int, 0, len(mb.subscribers))
		for id := range mb.subscribers {
			ids = append(ids, id)
		}
		subs := make([]subscriber, 0, len(ids))
		sort.Ints(ids)
		for _, id := range ids {
			subs = append(subs, mb.subscribers[id])
		}
		mb.mu.RUnlock()

		for _, sub := range subs {
			if !matchFilter(ev, sub.filter) {
				continue
			}
			if sub.ctx.Err() != nil {
				continue
			}
			sub.handler(sub.ctx, ev)
			mb.count(func(s *Stats) { s.Consumed++ })
		}
	}
}

func matchFilter(ev *Envelope, f Filter) bool {
	match := func(val string, arr []string) bool {
		if len(arr) == 0 {
			return true
		}
		for _, v := range arr {
			if v == val {
				return true
			}
		}
		return false
	}
	return match(ev.EventType, f.Types) && match(ev.Source, f.Sources)
}

type memSub struct {
	bus *MemoryBus
	id  int
}

func (s *memSub) Unsubscribe() {
	s.bus.mu.Lock()
	if sub, ok := s.bus.subscribers[s.id]; ok {
		sub.cancel()
		delete(s.bus.subscribers, s.id)
	}
	s.bus.mu.Unlock()
}
