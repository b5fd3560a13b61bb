package eventbus

import (
	"context"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/touchblock/internal/storage"
	"github.com/annel0/touchblock/internal/world/block"
)

// collector собирает доставленные события
type collector struct {
	mu     sync.Mutex
	events []*Envelope
}

func (c *collector) handle(_ context.Context, ev *Envelope) {
	c.mu.Lock()
	c.events = append(c.events, ev)
	c.mu.Unlock()
}

func (c *collector) types() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.events))
	for i, ev := range c.events {
		out[i] = ev.EventType
	}
	return out
}

func TestMemoryBus_OrderedDeliveryAndFilter(t *testing.T) {
	bus := NewMemoryBus(16)
	all, onlyRemoved := &collector{}, &collector{}
	_, err := bus.Subscribe(context.Background(), Filter{}, all.handle)
	require.NoError(t, err)
	_, err = bus.Subscribe(context.Background(), Filter{Types: []string{EventRemoved}}, onlyRemoved.handle)
	require.NoError(t, err)

	ctx := context.Background()
	for _, typ := range []string{EventContact, EventReaction, EventRemoved} {
		ev, err := NewEnvelope(typ, "scene-1", 5, map[string]string{"k": typ})
		require.NoError(t, err)
		require.NoError(t, bus.Publish(ctx, ev))
	}
	require.NoError(t, bus.Close())

	assert.Equal(t, []string{EventContact, EventReaction, EventRemoved}, all.types())
	assert.Equal(t, []string{EventRemoved}, onlyRemoved.types())

	stats := bus.Metrics()
	assert.Equal(t, uint64(3), stats.Published)
	assert.Equal(t, uint64(4), stats.Consumed)

	ev, _ := NewEnvelope(EventContact, "scene-1", 9, nil)
	assert.ErrorIs(t, bus.Publish(ctx, ev), ErrClosed)
}

func TestMemoryBus_Unsubscribe(t *testing.T) {
	bus := NewMemoryBus(4)
	c := &collector{}
	sub, err := bus.Subscribe(context.Background(), Filter{}, c.handle)
	require.NoError(t, err)
	sub.Unsubscribe()

	ev, _ := NewEnvelope(EventContact, "s", 5, nil)
	require.NoError(t, bus.Publish(context.Background(), ev))
	require.NoError(t, bus.Close())
	assert.Empty(t, c.types())
}

func TestEnvelope_Decode(t *testing.T) {
	ev, err := NewEnvelope(EventReaction, "s", PriorityReaction, ReactionPayload{BlockID: "coin-1", Param: 10})
	require.NoError(t, err)
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, 1, ev.Version)

	var p ReactionPayload
	require.NoError(t, ev.Decode(&p))
	assert.Equal(t, "coin-1", p.BlockID)
	assert.Equal(t, 10.0, p.Param)
}

func TestBlockPublisher_ObserverRecords(t *testing.T) {
	bus := NewMemoryBus(64)
	c := &collector{}
	_, err := bus.Subscribe(context.Background(), Filter{}, c.handle)
	require.NoError(t, err)

	pub := NewBlockPublisher(bus, "scene-1", false)
	pub.OnDiagnostic(block.Diagnostic{BlockID: "coin-1"})
	pub.OnDispatch(block.Dispatch{
		BlockID:   "coin-1",
		TargetTag: block.ControllerTag,
		Message:   block.Message{Function: block.FuncChangeScore, Payload: block.Param(100)},
		Delivered: true,
	})
	pub.OnTransition(block.Transition{
		BlockID: "coin-1",
		Before:  block.State{ID: "coin-1", Phase: block.PhaseActive, Remaining: 1},
		After:   block.State{ID: "coin-1", Phase: block.PhaseRemoved},
	})
	require.NoError(t, bus.Close())

	// Диагностика выключена
	assert.Equal(t, []string{EventReaction, EventContact, EventRemoved}, c.types())

	var rp ReactionPayload
	require.NoError(t, c.events[0].Decode(&rp))
	assert.Equal(t, "ChangeScore", rp.Function)
	assert.Equal(t, 100.0, rp.Param)
	assert.True(t, rp.Delivered)
	assert.Equal(t, "coin-1", c.events[2].CorrelationID)
	assert.Equal(t, PriorityRemoved, c.events[2].Priority)
}

func TestBlockPublisher_AttachMarksSelfRef(t *testing.T) {
	p := reactionPayload(block.Dispatch{Message: block.Message{Function: block.FuncAttach, Payload: block.SelfRef{}}})
	assert.True(t, p.SelfRef)
	assert.Zero(t, p.Param)
}

func TestJournalListener_WritesEntries(t *testing.T) {
	journal, err := storage.OpenSQLiteJournal(":memory:")
	require.NoError(t, err)
	defer journal.Close()

	bus := NewMemoryBus(64)
	_, err = StartJournalListener(bus, journal)
	require.NoError(t, err)

	pub := NewBlockPublisher(bus, "scene-1", true)
	pub.OnDiagnostic(block.Diagnostic{BlockID: "coin-1"}) // в журнал не попадает
	pub.OnDispatch(block.Dispatch{BlockID: "coin-1", TargetTag: "Player", Message: block.Message{Function: block.FuncDie}})
	pub.OnTransition(block.Transition{
		BlockID:   "coin-1",
		BlockName: "Coin",
		ActorTag:  "Player",
		Before:    block.State{Phase: block.PhaseActive, Remaining: 1},
		After:     block.State{Phase: block.PhaseRemoved},
	})
	require.NoError(t, bus.Close())

	counts, err := journal.CountByKind(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"reaction": 1, "contact": 1, "removal": 1}, counts)

	history, err := journal.History(context.Background(), "coin-1")
	require.NoError(t, err)
	require.Len(t, history, 3)
	for _, e := range history {
		assert.Equal(t, "scene-1", e.SceneID)
	}
}

func TestLoggingListener_Subscribes(t *testing.T) {
	bus := NewMemoryBus(8)
	sub, err := StartLoggingListener(bus)
	require.NoError(t, err)
	require.NotNil(t, sub)

	pub := NewBlockPublisher(bus, "scene-1", true)
	pub.OnTransition(block.Transition{BlockID: "b", After: block.State{Phase: block.PhaseRemoved}})
	require.NoError(t, bus.Close())
	assert.Equal(t, uint64(2), bus.Metrics().Consumed)
}

func TestMetricsExporter_Collect(t *testing.T) {
	bus := NewMemoryBus(8)
	reg := prometheus.NewRegistry()
	me, err := NewMetricsExporter(bus, reg)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		ev, _ := NewEnvelope(EventContact, "s", 5, nil)
		require.NoError(t, bus.Publish(context.Background(), ev))
	}
	require.NoError(t, bus.Close())

	me.Collect()
	me.Collect() // повторный сбор не удваивает счётчики
	assert.Equal(t, 3.0, testutil.ToFloat64(me.published))
	assert.Equal(t, 0.0, testutil.ToFloat64(me.inflight))

	_, err = NewMetricsExporter(bus, reg)
	assert.Error(t, err, "повторная регистрация должна завершаться ошибкой")
}
