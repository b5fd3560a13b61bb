package eventbus

import (
	"context"
	"time"

	"github.com/annel0/touchblock/internal/logging"
	"github.com/annel0/touchblock/internal/world/block"
)

// BlockPublisher публикует записи наблюдателя блока в шину.
// Реализует block.Observer. Ошибки публикации логируются и не влияют на касание.
type BlockPublisher struct {
	bus         EventBus
	source      string
	diagnostics bool
	timeout     time.Duration
}

// NewBlockPublisher создаёт публикатор для сцены source.
// diagnostics включает публикацию записей о каждом правиле-кандидате.
func NewBlockPublisher(bus EventBus, source string, diagnostics bool) *BlockPublisher {
	return &BlockPublisher{
		bus:         bus,
		source:      source,
		diagnostics: diagnostics,
		timeout:     time.Second,
	}
}

func (p *BlockPublisher) OnDiagnostic(d block.Diagnostic) {
	if !p.diagnostics {
		return
	}
	p.publish(EventDiagnostic, PriorityDiagnostic, d.BlockID, diagnosticPayload(d))
}

func (p *BlockPublisher) OnDispatch(d block.Dispatch) {
	p.publish(EventReaction, PriorityReaction, d.BlockID, reactionPayload(d))
}

func (p *BlockPublisher) OnTransition(t block.Transition) {
	payload := contactPayload(t)
	p.publish(EventContact, PriorityContact, t.BlockID, payload)
	if t.Removed() {
		p.publish(EventRemoved, PriorityRemoved, t.BlockID, payload)
	}
}

func (p *BlockPublisher) publish(eventType string, priority int, blockID string, payload interface{}) {
	ev, err := NewEnvelope(eventType, p.source, priority, payload)
	if err != nil {
		logging.GetEventBusLogger().Error("❌ %v", err)
		return
	}
	ev.CorrelationID = blockID

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	if err := p.bus.Publish(ctx, ev); err != nil {
		logging.GetEventBusLogger().Warn("⚠️ Не удалось опубликовать %s блока %s: %v", eventType, blockID, err)
	}
}
