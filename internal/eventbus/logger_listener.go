package eventbus

import (
	"context"

	"github.com/annel0/touchblock/internal/logging"
)

// StartLoggingListener подписывается на все события и пишет их в лог шины.
// Функция неблокирующая.
func StartLoggingListener(bus EventBus) (Subscription, error) {
	log := logging.GetEventBusLogger()
	sub, err := bus.Subscribe(context.Background(), Filter{}, func(ctx context.Context, ev *Envelope) {
		switch ev.EventType {
		case EventRemoved:
			var p ContactPayload
			if err := ev.Decode(&p); err == nil {
				log.Info("💥 %s (%s) удалён касанием %s", p.BlockName, p.BlockID, p.ActorTag)
				return
			}
		case EventReaction:
			var p ReactionPayload
			if err := ev.Decode(&p); err == nil {
				log.Debug("[EventBus] %s -> %s %s delivered=%t", p.BlockID, p.TargetTag, p.Function, p.Delivered)
				return
			}
		}
		log.Trace("[EventBus] %s %s src=%s prio=%d size=%dB", ev.ID, ev.EventType, ev.Source, ev.Priority, len(ev.Payload))
	})
	if err != nil {
		return nil, err
	}
	log.Info("🪵 LoggingListener: подписка на все события активирована")
	return sub, nil
}
