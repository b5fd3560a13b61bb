package eventbus

import (
	"context"
	"fmt"

	"github.com/annel0/touchblock/internal/logging"
	"github.com/annel0/touchblock/internal/storage"
)

// JournalWriter приёмник записей журнала (storage.SQLiteJournal)
type JournalWriter interface {
	Append(ctx context.Context, e storage.JournalEntry) error
}

// StartJournalListener пишет события касаний, реакций и удалений в журнал
func StartJournalListener(bus EventBus, journal JournalWriter) (Subscription, error) {
	filter := Filter{Types: []string{EventContact, EventReaction, EventRemoved}}
	sub, err := bus.Subscribe(context.Background(), filter, func(ctx context.Context, ev *Envelope) {
		entry, err := journalEntry(ev)
		if err != nil {
			logging.GetEventBusLogger().Warn("⚠️ Журнал: %v", err)
			return
		}
		if err := journal.Append(ctx, entry); err != nil {
			logging.GetEventBusLogger().Error("❌ Журнал: %v", err)
		}
	})
	if err != nil {
		return nil, err
	}
	logging.GetEventBusLogger().Info("📓 JournalListener: запись событий блоков активирована")
	return sub, nil
}

func journalEntry(ev *Envelope) (storage.JournalEntry, error) {
	entry := storage.JournalEntry{
		ID:      ev.ID,
		Time:    ev.Timestamp,
		SceneID: ev.Source,
	}

	switch ev.EventType {
	case EventContact, EventRemoved:
		var p ContactPayload
		if err := ev.Decode(&p); err != nil {
			return entry, fmt.Errorf("%s %s: %w", ev.EventType, ev.ID, err)
		}
		entry.Kind = "contact"
		if ev.EventType == EventRemoved {
			entry.Kind = "removal"
		}
		entry.BlockID = p.BlockID
		entry.BlockName = p.BlockName
		entry.ActorTag = p.ActorTag
		entry.Detail = fmt.Sprintf("%s -> %s", p.Before, p.After)
	case EventReaction:
		var p ReactionPayload
		if err := ev.Decode(&p); err != nil {
			return entry, fmt.Errorf("%s %s: %w", ev.EventType, ev.ID, err)
		}
		entry.Kind = "reaction"
		entry.BlockID = p.BlockID
		entry.TargetTag = p.TargetTag
		entry.Function = p.Function
		entry.Detail = fmt.Sprintf("param=%g delivered=%t", p.Param, p.Delivered)
	default:
		return entry, fmt.Errorf("неожиданный тип события %s", ev.EventType)
	}
	return entry, nil
}
