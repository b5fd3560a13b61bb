package block

import (
	"github.com/annel0/touchblock/internal/logging"
)

// dispatch проходит таблицу реакций по порядку объявления. Срабатывают все
// подходящие правила, без дедупликации и раннего выхода.
func (b *Block) dispatch(ev ContactEvent) {
	log := logging.GetBlockLogger()

	for _, rule := range b.cfg.Reactions {
		if !rule.isCandidate(ev.ActorTag) {
			continue
		}

		fn := rule.Action.Function()
		log.Debug("%s вызвало %s у %s на позиции %v", b.cfg.Name, fn, ev.ActorTag, ev.Position)
		b.env.Observer.OnDiagnostic(Diagnostic{
			BlockID:   b.cfg.ID,
			BlockName: b.cfg.Name,
			Function:  fn,
			ActorTag:  ev.ActorTag,
			TargetTag: rule.TargetTag,
			Position:  ev.Position,
		})

		if !rule.fires() {
			continue
		}
		b.fire(rule)
	}
}

// fire разрешает получателя по тегу правила (не по актору касания) и отправляет сообщение
func (b *Block) fire(rule ReactionRule) {
	msg := Message{
		Function: rule.Action.Function(),
		Payload:  b.payloadFor(rule.Action),
		SourceID: b.cfg.ID,
	}

	delivered := false
	if b.env.Actors != nil {
		// Ошибка разрешения - зона ответственности реестра, повторов нет
		if actor, err := b.env.Actors.Resolve(rule.TargetTag); err == nil && actor != nil {
			actor.SendMessage(msg)
			delivered = true
		}
	}

	b.env.Observer.OnDispatch(Dispatch{
		BlockID:   b.cfg.ID,
		TargetTag: rule.TargetTag,
		Message:   msg,
		Delivered: delivered,
	})
}

// payloadFor для AttachSelf всегда ссылка на блок, иначе параметр правила
func (b *Block) payloadFor(action Action) Payload {
	switch a := action.(type) {
	case AttachSelf:
		return SelfRef{Block: b}
	case SendMessage:
		return a.Param
	default:
		return nil
	}
}
