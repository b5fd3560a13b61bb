package eventbus

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/annel0/touchblock/internal/world/block"
)

// Типы событий блоков
const (
	EventDiagnostic = "BlockDiagnostic"
	EventContact    = "BlockContact"
	EventReaction   = "BlockReaction"
	EventRemoved    = "BlockRemoved"
)

// Приоритеты: диагностика отбрасывается первой, удаление блока - никогда
const (
	PriorityDiagnostic = 1
	PriorityContact    = 4
	PriorityReaction   = 5
	PriorityRemoved    = 9
)

// DiagnosticPayload правило-кандидат при касании
type DiagnosticPayload struct {
	BlockID   string     `json:"block_id"`
	BlockName string     `json:"block_name"`
	Function  string     `json:"function"`
	ActorTag  string     `json:"actor_tag"`
	TargetTag string     `json:"target_tag"`
	Position  mgl32.Vec3 `json:"position"`
}

// ContactPayload релевантное касание и шаг счётчика удаления
type ContactPayload struct {
	BlockID   string      `json:"block_id"`
	BlockName string      `json:"block_name"`
	ActorTag  string      `json:"actor_tag"`
	Position  mgl32.Vec3  `json:"position"`
	Before    block.State `json:"before"`
	After     block.State `json:"after"`
}

// ReactionPayload отправленное сообщение реакции
type ReactionPayload struct {
	BlockID   string  `json:"block_id"`
	TargetTag string  `json:"target_tag"`
	Function  string  `json:"function"`
	Param     float64 `json:"param"`
	SelfRef   bool    `json:"self_ref"` // true для AttachToThis
	Delivered bool    `json:"delivered"`
}

func diagnosticPayload(d block.Diagnostic) DiagnosticPayload {
	return DiagnosticPayload{
		BlockID:   d.BlockID,
		BlockName: d.BlockName,
		Function:  string(d.Function),
		ActorTag:  string(d.ActorTag),
		TargetTag: string(d.TargetTag),
		Position:  d.Position,
	}
}

func contactPayload(t block.Transition) ContactPayload {
	return ContactPayload{
		BlockID:   t.BlockID,
		BlockName: t.BlockName,
		ActorTag:  string(t.ActorTag),
		Position:  t.Position,
		Before:    t.Before,
		After:     t.After,
	}
}

func reactionPayload(d block.Dispatch) ReactionPayload {
	p := ReactionPayload{
		BlockID:   d.BlockID,
		TargetTag: string(d.TargetTag),
		Function:  string(d.Message.Function),
		Delivered: d.Delivered,
	}
	switch v := d.Message.Payload.(type) {
	case block.Param:
		p.Param = float64(v)
	case block.SelfRef:
		p.SelfRef = true
	}
	return p
}
