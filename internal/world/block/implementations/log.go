package implementations

import "github.com/annel0/touchblock/internal/world/block"

// LogPrefab имя шаблона бревна
const LogPrefab = "log"

// Log плывущее бревно: игрок прикрепляется к нему и движется вместе с ним
func Log() block.Config {
	return block.Config{
		Name:       "Log",
		TargetTags: playerTags,
		Reactions: []block.ReactionRule{
			rule("Player", block.FuncAttach, 0),
		},
		HitAnimation: "bob",
	}
}
