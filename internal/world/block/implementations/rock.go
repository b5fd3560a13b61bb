package implementations

import "github.com/annel0/touchblock/internal/world/block"

// RockPrefab имя шаблона камня
const RockPrefab = "rock"

// Rock неразрушимое препятствие. Правило без функции оставлено как слот:
// камень только вздрагивает и глухо стучит.
func Rock() block.Config {
	return block.Config{
		Name:       "Rock",
		TargetTags: playerTags,
		Reactions: []block.ReactionRule{
			rule("Player", "", 0),
		},
		HitAnimation:   "shake",
		HitSound:       "thud",
		SoundSourceTag: block.ControllerTag,
	}
}
