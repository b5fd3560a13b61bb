package implementations

import "github.com/annel0/touchblock/internal/world/block"

// CarPrefab имя шаблона машины
const CarPrefab = "car"

// Car машина убивает игрока, но сама не разрушается
func Car() block.Config {
	return block.Config{
		Name:       "Car",
		TargetTags: playerTags,
		Reactions: []block.ReactionRule{
			rule("Player", block.FuncDie, 0),
			rule("Player1", block.FuncDie, 0),
			rule("Player2", block.FuncDie, 0),
		},
		HitSound:       "crash",
		SoundSourceTag: block.ControllerTag,
	}
}
