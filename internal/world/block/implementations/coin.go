package implementations

import "github.com/annel0/touchblock/internal/world/block"

// CoinPrefab имя шаблона монеты
const CoinPrefab = "coin"

// Coin монета: начисляет очки через контроллер и исчезает после первого касания
func Coin() block.Config {
	return block.Config{
		Name:       "Coin",
		TargetTags: playerTags,
		Reactions: []block.ReactionRule{
			rule(block.ControllerTag, block.FuncChangeScore, 100),
		},
		RemoveAfterTouches: 1,
		HitSound:           "coin",
		SoundSourceTag:     block.ControllerTag,
		DeathEffect:        "coin_sparkle",
	}
}
