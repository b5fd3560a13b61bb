package implementations

import "github.com/annel0/touchblock/internal/world/block"

// PowerupPrefab имя шаблона бонуса
const PowerupPrefab = "powerup"

// Powerup бонус: очки контроллеру, щит и ускорение игроку, исчезает после касания
func Powerup() block.Config {
	return block.Config{
		Name:       "Powerup",
		TargetTags: playerTags,
		Reactions: []block.ReactionRule{
			rule(block.ControllerTag, block.FuncChangeScore, 50),
			rule("Player", block.FuncShield, 5),
			rule("Player", block.FuncChangeSpeed, 1.5),
		},
		RemoveAfterTouches: 1,
		HitSound:           "powerup",
		SoundSourceTag:     block.ControllerTag,
		DeathEffect:        "powerup_burst",
	}
}
