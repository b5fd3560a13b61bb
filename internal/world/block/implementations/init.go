package implementations

import "github.com/annel0/touchblock/internal/world/block"

// Теги игроков по умолчанию: до трёх игроков на сцене
var playerTags = block.TargetTags{"Player", "Player1", "Player2"}

// Регистрируем все шаблоны блоков при импорте пакета
func init() {
	block.RegisterPrefab(CoinPrefab, Coin())
	block.RegisterPrefab(RockPrefab, Rock())
	block.RegisterPrefab(CarPrefab, Car())
	block.RegisterPrefab(LogPrefab, Log())
	block.RegisterPrefab(PowerupPrefab, Powerup())
}

// rule строит правило из заведомо корректной тройки
func rule(target block.Tag, fn block.Function, param float64) block.ReactionRule {
	r, err := block.NewRule(target, string(fn), param)
	if err != nil {
		panic(err)
	}
	return r
}
