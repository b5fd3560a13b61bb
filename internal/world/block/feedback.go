package block

// emitFeedback проигрывает анимацию удара и звук на каждом релевантном касании,
// независимо от реакций и счётчика удаления.
func (b *Block) emitFeedback() {
	if b.animator != nil && b.cfg.HitAnimation != "" {
		// Остановка перед запуском: клип всегда начинается с нулевого кадра
		b.animator.Stop()
		b.animator.Play(b.cfg.HitAnimation)
	}

	if b.cfg.SoundSourceTag != "" && b.cfg.HitSound != "" && b.env.Audio != nil {
		// Отсутствующий источник - ошибка конфигурации, о ней сообщает резолвер
		if src, err := b.env.Audio.ResolveAudio(b.cfg.SoundSourceTag); err == nil && src != nil {
			src.PlayOneShot(b.cfg.HitSound)
		}
	}
}
