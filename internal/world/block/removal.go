package block

import "fmt"

// Phase фаза счётчика удаления
type Phase uint8

const (
	PhaseNonRemovable Phase = iota // блок не удаляется касаниями, переходов нет
	PhaseActive                    // осталось Remaining >= 1 касаний
	PhaseRemoved                   // терминальная фаза, блок уничтожен
)

// String возвращает имя фазы
func (p Phase) String() string {
	switch p {
	case PhaseNonRemovable:
		return "NonRemovable"
	case PhaseActive:
		return "Active"
	case PhaseRemoved:
		return "Removed"
	default:
		return "Unknown"
	}
}

// State снимок счётчика удаления блока
type State struct {
	ID        string `json:"id"`
	Phase     Phase  `json:"phase"`
	Remaining int    `json:"remaining"`
}

// String форматирует состояние как Active(n) / NonRemovable / Removed
func (s State) String() string {
	if s.Phase == PhaseActive {
		return fmt.Sprintf("Active(%d)", s.Remaining)
	}
	return s.Phase.String()
}

// removalCounter конечный автомат NonRemovable | Active(n) | Removed
type removalCounter struct {
	phase     Phase
	remaining int
}

func newRemovalCounter(initial int) removalCounter {
	if initial > 0 {
		return removalCounter{phase: PhaseActive, remaining: initial}
	}
	return removalCounter{phase: PhaseNonRemovable}
}

// touch выполняет переход по релевантному касанию.
// Возвращает true, если автомат только что перешёл в Removed.
func (c *removalCounter) touch() bool {
	if c.phase != PhaseActive {
		return false
	}
	if c.remaining-1 > 0 {
		c.remaining--
		return false
	}
	c.remaining = 0
	c.phase = PhaseRemoved
	return true
}

// checkRestore проверяет, что снимок допустим для автомата с начальным значением initial.
// NonRemovable нельзя перевзвести, Removed нельзя воскресить.
func (c removalCounter) checkRestore(initial int, st State) error {
	if c.phase == PhaseRemoved {
		return fmt.Errorf("%w: блок уже удалён", ErrStateMismatch)
	}
	switch st.Phase {
	case PhaseNonRemovable:
		if initial > 0 {
			return fmt.Errorf("%w: удаляемый блок нельзя сделать неудаляемым", ErrStateMismatch)
		}
	case PhaseActive:
		if initial <= 0 {
			return fmt.Errorf("%w: неудаляемый блок нельзя перевзвести", ErrStateMismatch)
		}
		if st.Remaining < 1 || st.Remaining > initial {
			return fmt.Errorf("%w: remaining=%d вне диапазона 1..%d", ErrStateMismatch, st.Remaining, initial)
		}
	case PhaseRemoved:
		if initial <= 0 {
			return fmt.Errorf("%w: неудаляемый блок не может быть удалён", ErrStateMismatch)
		}
	default:
		return fmt.Errorf("%w: неизвестная фаза %d", ErrStateMismatch, st.Phase)
	}
	return nil
}
