package scene

import (
	"github.com/annel0/touchblock/internal/logging"
	"github.com/annel0/touchblock/internal/world/block"
)

// logObserver пишет шаги счётчика и реакции в лог сцены
type logObserver struct{}

func (logObserver) OnDiagnostic(block.Diagnostic) {}

func (logObserver) OnDispatch(d block.Dispatch) {
	if !d.Delivered {
		logging.GetSceneLogger().Warn("Реакция %s блока %s не доставлена: нет актора %s", d.Message.Function, d.BlockID, d.TargetTag)
	}
}

func (logObserver) OnTransition(t block.Transition) {
	log := logging.GetSceneLogger()
	if t.Removed() {
		log.Info("💥 %s удалён касанием %s", t.BlockName, t.ActorTag)
		return
	}
	log.Trace("%s: %s -> %s", t.BlockName, t.Before, t.After)
}
