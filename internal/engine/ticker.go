package engine

import (
	"context"
	"time"
)

// Run ticks the session until ctx is done, saving every autosave interval
// and once more on the way out. Call it in a goroutine.
func (e *Engine) Run(ctx context.Context) {
	e.log.Info("Engine started for slot " + e.opts.Slot + ".")

	ticker := time.NewTicker(e.opts.TickInterval)
	defer ticker.Stop()
	autosave := time.NewTicker(e.opts.AutosaveInterval)
	defer autosave.Stop()

	for {
		select {
		case <-ctx.Done():
			// ctx is already cancelled; the final save needs its own.
			saveCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			if err := e.Save(saveCtx); err != nil {
				e.log.Error("Final save failed: " + err.Error())
			}
			cancel()
			e.log.Info("Engine stopped.")
			return
		case <-ticker.C:
			e.session.Tick(e.opts.Now())
		case <-autosave.C:
			if err := e.Save(ctx); err != nil {
				e.log.Warn("Autosave failed: " + err.Error())
			}
		}
	}
}
