package cli

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/datamodel"
)

// DefaultDebounce groups bursts of file events into one reload.
const DefaultDebounce = 200 * time.Millisecond

// Watch reloads ws whenever its source reports changes, until ctx is done. onReload, when
// set, runs after each reload with the IDs that triggered it.
func Watch(ctx context.Context, ws *datamodel.Workspace, logger *slog.Logger, debounce time.Duration, onReload func([]string)) error {
	events, err := ws.Watch(ctx)
	if err != nil {
		return err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	var (
		pending []string
		timer   <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			return nil
		case id, ok := <-events:
			if !ok {
				return nil
			}
			pending = append(pending, id)
			if timer == nil {
				timer = time.After(debounce)
			}
		case <-timer:
			timer = nil
			logger.Info("reloading workspace", "changed", len(pending))
			if err := ws.Load(ctx); err != nil {
				logger.Warn("reload incomplete", "err", err)
			}
			if onReload != nil {
				onReload(pending)
			}
			pending = nil
		}
	}
}
