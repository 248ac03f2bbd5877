package app

import (
	"context"

	"github.com/vk/runr/internal/ctxlog"
)

// Run executes the configured script and returns the runner's verdict. A
// nil error means exit status 0; tolerated failures have already been logged
// as warnings by then.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run started.", "script", a.config.Identifier, "params", len(a.config.Params))

	if err := a.runner.Run(ctx, a.config.Identifier, a.config.Params); err != nil {
		return err
	}

	a.logger.Debug("App.Run finished.")
	return nil
}
