package app

import (
	"context"
	"fmt"

	"github.com/vk/buildmodelgo/internal/ctxlog"
)

// Run executes the configuration pass based on the provided configuration:
// realize the whole graph, run the validators, and report the resulting model.
func (a *App) Run(ctx context.Context, appConfig *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	a.logger.Info("Realizing model graph...")
	if err := a.registry.RealizeAll(ctx); err != nil {
		return fmt.Errorf("failed to realize model: %w", err)
	}
	a.logger.Debug("Model graph realized.")

	failures, err := a.registry.ValidateAll(ctx)
	if err != nil {
		return fmt.Errorf("model validation aborted: %w", err)
	}
	if len(failures) > 0 {
		for _, failure := range failures {
			fmt.Fprintf(a.outW, "Validation problem at %s: %v\n", failure.Path, failure.Err)
		}
		return fmt.Errorf("model validation failed with %d problem(s)", len(failures))
	}
	a.logger.Info("Model validation passed.")

	if !appConfig.ValidateOnly {
		writeModelReport(a.outW, a.registry.Root())
	}
	a.logger.Debug("App.Run method finished.")
	return nil
}
