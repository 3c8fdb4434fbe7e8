package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/buildmodelgo/internal/config"
	"github.com/vk/buildmodelgo/internal/ctxlog"
	"github.com/vk/buildmodelgo/internal/model"
	"github.com/vk/buildmodelgo/internal/plugin"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *model.Registry
	decls    *config.Model
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry
// with every plugin's creators and rules registered.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader, modules ...plugin.Module) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	// Load all declarations into the format-agnostic model first.
	decls, err := loader.Load(ctx, appConfig.ConfigPath)
	if err != nil {
		// A failure to load config is a fatal startup error.
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	logger.Debug("Configuration loaded and translated into unified model.")

	// Create the registry and let each plugin contribute its part of the graph.
	reg := model.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		if err := mod.Register(ctx, reg, decls); err != nil {
			// A registration failure is a programmer error (mismatch between
			// plugin and declarations), so we panic.
			panic(fmt.Errorf("failed to register plugin: %w", err))
		}
	}
	logger.Debug("All plugins registered.", "count", len(modules))

	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		decls:    decls,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *model.Registry {
	return a.registry
}
