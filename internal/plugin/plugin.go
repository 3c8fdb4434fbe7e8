// Package plugin defines the contract a domain plugin implements to
// contribute creators and rules to a model registry. Plugins only consume
// the public registration surface; the engine never knows about them.
package plugin

import (
	"context"

	"github.com/vk/buildmodelgo/internal/config"
	"github.com/vk/buildmodelgo/internal/model"
)

// Module is the interface that all domain plugins must implement to be
// registered with an application instance.
type Module interface {
	// Register contributes the plugin's creators and rules for the given
	// declarations to the registry. Nothing is realized yet; registration
	// only reserves nodes and queues rules.
	Register(ctx context.Context, reg *model.Registry, decls *config.Model) error
}
