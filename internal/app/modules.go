package app

import (
	"github.com/vk/buildmodelgo/internal/plugin"
	"github.com/vk/buildmodelgo/modules/jvm"
)

// coreModules is the definitive list of all plugins that are compiled into
// the buildmodelgo binary.
var coreModules = []plugin.Module{
	jvm.New(),
}
