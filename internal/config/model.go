// internal/config/model.go
package config

// Model is the unified, format-agnostic representation of everything the
// user declared for one configuration pass.
type Model struct {
	// BuildDir is the root output directory. Empty means the loader's
	// default ("build").
	BuildDir  string
	Jdks      []*JdkDecl
	Platforms []*PlatformDecl
	Libraries []*LibraryDecl
}

// JdkDecl declares a local JDK installation to probe and register.
type JdkDecl struct {
	Name string
	Path string
}

// PlatformDecl declares a target Java platform.
type PlatformDecl struct {
	Name    string
	Version int
}

// LibraryDecl declares one JVM library component.
type LibraryDecl struct {
	Name string
	// Targets names the platforms to build binaries for. Empty means the
	// highest declared platform.
	Targets []string
	// Exports lists the packages exposed through the library's API jar.
	Exports []string
	// Dependencies names other declared libraries this one consumes.
	Dependencies []string
	// Settings carries free-form per-library attributes, already evaluated
	// to plain Go values.
	Settings map[string]any
}
