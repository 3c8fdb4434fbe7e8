// internal/hcl/loader.go
package hcl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/buildmodelgo/internal/config"
	"github.com/vk/buildmodelgo/internal/ctxlog"
	"github.com/vk/buildmodelgo/internal/fsutil"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL declaration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// fileRoot decodes all supported top-level blocks from one file.
type fileRoot struct {
	BuildDir  *string          `hcl:"build_dir,optional"`
	Jdks      []*jdkBlock      `hcl:"jdk,block"`
	Platforms []*platformBlock `hcl:"platform,block"`
	Libraries []*libraryBlock  `hcl:"jvm_library,block"`
}

type jdkBlock struct {
	Name string `hcl:"name,label"`
	Path string `hcl:"path"`
}

type platformBlock struct {
	Name    string `hcl:"name,label"`
	Version int    `hcl:"version"`
}

type libraryBlock struct {
	Name         string    `hcl:"name,label"`
	Targets      []string  `hcl:"targets,optional"`
	Dependencies []string  `hcl:"dependencies,optional"`
	API          *apiBlock `hcl:"api,block"`
	Settings     hcl.Body  `hcl:",remain"`
}

type apiBlock struct {
	Exports []string `hcl:"exports,optional"`
}

// Load orchestrates the HCL loading process: file discovery, parsing, and
// translation into the format-agnostic config model.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	model := &config.Model{}
	parser := hclparse.NewParser()

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		if root.BuildDir != nil {
			model.BuildDir = *root.BuildDir
		}
		for _, jdk := range root.Jdks {
			model.Jdks = append(model.Jdks, &config.JdkDecl{Name: jdk.Name, Path: jdk.Path})
		}
		for _, platform := range root.Platforms {
			model.Platforms = append(model.Platforms, &config.PlatformDecl{Name: platform.Name, Version: platform.Version})
		}
		for _, lib := range root.Libraries {
			decl, err := l.translateLibrary(ctx, lib)
			if err != nil {
				return nil, fmt.Errorf("library %q in %s: %w", lib.Name, file, err)
			}
			model.Libraries = append(model.Libraries, decl)
		}
	}

	if model.BuildDir == "" {
		model.BuildDir = "build"
	}
	logger.Debug("HCL loading complete.",
		"jdks", len(model.Jdks),
		"platforms", len(model.Platforms),
		"libraries", len(model.Libraries),
	)
	return model, nil
}

// findAllHCLFiles walks all given paths and returns a flat, deduplicated
// list of .hcl files.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})

	add := func(p string) {
		if _, wasSeen := seen[p]; !wasSeen {
			allFiles = append(allFiles, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if !info.IsDir() {
			if filepath.Ext(path) == ".hcl" {
				add(path)
			}
			continue
		}

		found, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, err
		}
		for _, p := range found {
			add(p)
		}
	}
	return allFiles, nil
}
