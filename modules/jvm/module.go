// Package jvm contributes the JVM component model: declared JDKs probed into
// usable toolchains, Java platforms, library components, and the jar binaries
// derived from them, together with the conventions that configure each binary.
package jvm

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vk/buildmodelgo/internal/config"
	"github.com/vk/buildmodelgo/internal/ctxlog"
	"github.com/vk/buildmodelgo/internal/model"
	"github.com/vk/buildmodelgo/internal/modelpath"
	"github.com/vk/buildmodelgo/internal/modeltype"
)

// Well-known top-level paths of the JVM model.
var (
	PathProjectLayout    = modelpath.MustParse("projectLayout")
	PathJavaInstallProbe = modelpath.MustParse("javaInstallProbe")
	PathJdks             = modelpath.MustParse("jdks")
	PathInstalledJdks    = modelpath.MustParse("installedJdks")
	PathPlatforms        = modelpath.MustParse("platforms")
	PathComponents       = modelpath.MustParse("components")
	PathBinaries         = modelpath.MustParse("binaries")
)

// Module is the JVM domain plugin.
type Module struct {
	probe InstallProbe
}

// New returns the plugin with the standard release-file probe.
func New() *Module {
	return &Module{probe: &ReleaseFileProbe{}}
}

// NewWithProbe returns the plugin with a custom installation probe.
func NewWithProbe(p InstallProbe) *Module {
	return &Module{probe: p}
}

// Register contributes the JVM creators and rules. Binary conventions are
// registered before any binary exists; they match the binaries created later
// under the binaries container.
func (m *Module) Register(ctx context.Context, reg *model.Registry, decls *config.Model) error {
	ctxlog.FromContext(ctx).Debug("Registering JVM component model.")

	if err := m.registerCreators(ctx, reg, decls); err != nil {
		return err
	}

	rules := []model.Rule{
		{
			Subject:    model.ByPathAs(PathInstalledJdks, modeltype.Of[[]*InstalledJdk]()),
			Role:       model.RoleDefaults,
			Descriptor: "jvm.resolveJdks",
			Inputs: []model.Input{
				{Path: PathJdks},
				{Path: PathJavaInstallProbe, Type: modeltype.Of[InstallProbe]()},
			},
			Do: m.resolveJdks,
		},
		{
			Subject:    model.ByPathAs(PathInstalledJdks, modeltype.Of[[]*InstalledJdk]()),
			Role:       model.RoleValidate,
			Descriptor: "jvm.validateJdks",
			Do:         m.validateJdks,
		},
		{
			Subject:    model.ByType(PathBinaries, modeltype.Of[JvmBinary]()),
			Role:       model.RoleDefaults,
			Descriptor: "jvm.configureJvmBinaries",
			Inputs: []model.Input{
				{Path: PathProjectLayout, Type: modeltype.Of[*ProjectLayout]()},
			},
			Do: m.configureJvmBinaries,
		},
		{
			Subject:    model.ByType(PathBinaries, modeltype.Of[*JarBinarySpec]()),
			Role:       model.RoleDefaults,
			Descriptor: "jvm.configureJarBinaries",
			Inputs: []model.Input{
				{Path: PathProjectLayout, Type: modeltype.Of[*ProjectLayout]()},
				{Path: PathPlatforms},
				{Path: PathInstalledJdks, Type: modeltype.Of[[]*InstalledJdk]()},
			},
			Do: m.configureJarBinaries,
		},
		{
			Subject:    model.ByPath(PathBinaries),
			Role:       model.RoleMutate,
			Descriptor: "jvm.createBinaries",
			Inputs: []model.Input{
				{Path: PathComponents},
				{Path: PathPlatforms},
			},
			Do: m.createBinaries,
		},
	}
	for _, rule := range rules {
		if err := reg.RegisterRule(rule); err != nil {
			return fmt.Errorf("registering rule %s: %w", rule.Descriptor, err)
		}
	}
	return nil
}

func (m *Module) registerCreators(ctx context.Context, reg *model.Registry, decls *config.Model) error {
	probe := m.probe
	creators := []model.Creator{
		{
			Path:       PathProjectLayout,
			Descriptor: "jvm.projectLayout",
			Type:       modeltype.Of[*ProjectLayout](),
			Create: func(ctx context.Context, n *model.Node) error {
				return n.SetPrivateData(modeltype.Of[*ProjectLayout](), &ProjectLayout{BuildDir: decls.BuildDir})
			},
		},
		{
			Path:       PathJavaInstallProbe,
			Descriptor: "jvm.javaInstallProbe",
			Type:       modeltype.Of[InstallProbe](),
			Create: func(ctx context.Context, n *model.Node) error {
				return n.SetPrivateData(modeltype.Of[InstallProbe](), probe)
			},
		},
		{Path: PathJdks, Descriptor: "jvm.jdks"},
		{Path: PathInstalledJdks, Descriptor: "jvm.installedJdks", Type: modeltype.Of[[]*InstalledJdk]()},
		{Path: PathPlatforms, Descriptor: "jvm.platforms"},
		{Path: PathComponents, Descriptor: "jvm.components"},
		{Path: PathBinaries, Descriptor: "jvm.binaries"},
	}

	for _, decl := range decls.Jdks {
		spec := &JdkSpec{Name: decl.Name, Path: decl.Path}
		creators = append(creators, model.Creator{
			Path:       PathJdks.MustChild(decl.Name),
			Descriptor: "jvm.jdk." + decl.Name,
			Type:       modeltype.Of[*JdkSpec](),
			Create: func(ctx context.Context, n *model.Node) error {
				return n.SetPrivateData(modeltype.Of[*JdkSpec](), spec)
			},
		})
	}
	for _, decl := range decls.Platforms {
		platform := &JavaPlatform{Name: decl.Name, Version: decl.Version}
		creators = append(creators, model.Creator{
			Path:       PathPlatforms.MustChild(decl.Name),
			Descriptor: "jvm.platform." + decl.Name,
			Type:       modeltype.Of[*JavaPlatform](),
			Create: func(ctx context.Context, n *model.Node) error {
				return n.SetPrivateData(modeltype.Of[*JavaPlatform](), platform)
			},
		})
	}
	for _, decl := range decls.Libraries {
		lib := &JvmLibrarySpec{
			Name:            decl.Name,
			TargetPlatforms: decl.Targets,
			API:             APISpec{Exports: decl.Exports},
			Dependencies:    decl.Dependencies,
			Settings:        decl.Settings,
		}
		creators = append(creators, model.Creator{
			Path:       PathComponents.MustChild(decl.Name),
			Descriptor: "jvm.library." + decl.Name,
			Type:       modeltype.Of[*JvmLibrarySpec](),
			Create: func(ctx context.Context, n *model.Node) error {
				return n.SetPrivateData(modeltype.Of[*JvmLibrarySpec](), lib)
			},
		})
	}

	for _, c := range creators {
		if _, err := reg.RegisterCreator(c); err != nil {
			return fmt.Errorf("registering %s: %w", c.Descriptor, err)
		}
	}
	return nil
}

// resolveJdks probes every declared JDK and publishes the usable
// installations.
func (m *Module) resolveJdks(ctx context.Context, subject *model.View, inputs []*model.View) error {
	probe, err := model.ValueOf[InstallProbe](inputs[1])
	if err != nil {
		return err
	}

	installed := []*InstalledJdk{}
	for _, n := range inputs[0].Node().Links(modeltype.Of[*JdkSpec]()) {
		raw, err := n.PrivateData(modeltype.Of[*JdkSpec]())
		if err != nil {
			return err
		}
		spec := raw.(*JdkSpec)

		result, err := probe.Probe(ctx, spec.Path)
		if err != nil {
			return fmt.Errorf("jdk %q: %w", spec.Name, err)
		}
		major, err := majorVersion(result.JavaVersion)
		if err != nil {
			return fmt.Errorf("jdk %q: %w", spec.Name, err)
		}
		installed = append(installed, &InstalledJdk{
			Name:        spec.Name,
			JavaHome:    result.JavaHome,
			JavaVersion: result.JavaVersion,
			Major:       major,
			DisplayName: displayName(major, result.Implementor),
		})
		ctxlog.FromContext(ctx).Debug("Resolved JDK.", "name", spec.Name, "home", result.JavaHome, "major", major)
	}
	return subject.Set(installed)
}

// validateJdks rejects distinct declarations that resolve to one physical
// installation.
func (m *Module) validateJdks(ctx context.Context, subject *model.View, inputs []*model.View) error {
	installed, err := model.ValueOf[[]*InstalledJdk](subject)
	if err != nil {
		return err
	}

	byHome := make(map[string][]string)
	for _, jdk := range installed {
		byHome[jdk.JavaHome] = append(byHome[jdk.JavaHome], jdk.Name)
	}

	var problems []string
	for home, names := range byHome {
		if len(names) < 2 {
			continue
		}
		sort.Strings(names)
		problems = append(problems, fmt.Sprintf("JDKs %s are both pointing to the same JDK installation path: %s",
			quoteJoin(names), home))
	}
	if len(problems) > 0 {
		sort.Strings(problems)
		return fmt.Errorf("%s", strings.Join(problems, "; "))
	}
	return nil
}

// createBinaries derives one jar binary per library per target platform. A
// library that names no target builds against the highest declared platform.
func (m *Module) createBinaries(ctx context.Context, subject *model.View, inputs []*model.View) error {
	platforms, err := platformsByName(inputs[1].Node())
	if err != nil {
		return err
	}

	for _, n := range inputs[0].Node().Links(modeltype.Of[*JvmLibrarySpec]()) {
		raw, err := n.PrivateData(modeltype.Of[*JvmLibrarySpec]())
		if err != nil {
			return err
		}
		lib := raw.(*JvmLibrarySpec)

		targets := lib.TargetPlatforms
		if len(targets) == 0 {
			def, err := defaultPlatform(platforms)
			if err != nil {
				return fmt.Errorf("library %q: %w", lib.Name, err)
			}
			targets = []string{def}
		}
		multi := len(targets) > 1

		for _, target := range targets {
			if _, ok := platforms[target]; !ok {
				return fmt.Errorf("library %q targets unknown platform %q", lib.Name, target)
			}
			name := binaryName(lib.Name, target, multi)
			spec := &JarBinarySpec{
				JvmBinarySpec: JvmBinarySpec{
					Name:     name,
					Library:  lib.Name,
					Platform: target,
				},
				ExportedPackages: lib.API.Exports,
				Dependencies:     lib.Dependencies,
			}
			_, err := subject.Node().AddLink(model.Creator{
				Path:       PathBinaries.MustChild(name),
				Descriptor: "jvm.createBinaries." + name,
				Type:       modeltype.Of[*JarBinarySpec](),
				Create: func(ctx context.Context, n *model.Node) error {
					return n.SetPrivateData(modeltype.Of[*JarBinarySpec](), spec)
				},
			})
			if err != nil {
				return fmt.Errorf("library %q: %w", lib.Name, err)
			}
			ctxlog.FromContext(ctx).Debug("Created jar binary.", "binary", name, "library", lib.Name, "platform", target)
		}
	}
	return nil
}

// configureJvmBinaries applies the output-directory convention shared by
// every JVM binary kind.
func (m *Module) configureJvmBinaries(ctx context.Context, subject *model.View, inputs []*model.View) error {
	bin, err := model.ValueOf[JvmBinary](subject)
	if err != nil {
		return err
	}
	layout, err := model.ValueOf[*ProjectLayout](inputs[0])
	if err != nil {
		return err
	}
	bin.SetOutputDirs(
		layout.OutputDir("classes", bin.BinaryName()),
		layout.OutputDir("resources", bin.BinaryName()),
	)
	return nil
}

// configureJarBinaries fills in the jar-specific conventions: jar locations
// and the toolchain matched against the binary's target platform.
func (m *Module) configureJarBinaries(ctx context.Context, subject *model.View, inputs []*model.View) error {
	jar, err := model.ValueOf[*JarBinarySpec](subject)
	if err != nil {
		return err
	}
	layout, err := model.ValueOf[*ProjectLayout](inputs[0])
	if err != nil {
		return err
	}
	platforms, err := platformsByName(inputs[1].Node())
	if err != nil {
		return err
	}
	installed, err := model.ValueOf[[]*InstalledJdk](inputs[2])
	if err != nil {
		return err
	}

	jarDir := layout.OutputDir("jars", jar.Name)
	jar.JarFile = filepath.Join(jarDir, jar.Library+".jar")
	jar.APIJarFile = filepath.Join(jarDir, jar.Library+"-api.jar")

	platform, ok := platforms[jar.Platform]
	if !ok {
		return fmt.Errorf("binary %q targets unknown platform %q", jar.Name, jar.Platform)
	}
	jar.ToolChain = selectToolChain(installed, platform.Version)
	return nil
}

func platformsByName(container *model.Node) (map[string]*JavaPlatform, error) {
	out := make(map[string]*JavaPlatform)
	for _, n := range container.Links(modeltype.Of[*JavaPlatform]()) {
		raw, err := n.PrivateData(modeltype.Of[*JavaPlatform]())
		if err != nil {
			return nil, err
		}
		platform := raw.(*JavaPlatform)
		out[platform.Name] = platform
	}
	return out, nil
}

// defaultPlatform is the highest declared platform version.
func defaultPlatform(platforms map[string]*JavaPlatform) (string, error) {
	best := ""
	for name, p := range platforms {
		if best == "" || p.Version > platforms[best].Version {
			best = name
		}
	}
	if best == "" {
		return "", fmt.Errorf("declares no target platform and no platforms are defined")
	}
	return best, nil
}

// selectToolChain picks the closest installed JDK at or above the platform
// version, or empty when none is compatible.
func selectToolChain(installed []*InstalledJdk, version int) string {
	var best *InstalledJdk
	for _, jdk := range installed {
		if jdk.Major < version {
			continue
		}
		if best == nil || jdk.Major < best.Major {
			best = jdk
		}
	}
	if best == nil {
		return ""
	}
	return best.DisplayName
}

// quoteJoin renders names as 'a' and 'b' for diagnostics.
func quoteJoin(names []string) string {
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = "'" + name + "'"
	}
	if len(quoted) == 2 {
		return quoted[0] + " and " + quoted[1]
	}
	return strings.Join(quoted, ", ")
}
