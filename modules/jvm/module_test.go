// modules/jvm/module_test.go
package jvm

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/buildmodelgo/internal/config"
	"github.com/vk/buildmodelgo/internal/model"
	"github.com/vk/buildmodelgo/internal/modeltype"
)

// fakeProbe resolves declared paths from a fixed table, so tests need no real
// JDK on disk.
type fakeProbe struct {
	results map[string]*ProbeResult
}

func (f *fakeProbe) Probe(_ context.Context, path string) (*ProbeResult, error) {
	result, ok := f.results[path]
	if !ok {
		return nil, fmt.Errorf("no JDK installation at %q", path)
	}
	return result, nil
}

func registerModule(t *testing.T, probe InstallProbe, decls *config.Model) *model.Registry {
	t.Helper()
	reg := model.New()
	require.NoError(t, NewWithProbe(probe).Register(context.Background(), reg, decls))
	return reg
}

func jarBinary(t *testing.T, reg *model.Registry, name string) *JarBinarySpec {
	t.Helper()
	n, err := reg.Node(PathBinaries.MustChild(name))
	require.NoError(t, err)
	raw, err := n.PrivateData(modeltype.Of[*JarBinarySpec]())
	require.NoError(t, err)
	return raw.(*JarBinarySpec)
}

func TestModule_EndToEnd(t *testing.T) {
	ctx := context.Background()
	probe := &fakeProbe{results: map[string]*ProbeResult{
		"/opt/jdk8":  {JavaHome: "/opt/jdk8", JavaVersion: "1.8.0_292", Implementor: "Temurin"},
		"/opt/jdk11": {JavaHome: "/opt/jdk11", JavaVersion: "11.0.2", Implementor: "Temurin"},
	}}
	decls := &config.Model{
		BuildDir: "build",
		Jdks: []*config.JdkDecl{
			{Name: "jdk8", Path: "/opt/jdk8"},
			{Name: "jdk11", Path: "/opt/jdk11"},
		},
		Platforms: []*config.PlatformDecl{
			{Name: "java8", Version: 8},
			{Name: "java11", Version: 11},
		},
		Libraries: []*config.LibraryDecl{
			{
				Name:         "main",
				Targets:      []string{"java8", "java11"},
				Exports:      []string{"com.example.main"},
				Dependencies: []string{"core"},
			},
			{Name: "core"},
		},
	}

	reg := registerModule(t, probe, decls)
	require.NoError(t, reg.RealizeAll(ctx))

	// Two binaries for the multi-platform library, with the platform in the
	// name, and one for the single-target library.
	binaries, err := reg.Node(PathBinaries)
	require.NoError(t, err)
	assert.Equal(t, []string{"mainJava8Jar", "mainJava11Jar", "coreJar"},
		binaries.LinkNames(modeltype.Of[*JarBinarySpec]()))

	main8 := jarBinary(t, reg, "mainJava8Jar")
	assert.Equal(t, "main", main8.Library)
	assert.Equal(t, "java8", main8.Platform)
	assert.Equal(t, filepath.Join("build", "classes", "mainJava8Jar"), main8.ClassesDir)
	assert.Equal(t, filepath.Join("build", "resources", "mainJava8Jar"), main8.ResourcesDir)
	assert.Equal(t, filepath.Join("build", "jars", "mainJava8Jar", "main.jar"), main8.JarFile)
	assert.Equal(t, filepath.Join("build", "jars", "mainJava8Jar", "main-api.jar"), main8.APIJarFile)
	assert.Equal(t, []string{"com.example.main"}, main8.ExportedPackages)
	assert.Equal(t, []string{"core"}, main8.Dependencies)
	assert.Equal(t, "JDK 8 (Temurin)", main8.ToolChain)

	main11 := jarBinary(t, reg, "mainJava11Jar")
	assert.Equal(t, "JDK 11 (Temurin)", main11.ToolChain)

	// No declared target defaults to the highest declared platform.
	core := jarBinary(t, reg, "coreJar")
	assert.Equal(t, "java11", core.Platform)
	assert.Empty(t, core.ExportedPackages)

	failures, err := reg.ValidateAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, failures)
}

func TestModule_DuplicateJdksFailValidation(t *testing.T) {
	ctx := context.Background()
	// Two declarations, one physical installation.
	probe := &fakeProbe{results: map[string]*ProbeResult{
		"/usr/lib/jvm/8":    {JavaHome: "/usr/lib/jvm/8", JavaVersion: "1.8.0_292"},
		"/usr/lib/jvm/jdk8": {JavaHome: "/usr/lib/jvm/8", JavaVersion: "1.8.0_292"},
		"/usr/lib/jvm/11":   {JavaHome: "/usr/lib/jvm/11", JavaVersion: "11.0.2"},
	}}
	decls := &config.Model{
		BuildDir: "build",
		Jdks: []*config.JdkDecl{
			{Name: "jdk8", Path: "/usr/lib/jvm/8"},
			{Name: "jdk8link", Path: "/usr/lib/jvm/jdk8"},
			{Name: "jdk11", Path: "/usr/lib/jvm/11"},
		},
	}

	reg := registerModule(t, probe, decls)
	require.NoError(t, reg.RealizeAll(ctx))

	failures, err := reg.ValidateAll(ctx)
	require.NoError(t, err)
	require.Len(t, failures, 1)
	assert.Equal(t, PathInstalledJdks, failures[0].Path)
	assert.ErrorContains(t, failures[0].Err,
		"JDKs 'jdk8' and 'jdk8link' are both pointing to the same JDK installation path: /usr/lib/jvm/8")
}

func TestModule_UnknownTargetPlatform(t *testing.T) {
	ctx := context.Background()
	decls := &config.Model{
		BuildDir:  "build",
		Platforms: []*config.PlatformDecl{{Name: "java8", Version: 8}},
		Libraries: []*config.LibraryDecl{{Name: "main", Targets: []string{"java99"}}},
	}

	reg := registerModule(t, &fakeProbe{}, decls)
	err := reg.RealizeAll(ctx)
	assert.ErrorContains(t, err, `library "main" targets unknown platform "java99"`)
}

func TestModule_NoPlatformsDeclared(t *testing.T) {
	ctx := context.Background()
	decls := &config.Model{
		BuildDir:  "build",
		Libraries: []*config.LibraryDecl{{Name: "main"}},
	}

	reg := registerModule(t, &fakeProbe{}, decls)
	err := reg.RealizeAll(ctx)
	assert.ErrorContains(t, err, "no platforms are defined")
}

func TestReleaseFileProbe(t *testing.T) {
	ctx := context.Background()
	probe := &ReleaseFileProbe{}

	t.Run("reads release metadata", func(t *testing.T) {
		home := t.TempDir()
		release := "JAVA_VERSION=\"17.0.1\"\nIMPLEMENTOR=\"Eclipse Adoptium\"\nOS_NAME=\"Linux\"\n"
		require.NoError(t, os.WriteFile(filepath.Join(home, "release"), []byte(release), 0o644))

		result, err := probe.Probe(ctx, home)
		require.NoError(t, err)
		assert.Equal(t, "17.0.1", result.JavaVersion)
		assert.Equal(t, "Eclipse Adoptium", result.Implementor)
		assert.NotEmpty(t, result.JavaHome)
	})

	t.Run("symlinked declarations share a home", func(t *testing.T) {
		home := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(home, "release"), []byte("JAVA_VERSION=\"11.0.2\"\n"), 0o644))
		link := filepath.Join(t.TempDir(), "default-jdk")
		require.NoError(t, os.Symlink(home, link))

		direct, err := probe.Probe(ctx, home)
		require.NoError(t, err)
		viaLink, err := probe.Probe(ctx, link)
		require.NoError(t, err)
		assert.Equal(t, direct.JavaHome, viaLink.JavaHome)
	})

	t.Run("directory without release file", func(t *testing.T) {
		_, err := probe.Probe(ctx, t.TempDir())
		assert.ErrorContains(t, err, "does not appear to contain a JDK installation")
	})

	t.Run("release file without version", func(t *testing.T) {
		home := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(home, "release"), []byte("OS_NAME=\"Linux\"\n"), 0o644))
		_, err := probe.Probe(ctx, home)
		assert.ErrorContains(t, err, "release file has no JAVA_VERSION")
	})
}

func TestMajorVersion(t *testing.T) {
	cases := []struct {
		version string
		major   int
		wantErr bool
	}{
		{version: "1.8.0_292", major: 8},
		{version: "11.0.2", major: 11},
		{version: "17", major: 17},
		{version: "21.0.1+12", major: 21},
		{version: "nonsense", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.version, func(t *testing.T) {
			major, err := majorVersion(tc.version)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.major, major)
		})
	}
}

func TestSelectToolChain(t *testing.T) {
	installed := []*InstalledJdk{
		{Name: "jdk17", Major: 17, DisplayName: "JDK 17"},
		{Name: "jdk8", Major: 8, DisplayName: "JDK 8"},
		{Name: "jdk11", Major: 11, DisplayName: "JDK 11"},
	}

	// Closest installation at or above the platform version wins.
	assert.Equal(t, "JDK 8", selectToolChain(installed, 8))
	assert.Equal(t, "JDK 11", selectToolChain(installed, 9))
	assert.Equal(t, "JDK 17", selectToolChain(installed, 17))
	assert.Equal(t, "", selectToolChain(installed, 21))
	assert.Equal(t, "", selectToolChain(nil, 8))
}

func TestBinaryName(t *testing.T) {
	assert.Equal(t, "coreJar", binaryName("core", "java8", false))
	assert.Equal(t, "coreJava8Jar", binaryName("core", "java8", true))
	assert.Equal(t, "core8Jar", binaryName("core", "8", true))
}
