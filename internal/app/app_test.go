package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/buildmodelgo/internal/hcl"
)

// fakeJdk lays out a minimal JDK installation on disk.
func fakeJdk(t *testing.T, version string) string {
	t.Helper()
	home := t.TempDir()
	release := fmt.Sprintf("JAVA_VERSION=%q\nIMPLEMENTOR=\"Temurin\"\n", version)
	require.NoError(t, os.WriteFile(filepath.Join(home, "release"), []byte(release), 0o644))
	return home
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "model.hcl"), []byte(content), 0o644))
	return dir
}

func TestApp_Run(t *testing.T) {
	jdk8 := fakeJdk(t, "1.8.0_292")
	configDir := writeConfig(t, fmt.Sprintf(`
jdk "jdk8" {
  path = %q
}

platform "java8" {
  version = 8
}

jvm_library "main" {
  targets = ["java8"]
}
`, jdk8))

	appConfig, err := NewConfig(Config{ConfigPath: configDir})
	require.NoError(t, err)

	testApp, output := SetupAppTest(t, appConfig, hcl.NewLoader())
	require.NoError(t, testApp.Run(context.Background(), appConfig))

	got := output.String()
	assert.Contains(t, got, "model")
	assert.Contains(t, got, "+ binaries")
	assert.Contains(t, got, "+ mainJar (*jvm.JarBinarySpec) [Finalized]")
	assert.Contains(t, got, "+ installedJdks ([]*jvm.InstalledJdk) [Finalized]")
}

func TestApp_Run_ValidateOnly(t *testing.T) {
	jdk8 := fakeJdk(t, "1.8.0_292")
	configDir := writeConfig(t, fmt.Sprintf(`
jdk "jdk8" {
  path = %q
}
`, jdk8))

	appConfig, err := NewConfig(Config{ConfigPath: configDir, ValidateOnly: true})
	require.NoError(t, err)

	testApp, output := SetupAppTest(t, appConfig, hcl.NewLoader())
	require.NoError(t, testApp.Run(context.Background(), appConfig))
	assert.NotContains(t, output.String(), "+ installedJdks")
}

func TestApp_Run_DuplicateJdksFail(t *testing.T) {
	jdk8 := fakeJdk(t, "1.8.0_292")
	link := filepath.Join(t.TempDir(), "default-jdk")
	require.NoError(t, os.Symlink(jdk8, link))

	configDir := writeConfig(t, fmt.Sprintf(`
jdk "jdk8" {
  path = %q
}

jdk "default" {
  path = %q
}
`, jdk8, link))

	appConfig, err := NewConfig(Config{ConfigPath: configDir})
	require.NoError(t, err)

	testApp, output := SetupAppTest(t, appConfig, hcl.NewLoader())
	err = testApp.Run(context.Background(), appConfig)
	require.Error(t, err)
	assert.ErrorContains(t, err, "model validation failed with 1 problem(s)")
	assert.Contains(t, output.String(), "Validation problem at installedJdks")
	assert.Contains(t, output.String(), "are both pointing to the same JDK installation path")
}

func TestNewConfig_RequiresConfigPath(t *testing.T) {
	_, err := NewConfig(Config{})
	assert.ErrorContains(t, err, "ConfigPath is a required configuration field")
}

func TestNewApp_PanicsOnBadConfigPath(t *testing.T) {
	appConfig := &Config{ConfigPath: filepath.Join(t.TempDir(), "missing"), LogLevel: "error"}
	assert.Panics(t, func() {
		NewApp(&SafeBuffer{}, appConfig, hcl.NewLoader())
	})
}
