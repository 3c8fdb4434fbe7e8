// modules/jvm/specs.go
package jvm

import (
	"fmt"
	"path/filepath"
)

// JdkSpec declares a JDK installation the user wants probed and registered.
type JdkSpec struct {
	Name string
	Path string
}

// InstalledJdk is a probed, usable JDK installation.
type InstalledJdk struct {
	Name        string
	JavaHome    string
	JavaVersion string
	// Major is the feature release number, e.g. 8 for "1.8.0_292".
	Major       int
	DisplayName string
}

// JavaPlatform is a target platform binaries can be built against.
type JavaPlatform struct {
	Name    string
	Version int
}

// APISpec describes the exported surface of a library.
type APISpec struct {
	Exports []string
}

// JvmLibrarySpec is one declared JVM library component.
type JvmLibrarySpec struct {
	Name            string
	TargetPlatforms []string
	API             APISpec
	Dependencies    []string
	Settings        map[string]any
}

// JvmBinary is the contract shared by every JVM binary in the model graph.
// Type-scoped rules select on it, so conventions declared for "every JVM
// binary" also reach the more specific binary kinds.
type JvmBinary interface {
	BinaryName() string
	LibraryName() string
	TargetPlatform() string
	SetOutputDirs(classesDir, resourcesDir string)
}

// JvmBinarySpec carries the state common to all JVM binaries.
type JvmBinarySpec struct {
	Name         string
	Library      string
	Platform     string
	ClassesDir   string
	ResourcesDir string
	ToolChain    string
}

func (b *JvmBinarySpec) BinaryName() string     { return b.Name }
func (b *JvmBinarySpec) LibraryName() string    { return b.Library }
func (b *JvmBinarySpec) TargetPlatform() string { return b.Platform }

func (b *JvmBinarySpec) SetOutputDirs(classesDir, resourcesDir string) {
	b.ClassesDir = classesDir
	b.ResourcesDir = resourcesDir
}

// JarBinarySpec is a JVM binary packaged as a runtime jar plus an API jar
// restricted to the library's exported packages.
type JarBinarySpec struct {
	JvmBinarySpec
	JarFile          string
	APIJarFile       string
	ExportedPackages []string
	Dependencies     []string
}

// ProjectLayout fixes where binaries place their outputs.
type ProjectLayout struct {
	BuildDir string
}

// OutputDir returns the conventional output directory for one category of
// output of one binary, e.g. build/classes/mainJar.
func (l *ProjectLayout) OutputDir(category, binaryName string) string {
	return filepath.Join(l.BuildDir, category, binaryName)
}

// binaryName derives a binary's name from its library and platform. With a
// single target platform the platform does not appear in the name.
func binaryName(library, platform string, multiplePlatforms bool) string {
	if !multiplePlatforms {
		return library + "Jar"
	}
	return fmt.Sprintf("%s%sJar", library, capitalize(platform))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}
