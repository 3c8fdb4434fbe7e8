// modules/jvm/probe.go
package jvm

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vk/buildmodelgo/internal/ctxlog"
)

// ProbeResult is what a probe could learn about one installation.
type ProbeResult struct {
	// JavaHome is the canonical installation path. Two declarations probing
	// to the same JavaHome are the same installation.
	JavaHome    string
	JavaVersion string
	Implementor string
}

// InstallProbe inspects a filesystem path and reports the JDK installed
// there, if any.
type InstallProbe interface {
	Probe(ctx context.Context, path string) (*ProbeResult, error)
}

// ReleaseFileProbe identifies a JDK by the metadata file modern
// distributions ship at the installation root.
type ReleaseFileProbe struct{}

func (p *ReleaseFileProbe) Probe(ctx context.Context, path string) (*ProbeResult, error) {
	home, err := canonicalPath(path)
	if err != nil {
		return nil, fmt.Errorf("resolving installation path %q: %w", path, err)
	}

	meta, err := parseReleaseFile(filepath.Join(home, "release"))
	if err != nil {
		return nil, fmt.Errorf("%q does not appear to contain a JDK installation: %w", path, err)
	}
	version := meta["JAVA_VERSION"]
	if version == "" {
		return nil, fmt.Errorf("%q does not appear to contain a JDK installation: release file has no JAVA_VERSION", path)
	}

	ctxlog.FromContext(ctx).Debug("Probed JDK installation.", "path", home, "version", version)
	return &ProbeResult{
		JavaHome:    home,
		JavaVersion: version,
		Implementor: meta["IMPLEMENTOR"],
	}, nil
}

// canonicalPath makes the path absolute and follows symlinks, so differently
// spelled declarations of one installation compare equal.
func canonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", err
	}
	return resolved, nil
}

// parseReleaseFile reads KEY="value" pairs from a JDK release file.
func parseReleaseFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	meta := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		meta[key] = strings.Trim(value, `"`)
	}
	return meta, scanner.Err()
}

// majorVersion extracts the feature release number from a JAVA_VERSION
// string, handling both the legacy "1.8.0_292" and the modern "11.0.2"
// schemes.
func majorVersion(version string) (int, error) {
	rest := version
	legacy := strings.HasPrefix(rest, "1.")
	if legacy {
		rest = rest[2:]
	}
	end := strings.IndexFunc(rest, func(r rune) bool {
		return r < '0' || r > '9'
	})
	if end == -1 {
		end = len(rest)
	}
	major, err := strconv.Atoi(rest[:end])
	if err != nil {
		return 0, fmt.Errorf("unparseable java version %q", version)
	}
	return major, nil
}

// displayName builds the human-readable name for a probed installation,
// e.g. "JDK 8 (Eclipse Adoptium)".
func displayName(major int, implementor string) string {
	if implementor == "" {
		return fmt.Sprintf("JDK %d", major)
	}
	return fmt.Sprintf("JDK %d (%s)", major, implementor)
}
