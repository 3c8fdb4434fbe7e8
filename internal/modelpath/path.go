// internal/modelpath/path.go
package modelpath

import (
	"fmt"
	"regexp"
	"strings"
)

// Separator joins path segments in the canonical string form.
const Separator = "."

// segmentRegex validates a single segment of a path, e.g. `jdks` or `main-jar`.
var segmentRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Path is the structured identifier of a node in the model graph. The zero
// value is the root path.
type Path struct {
	segments []string
}

// Root returns the path of the graph root, which has zero segments.
func Root() Path {
	return Path{}
}

// Parse creates a Path from its canonical dot-separated string form. The
// empty string parses to the root path.
func Parse(raw string) (Path, error) {
	if raw == "" {
		return Path{}, nil
	}

	segments := strings.Split(raw, Separator)
	for _, segment := range segments {
		if err := validateSegment(segment); err != nil {
			return Path{}, fmt.Errorf("invalid path %q: %w", raw, err)
		}
	}
	return Path{segments: segments}, nil
}

// MustParse is Parse for statically-known paths; it panics on invalid input.
func MustParse(raw string) Path {
	p, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return p
}

func validateSegment(segment string) error {
	if segment == "" {
		return fmt.Errorf("path contains empty segment")
	}
	if !segmentRegex.MatchString(segment) {
		return fmt.Errorf("invalid path segment: %q", segment)
	}
	return nil
}

// String serializes the path into its canonical dot-separated form. The root
// path serializes to "<root>" for readability in diagnostics.
func (p Path) String() string {
	if p.IsRoot() {
		return "<root>"
	}
	return strings.Join(p.segments, Separator)
}

// IsRoot reports whether the path has zero segments.
func (p Path) IsRoot() bool {
	return len(p.segments) == 0
}

// Depth returns the number of segments in the path.
func (p Path) Depth() int {
	return len(p.segments)
}

// Name returns the last segment of the path, or "" for the root.
func (p Path) Name() string {
	if p.IsRoot() {
		return ""
	}
	return p.segments[len(p.segments)-1]
}

// Child derives the path of a direct child with the given name.
func (p Path) Child(name string) (Path, error) {
	if err := validateSegment(name); err != nil {
		return Path{}, err
	}
	segments := make([]string, 0, len(p.segments)+1)
	segments = append(segments, p.segments...)
	segments = append(segments, name)
	return Path{segments: segments}, nil
}

// MustChild is Child for statically-known names; it panics on invalid input.
func (p Path) MustChild(name string) Path {
	c, err := p.Child(name)
	if err != nil {
		panic(err)
	}
	return c
}

// Parent returns the path one level up and true, or the zero path and false
// when called on the root.
func (p Path) Parent() (Path, bool) {
	if p.IsRoot() {
		return Path{}, false
	}
	return Path{segments: p.segments[:len(p.segments)-1]}, true
}

// Equal checks structural equality of two paths.
func (p Path) Equal(other Path) bool {
	if len(p.segments) != len(other.segments) {
		return false
	}
	for i, segment := range p.segments {
		if other.segments[i] != segment {
			return false
		}
	}
	return true
}

// Compare orders paths lexically, segment by segment. A path sorts before
// any of its descendants.
func (p Path) Compare(other Path) int {
	for i := 0; i < len(p.segments) && i < len(other.segments); i++ {
		if c := strings.Compare(p.segments[i], other.segments[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(p.segments) < len(other.segments):
		return -1
	case len(p.segments) > len(other.segments):
		return 1
	default:
		return 0
	}
}

// IsDirectChildOf reports whether the receiver is exactly one level below
// the given path.
func (p Path) IsDirectChildOf(parent Path) bool {
	if len(p.segments) != len(parent.segments)+1 {
		return false
	}
	return p.hasPrefix(parent)
}

// IsDescendantOf reports whether the receiver is anywhere below the given
// path. A path is not a descendant of itself.
func (p Path) IsDescendantOf(ancestor Path) bool {
	if len(p.segments) <= len(ancestor.segments) {
		return false
	}
	return p.hasPrefix(ancestor)
}

func (p Path) hasPrefix(prefix Path) bool {
	for i, segment := range prefix.segments {
		if p.segments[i] != segment {
			return false
		}
	}
	return true
}

// Segments returns a copy of the path's segments.
func (p Path) Segments() []string {
	out := make([]string, len(p.segments))
	copy(out, p.segments)
	return out
}
