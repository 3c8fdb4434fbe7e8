// internal/modelpath/path_test.go
package modelpath

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected []string
		wantErr  string
	}{
		{name: "root", raw: "", expected: []string{}},
		{name: "single segment", raw: "components", expected: []string{"components"}},
		{name: "nested", raw: "components.main.sources", expected: []string{"components", "main", "sources"}},
		{name: "dashes and underscores", raw: "http-client.my_lib", expected: []string{"http-client", "my_lib"}},
		{name: "empty segment", raw: "a..b", wantErr: "empty segment"},
		{name: "trailing separator", raw: "a.b.", wantErr: "empty segment"},
		{name: "invalid characters", raw: "a.b c", wantErr: "invalid path segment"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := Parse(tc.raw)
			if tc.wantErr != "" {
				assert.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, p.Segments())
			assert.Equal(t, len(tc.expected), p.Depth())
		})
	}
}

func TestPath_String(t *testing.T) {
	assert.Equal(t, "<root>", Root().String())
	assert.Equal(t, "a.b.c", MustParse("a.b.c").String())
}

func TestPath_RoundTrip(t *testing.T) {
	for _, raw := range []string{"a", "a.b.c", "binaries.mainJar", "tools.jdks.jdk8"} {
		t.Run(raw, func(t *testing.T) {
			p, err := Parse(raw)
			require.NoError(t, err)
			assert.Equal(t, raw, p.String())

			again, err := Parse(p.String())
			require.NoError(t, err)
			assert.True(t, p.Equal(again))
		})
	}
}

func TestPath_ChildAndParent(t *testing.T) {
	p := MustParse("components.main")

	child, err := p.Child("sources")
	require.NoError(t, err)
	assert.Equal(t, "components.main.sources", child.String())
	assert.True(t, child.IsDirectChildOf(p))
	assert.True(t, child.IsDescendantOf(p))

	_, err = p.Child("bad name")
	assert.ErrorContains(t, err, "invalid path segment")

	parent, ok := child.Parent()
	require.True(t, ok)
	assert.True(t, parent.Equal(p))

	_, ok = Root().Parent()
	assert.False(t, ok)

	// Deriving a child must not mutate the receiver.
	assert.Equal(t, "components.main", p.String())
}

func TestPath_ChildDoesNotAliasParent(t *testing.T) {
	p := MustParse("a.b")
	c1 := p.MustChild("x")
	c2 := p.MustChild("y")
	assert.Equal(t, "a.b.x", c1.String())
	assert.Equal(t, "a.b.y", c2.String())
}

func TestPath_Relationships(t *testing.T) {
	root := Root()
	a := MustParse("a")
	ab := MustParse("a.b")
	abc := MustParse("a.b.c")
	ax := MustParse("a.x")

	assert.True(t, a.IsDirectChildOf(root))
	assert.True(t, ab.IsDescendantOf(root))
	assert.True(t, abc.IsDescendantOf(a))
	assert.False(t, abc.IsDirectChildOf(a))
	assert.False(t, ax.IsDescendantOf(ab))
	assert.False(t, ab.IsDescendantOf(ab))
	assert.Equal(t, "c", abc.Name())
	assert.Equal(t, "", root.Name())
}

func TestPath_CompareOrdersParentsFirst(t *testing.T) {
	paths := []Path{
		MustParse("b"),
		MustParse("a.b.c"),
		MustParse("a"),
		MustParse("a.b"),
	}
	sort.Slice(paths, func(i, j int) bool { return paths[i].Compare(paths[j]) < 0 })

	var got []string
	for _, p := range paths {
		got = append(got, p.String())
	}
	assert.Equal(t, []string{"a", "a.b", "a.b.c", "b"}, got)
}

// segmentGen produces valid path segments for property tests.
var segmentGen = rapid.StringMatching(`[a-zA-Z0-9_-]{1,8}`)

func TestPath_Properties(t *testing.T) {
	t.Run("parse and string are inverse", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			segments := rapid.SliceOfN(segmentGen, 1, 6).Draw(t, "segments")
			p := Root()
			for _, s := range segments {
				p = p.MustChild(s)
			}
			again, err := Parse(p.String())
			if err != nil {
				t.Fatalf("round trip failed: %v", err)
			}
			if !p.Equal(again) {
				t.Fatalf("round trip mismatch: %s != %s", p, again)
			}
		})
	})

	t.Run("compare is antisymmetric and consistent with equal", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			a := pathGen(t, "a")
			b := pathGen(t, "b")
			if a.Equal(b) != (a.Compare(b) == 0) {
				t.Fatalf("equal/compare disagree for %s and %s", a, b)
			}
			if a.Compare(b) != -b.Compare(a) {
				t.Fatalf("compare not antisymmetric for %s and %s", a, b)
			}
		})
	})

	t.Run("child is always a descendant", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			p := pathGen(t, "p")
			c := p.MustChild(segmentGen.Draw(t, "name"))
			if !c.IsDirectChildOf(p) || !c.IsDescendantOf(p) {
				t.Fatalf("%s is not a child of %s", c, p)
			}
		})
	})
}

func pathGen(t *rapid.T, label string) Path {
	p := Root()
	for _, s := range rapid.SliceOfN(segmentGen, 0, 5).Draw(t, label) {
		p = p.MustChild(s)
	}
	return p
}
