package graph

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/wsrun/wsrun/internal/manifest"
)

func mustLoad(t *testing.T, manifests ...*manifest.Manifest) *Graph {
	t.Helper()
	g, err := Load(manifests)
	require.NoError(t, err)
	return g
}

func pkg(name string, deps ...string) *manifest.Manifest {
	return &manifest.Manifest{Name: name, Dependencies: deps, Capabilities: []string{"build"}}
}

func TestLoadUnknownDependency(t *testing.T) {
	_, err := Load([]*manifest.Manifest{pkg("tool", "core")})
	require.Error(t, err)

	var unknownErr *UnknownDependencyError
	require.True(t, errors.As(err, &unknownErr))
	assert.Equal(t, "tool", unknownErr.Package)
	assert.Equal(t, "core", unknownErr.Dependency)
}

func TestLoadCycle(t *testing.T) {
	_, err := Load([]*manifest.Manifest{
		pkg("a", "b"),
		pkg("b", "c"),
		pkg("c", "a"),
	})
	require.Error(t, err)

	var cycleErr *CycleError
	require.True(t, errors.As(err, &cycleErr))
	assert.GreaterOrEqual(t, len(cycleErr.Path), 4)
	assert.Equal(t, cycleErr.Path[0], cycleErr.Path[len(cycleErr.Path)-1])
}

func TestLoadSelfCycle(t *testing.T) {
	_, err := Load([]*manifest.Manifest{pkg("a", "a")})

	var cycleErr *CycleError
	require.True(t, errors.As(err, &cycleErr))
}

func TestTopologicalOrderDiamond(t *testing.T) {
	g := mustLoad(t,
		pkg("base"),
		pkg("left", "base"),
		pkg("right", "base"),
		pkg("top", "left", "right"),
	)

	order, err := g.TopologicalOrder([]string{"top"})
	require.NoError(t, err)
	// Lexicographic tie-break makes the order fully deterministic.
	assert.Equal(t, []string{"base", "left", "right", "top"}, order)
}

func TestTopologicalOrderIncludesTransitiveDeps(t *testing.T) {
	g := mustLoad(t,
		pkg("core"),
		pkg("lib", "core"),
		pkg("tool", "lib"),
		pkg("unrelated"),
	)

	order, err := g.TopologicalOrder([]string{"tool"})
	require.NoError(t, err)
	assert.Equal(t, []string{"core", "lib", "tool"}, order)
	assert.NotContains(t, order, "unrelated")
}

func TestTopologicalOrderEmptyTargetsMeansAll(t *testing.T) {
	g := mustLoad(t, pkg("b"), pkg("a"), pkg("c", "a"))

	order, err := g.TopologicalOrder(nil)
	require.NoError(t, err)
	assert.Len(t, order, 3)
}

func TestTopologicalOrderUnknownTarget(t *testing.T) {
	g := mustLoad(t, pkg("a"))

	_, err := g.TopologicalOrder([]string{"nope"})
	var unknownErr *UnknownPackageError
	require.True(t, errors.As(err, &unknownErr))
	assert.Equal(t, "nope", unknownErr.Name)
}

func TestAffectedBy(t *testing.T) {
	g := mustLoad(t,
		pkg("core"),
		pkg("lib", "core"),
		pkg("tool", "lib"),
		pkg("other"),
	)

	affected, err := g.AffectedBy([]string{"core"})
	require.NoError(t, err)
	assert.Equal(t, []string{"core", "lib", "tool"}, affected)

	affected, err = g.AffectedBy([]string{"tool"})
	require.NoError(t, err)
	assert.Equal(t, []string{"tool"}, affected)
}

func TestAffectedByUnknownPackage(t *testing.T) {
	g := mustLoad(t, pkg("a"))

	_, err := g.AffectedBy([]string{"ghost"})
	var unknownErr *UnknownPackageError
	require.True(t, errors.As(err, &unknownErr))
}

func TestHasCapability(t *testing.T) {
	p := &Package{Name: "core", Capabilities: []string{"build", "test"}}
	assert.True(t, p.HasCapability("build"))
	assert.False(t, p.HasCapability("lint"))
}

// TestTopologicalOrderProperty generates random acyclic graphs and checks the
// two invariants that matter: every package appears after all of its
// dependencies, and the closure is complete.
func TestTopologicalOrderProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 20).Draw(t, "n")

		// Edges only point at lower-numbered packages, so the graph is
		// acyclic by construction.
		manifests := make([]*manifest.Manifest, n)
		for i := 0; i < n; i++ {
			name := fmt.Sprintf("pkg%02d", i)
			var deps []string
			if i > 0 {
				depIdx := rapid.SliceOfDistinct(rapid.IntRange(0, i-1), rapid.ID[int]).Draw(t, "deps")
				for _, j := range depIdx {
					deps = append(deps, fmt.Sprintf("pkg%02d", j))
				}
			}
			manifests[i] = &manifest.Manifest{Name: name, Dependencies: deps}
		}

		g, err := Load(manifests)
		require.NoError(t, err)

		order, err := g.TopologicalOrder(nil)
		require.NoError(t, err)
		require.Len(t, order, n)

		position := make(map[string]int, n)
		for i, name := range order {
			position[name] = i
		}
		for _, m := range manifests {
			for _, dep := range m.Dependencies {
				assert.Less(t, position[dep], position[m.Name],
					"%s must come after its dependency %s", m.Name, dep)
			}
		}
	})
}
