// Package graph holds the in-memory package dependency graph built from
// workspace manifests. Nodes are packages, edges are declared dependencies.
// The graph is validated at load time and immutable afterwards, so concurrent
// readers need no locking.
package graph

import (
	"sort"

	"github.com/wsrun/wsrun/internal/manifest"
)

// Package is a single node of the graph.
type Package struct {
	Name         string
	Dependencies []string
	Capabilities []string
	Dir          string
}

// HasCapability reports whether the package declares support for a skill.
func (p *Package) HasCapability(name string) bool {
	for _, c := range p.Capabilities {
		if c == name {
			return true
		}
	}
	return false
}

// Graph is the validated dependency graph of a workspace.
type Graph struct {
	packages   map[string]*Package
	dependents map[string][]string
}

// Load builds a graph from parsed manifests. It fails when a dependency
// references an unknown package or when the declared dependencies form a
// cycle; both are configuration errors.
func Load(manifests []*manifest.Manifest) (*Graph, error) {
	g := &Graph{
		packages:   make(map[string]*Package, len(manifests)),
		dependents: make(map[string][]string),
	}

	for _, m := range manifests {
		g.packages[m.Name] = &Package{
			Name:         m.Name,
			Dependencies: append([]string(nil), m.Dependencies...),
			Capabilities: append([]string(nil), m.Capabilities...),
			Dir:          m.Dir,
		}
	}

	for _, p := range g.packages {
		sort.Strings(p.Dependencies)
		for _, dep := range p.Dependencies {
			if _, ok := g.packages[dep]; !ok {
				return nil, &UnknownDependencyError{Package: p.Name, Dependency: dep}
			}
			g.dependents[dep] = append(g.dependents[dep], p.Name)
		}
	}
	for _, deps := range g.dependents {
		sort.Strings(deps)
	}

	if err := g.detectCycle(); err != nil {
		return nil, err
	}

	return g, nil
}

// Package returns the node with the given name.
func (g *Graph) Package(name string) (*Package, bool) {
	p, ok := g.packages[name]
	return p, ok
}

// Names returns all package names in lexicographic order.
func (g *Graph) Names() []string {
	names := make([]string, 0, len(g.packages))
	for name := range g.packages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DirectDeps returns the declared dependencies of a package, sorted.
func (g *Graph) DirectDeps(name string) []string {
	p, ok := g.packages[name]
	if !ok {
		return nil
	}
	return append([]string(nil), p.Dependencies...)
}

// Dependents returns the packages that directly depend on the given one.
func (g *Graph) Dependents(name string) []string {
	return append([]string(nil), g.dependents[name]...)
}

// Len returns the number of packages in the graph.
func (g *Graph) Len() int {
	return len(g.packages)
}

// detectCycle runs an iterative depth-first walk over all nodes and returns
// a CycleError carrying the offending path when one exists.
func (g *Graph) detectCycle() error {
	const (
		unvisited = iota
		inProgress
		done
	)
	state := make(map[string]int, len(g.packages))

	var visit func(name string, stack []string) error
	visit = func(name string, stack []string) error {
		switch state[name] {
		case done:
			return nil
		case inProgress:
			// Trim the stack down to the start of the cycle.
			for i, n := range stack {
				if n == name {
					return &CycleError{Path: append(append([]string(nil), stack[i:]...), name)}
				}
			}
			return &CycleError{Path: append(append([]string(nil), stack...), name)}
		}

		state[name] = inProgress
		stack = append(stack, name)
		for _, dep := range g.packages[name].Dependencies {
			if err := visit(dep, stack); err != nil {
				return err
			}
		}
		state[name] = done
		return nil
	}

	for _, name := range g.Names() {
		if err := visit(name, nil); err != nil {
			return err
		}
	}
	return nil
}
