package graph

import "sort"

// TopologicalOrder returns the targets plus their transitive dependencies in
// dependency-first order. Ties between independent packages are broken
// lexicographically so the order is reproducible. An empty target set means
// the whole workspace.
func (g *Graph) TopologicalOrder(targets []string) ([]string, error) {
	closure, err := g.closure(targets)
	if err != nil {
		return nil, err
	}

	// Kahn's algorithm restricted to the closure, with a sorted ready set
	// for the deterministic tie-break.
	indegree := make(map[string]int, len(closure))
	for name := range closure {
		count := 0
		for _, dep := range g.packages[name].Dependencies {
			if closure[dep] {
				count++
			}
		}
		indegree[name] = count
	}

	var ready []string
	for name, n := range indegree {
		if n == 0 {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(closure))
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		order = append(order, name)

		released := false
		for _, dep := range g.dependents[name] {
			if !closure[dep] {
				continue
			}
			indegree[dep]--
			if indegree[dep] == 0 {
				ready = append(ready, dep)
				released = true
			}
		}
		if released {
			sort.Strings(ready)
		}
	}

	return order, nil
}

// AffectedBy returns the changed packages plus every package that transitively
// depends on one of them, sorted by name. Used to scope a run to what a change
// can break.
func (g *Graph) AffectedBy(changed []string) ([]string, error) {
	affected := make(map[string]bool)
	var queue []string
	for _, name := range changed {
		if _, ok := g.packages[name]; !ok {
			return nil, &UnknownPackageError{Name: name}
		}
		if !affected[name] {
			affected[name] = true
			queue = append(queue, name)
		}
	}

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		for _, dep := range g.dependents[name] {
			if !affected[dep] {
				affected[dep] = true
				queue = append(queue, dep)
			}
		}
	}

	out := make([]string, 0, len(affected))
	for name := range affected {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

// closure resolves targets to the set of packages that must be considered:
// the targets themselves and all transitive dependencies.
func (g *Graph) closure(targets []string) (map[string]bool, error) {
	closure := make(map[string]bool)
	var queue []string

	if len(targets) == 0 {
		targets = g.Names()
	}
	for _, name := range targets {
		if _, ok := g.packages[name]; !ok {
			return nil, &UnknownPackageError{Name: name}
		}
		if !closure[name] {
			closure[name] = true
			queue = append(queue, name)
		}
	}

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		for _, dep := range g.packages[name].Dependencies {
			if !closure[dep] {
				closure[dep] = true
				queue = append(queue, dep)
			}
		}
	}

	return closure, nil
}
