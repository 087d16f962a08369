package graph

import (
	"fmt"
	"strings"
)

// UnknownDependencyError reports a manifest dependency that names a package
// absent from the workspace.
type UnknownDependencyError struct {
	Package    string
	Dependency string
}

func (e *UnknownDependencyError) Error() string {
	return fmt.Sprintf("package %q depends on unknown package %q", e.Package, e.Dependency)
}

// UnknownPackageError reports a target or changed-set entry that is not in
// the graph.
type UnknownPackageError struct {
	Name string
}

func (e *UnknownPackageError) Error() string {
	return fmt.Sprintf("unknown package: %s", e.Name)
}

// CycleError reports a dependency cycle. Path holds the cycle with the first
// package repeated at the end.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle: %s", strings.Join(e.Path, " -> "))
}
