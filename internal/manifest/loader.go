package manifest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// Loader discovers package manifests under a workspace root.
type Loader struct {
	root string
}

// NewLoader creates a loader rooted at the given workspace directory.
func NewLoader(root string) *Loader {
	return &Loader{root: root}
}

// LoadAll walks the workspace and parses every package.yaml it finds.
// Duplicate package names are a configuration error. The result is sorted
// by package name so downstream consumers see a stable order.
func (l *Loader) LoadAll() ([]*Manifest, error) {
	if _, err := os.Stat(l.root); os.IsNotExist(err) {
		return nil, fmt.Errorf("workspace root does not exist: %s", l.root)
	}

	var manifests []*Manifest
	seen := map[string]string{}

	err := filepath.WalkDir(l.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != FileName {
			return nil
		}

		m, err := Parse(path)
		if err != nil {
			return err
		}

		dir, err := filepath.Rel(l.root, filepath.Dir(path))
		if err != nil {
			return err
		}
		m.Dir = dir

		if prev, ok := seen[m.Name]; ok {
			return fmt.Errorf("duplicate package %q declared in %s and %s", m.Name, prev, dir)
		}
		seen[m.Name] = dir

		manifests = append(manifests, m)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking workspace: %w", err)
	}

	sort.Slice(manifests, func(i, j int) bool { return manifests[i].Name < manifests[j].Name })
	return manifests, nil
}
