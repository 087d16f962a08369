// Package manifest reads package manifests from a workspace. A manifest is a
// read-only record declaring a package's identity, its build/test dependencies
// and the skills it supports.
package manifest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileName is the manifest file looked up in every package directory.
const FileName = "package.yaml"

// Manifest describes one package of the workspace.
type Manifest struct {
	Name         string   `yaml:"name"`
	Dependencies []string `yaml:"dependencies"`
	Capabilities []string `yaml:"capabilities"`

	// Dir is the package directory relative to the workspace root.
	// Filled by the loader, not part of the manifest file.
	Dir string `yaml:"-"`
}

// Parse reads and validates a single manifest file.
func Parse(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}

	if m.Name == "" {
		return nil, fmt.Errorf("manifest %s: package name is required", path)
	}

	return &m, nil
}
