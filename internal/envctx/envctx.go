// Package envctx builds the immutable environment snapshot subprocesses run
// with. A context is a base toolchain root plus ordered overlay roots; each
// root may define variables, later roots shadow earlier ones, and anything
// left undefined is inherited from the ambient process environment.
package envctx

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvFileName is the optional variable file looked up inside each root.
const EnvFileName = "env.yaml"

// MissingRootError reports a root directory that does not exist. This is a
// precondition check before any subprocess is launched.
type MissingRootError struct {
	Root string
}

func (e *MissingRootError) Error() string {
	return fmt.Sprintf("environment root does not exist: %s", e.Root)
}

// Context is the resolved environment for one orchestrator invocation.
// Immutable once built.
type Context struct {
	roots []string
	vars  map[string]string
}

// Build resolves a base root and overlays into a flat variable table.
// Every root must be an existing directory; its env.yaml, when present, is a
// flat string map merged on top of what earlier roots defined.
func Build(baseRoot string, overlays ...string) (*Context, error) {
	roots := append([]string{baseRoot}, overlays...)
	vars := make(map[string]string)

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			return nil, &MissingRootError{Root: root}
		}

		path := filepath.Join(root, EnvFileName)
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}

		table := make(map[string]string)
		if err := yaml.Unmarshal(data, &table); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		for k, v := range table {
			vars[k] = v
		}
	}

	return &Context{roots: roots, vars: vars}, nil
}

// Roots returns the ordered root sequence, base first.
func (c *Context) Roots() []string {
	return append([]string(nil), c.roots...)
}

// Lookup returns the value a root defined for the key, if any. It does not
// consult the ambient environment.
func (c *Context) Lookup(key string) (string, bool) {
	v, ok := c.vars[key]
	return v, ok
}

// Vars returns a copy of the variables defined by the roots.
func (c *Context) Vars() map[string]string {
	out := make(map[string]string, len(c.vars))
	for k, v := range c.vars {
		out[k] = v
	}
	return out
}

// Environ returns the complete flattened environment for a subprocess:
// the ambient process environment with root-defined variables taking
// precedence, sorted for stable display.
func (c *Context) Environ() []string {
	merged := make(map[string]string)
	for _, kv := range os.Environ() {
		if i := strings.IndexByte(kv, '='); i >= 0 {
			merged[kv[:i]] = kv[i+1:]
		}
	}
	for k, v := range c.vars {
		merged[k] = v
	}

	out := make([]string, 0, len(merged))
	for k, v := range merged {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}
