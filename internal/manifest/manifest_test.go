package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, root, dir, content string) {
	t.Helper()
	full := filepath.Join(root, dir)
	require.NoError(t, os.MkdirAll(full, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(full, FileName), []byte(content), 0644))
}

func TestParse(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(`
name: core
dependencies: [libutil]
capabilities: [build, test]
`), 0644))

	m, err := Parse(path)
	require.NoError(t, err)
	assert.Equal(t, "core", m.Name)
	assert.Equal(t, []string{"libutil"}, m.Dependencies)
	assert.Equal(t, []string{"build", "test"}, m.Capabilities)
}

func TestParseMissingName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte("dependencies: [x]\n"), 0644))

	_, err := Parse(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")
}

func TestParseInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte("name: [unclosed\n"), 0644))

	_, err := Parse(path)
	require.Error(t, err)
}

func TestLoadAll(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "core", "name: core\ncapabilities: [build]\n")
	writeManifest(t, root, "tools/cli", "name: cli\ndependencies: [core]\ncapabilities: [build, test]\n")

	manifests, err := NewLoader(root).LoadAll()
	require.NoError(t, err)
	require.Len(t, manifests, 2)

	// Sorted by name regardless of walk order.
	assert.Equal(t, "cli", manifests[0].Name)
	assert.Equal(t, filepath.Join("tools", "cli"), manifests[0].Dir)
	assert.Equal(t, "core", manifests[1].Name)
	assert.Equal(t, "core", manifests[1].Dir)
}

func TestLoadAllDuplicateName(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "a", "name: core\n")
	writeManifest(t, root, "b", "name: core\n")

	_, err := NewLoader(root).LoadAll()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate package")
}

func TestLoadAllMissingRoot(t *testing.T) {
	_, err := NewLoader(filepath.Join(t.TempDir(), "nope")).LoadAll()
	require.Error(t, err)
}
