package skill

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wsrun/wsrun/internal/graph"
)

func TestRegistryRegisterAndResolve(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&Skill{Name: "build", Command: "go build ./{{.Dir}}/..."}))

	s, err := r.Resolve("build")
	require.NoError(t, err)
	assert.Equal(t, "build", s.Name)
	assert.Equal(t, 1, r.Count())
}

func TestRegistryDuplicate(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&Skill{Name: "build", Command: "true"}))

	err := r.Register(&Skill{Name: "build", Command: "false"})
	var dupErr *DuplicateSkillError
	require.True(t, errors.As(err, &dupErr))
	assert.Equal(t, "build", dupErr.Name)
}

func TestRegistryUnknown(t *testing.T) {
	r := NewRegistry()

	_, err := r.Resolve("deploy")
	var unknownErr *UnknownSkillError
	require.True(t, errors.As(err, &unknownErr))
	assert.Equal(t, "deploy", unknownErr.Name)
}

func TestRegisterInvalidTemplate(t *testing.T) {
	r := NewRegistry()
	err := r.Register(&Skill{Name: "bad", Command: "go build {{.Dir"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid command template")
}

func TestRegisterInvalidClassifier(t *testing.T) {
	r := NewRegistry()
	err := r.Register(&Skill{
		Name:     "bad",
		Command:  "true",
		Classify: []Classifier{{Pattern: "([unclosed", Reason: "x"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid classifier pattern")
}

func TestRegisterEmptyDefinition(t *testing.T) {
	r := NewRegistry()
	require.Error(t, r.Register(nil))
	require.Error(t, r.Register(&Skill{Command: "true"}))
	require.Error(t, r.Register(&Skill{Name: "build"}))
}

func TestRenderCommand(t *testing.T) {
	s := &Skill{Name: "build", Command: "go build ./{{.Dir}}/... # {{.Package}}"}
	require.NoError(t, s.compile())

	cmd, err := s.RenderCommand(CommandData{Package: "core", Dir: "pkg/core", Workspace: "/ws"})
	require.NoError(t, err)
	assert.Equal(t, "go build ./pkg/core/... # core", cmd)
}

func TestClassifyOutputFirstMatchWins(t *testing.T) {
	s := &Skill{
		Name:    "test",
		Command: "true",
		Classify: []Classifier{
			{Pattern: `--- FAIL`, Reason: "test failures"},
			{Pattern: `FAIL`, Reason: "generic failure"},
		},
	}
	require.NoError(t, s.compile())

	assert.Equal(t, "test failures", s.ClassifyOutput("--- FAIL: TestX"))
	assert.Equal(t, "generic failure", s.ClassifyOutput("FAIL somewhere"))
	assert.Equal(t, "", s.ClassifyOutput("all good"))
}

func TestAppliesTo(t *testing.T) {
	lint := &Skill{Name: "lint", Command: "true"}
	require.NoError(t, lint.compile())

	assert.True(t, lint.AppliesTo(&graph.Package{Name: "a", Capabilities: []string{"build", "lint"}}))
	assert.False(t, lint.AppliesTo(&graph.Package{Name: "b", Capabilities: []string{"build"}}))
}

func TestRequiredCapabilityDefaultsToName(t *testing.T) {
	s := &Skill{Name: "test", Command: "true"}
	assert.Equal(t, "test", s.RequiredCapability())

	s.Requires = "compile"
	assert.Equal(t, "compile", s.RequiredCapability())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skills.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
skills:
  - name: build
    command: "cargo build -p {{.Package}}"
  - name: lint
    command: "cargo clippy -p {{.Package}}"
    requires: lint
    classify:
      - pattern: "^warning:"
        reason: "lint violations found"
`), 0644))

	skills, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, skills, 2)
	assert.Equal(t, "build", skills[0].Name)
	assert.Equal(t, "lint", skills[1].Requires)
	assert.Len(t, skills[1].Classify, 1)
}

func TestLoadFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skills.yaml")
	require.NoError(t, os.WriteFile(path, []byte("skills: []\n"), 0644))

	_, err := LoadFile(path)
	require.Error(t, err)
}

func TestBuiltinCatalogRegisters(t *testing.T) {
	r := NewRegistry()
	for _, s := range Builtin() {
		require.NoError(t, r.Register(s))
	}
	assert.ElementsMatch(t, []string{"build", "test", "lint", "deps"}, r.Names())
}
