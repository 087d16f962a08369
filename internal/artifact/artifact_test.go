package artifact

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wsrun/wsrun/internal/envctx"
	"github.com/wsrun/wsrun/internal/graph"
	"github.com/wsrun/wsrun/internal/manifest"
	"github.com/wsrun/wsrun/internal/orchestrate"
	"github.com/wsrun/wsrun/internal/runner"
	"github.com/wsrun/wsrun/internal/skill"
)

func fixture(t *testing.T) (*orchestrate.Plan, *orchestrate.Summary, *graph.Graph) {
	t.Helper()
	g, err := graph.Load([]*manifest.Manifest{
		{Name: "core", Dir: "core", Capabilities: []string{"build"}},
		{Name: "docs", Dir: "docs", Capabilities: []string{"lint"}},
		{Name: "tool", Dir: "tool", Dependencies: []string{"core"}, Capabilities: []string{"build"}},
	})
	require.NoError(t, err)

	sk := &skill.Skill{Name: "build", Command: "go build ./{{.Dir}}/..."}
	reg := skill.NewRegistry()
	require.NoError(t, reg.Register(sk))

	plan := &orchestrate.Plan{
		RunID:       "abc123",
		Skill:       sk,
		Order:       []string{"core", "docs", "tool"},
		Applicable:  []string{"core", "tool"},
		Unsupported: []string{"docs"},
	}
	sum := &orchestrate.Summary{
		RunID:  "abc123",
		Skill:  "build",
		Status: orchestrate.StatusFailure,
		Outcomes: []runner.Outcome{
			{Package: "core", Skill: "build", Kind: runner.KindFailure, ExitCode: 1, Command: "go build ./core/...", Output: "undefined: Foo", Reason: "compile error", Duration: time.Second},
			{Package: "docs", Skill: "build", Kind: runner.KindSkippedUnsupported, Reason: `package does not support skill "build"`},
			{Package: "tool", Skill: "build", Kind: runner.KindSkippedUpstream, Reason: `dependency "core" did not succeed`},
		},
		Failed:  []string{"core"},
		Skipped: []string{"docs", "tool"},
	}
	return plan, sum, g
}

func TestWritePlan(t *testing.T) {
	plan, _, g := fixture(t)
	dir := t.TempDir()

	path, err := NewWriter(dir, true).WritePlan(plan, g, "/ws")
	require.NoError(t, err)
	require.NotEmpty(t, path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(content)

	assert.Contains(t, text, "# Implementation Plan")
	assert.Contains(t, text, "`abc123`")
	assert.Contains(t, text, "go build ./core/...")
	assert.Contains(t, text, "go build ./tool/...")
	assert.Contains(t, text, "skipped, no `build` capability")
	assert.Contains(t, text, "`tool` depends on `core`")
}

func TestWriteWalkthrough(t *testing.T) {
	plan, sum, g := fixture(t)
	dir := t.TempDir()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(root+"/"+envctx.EnvFileName, []byte("CC: clang\n"), 0644))
	env, err := envctx.Build(root)
	require.NoError(t, err)

	path, err := NewWriter(dir, true).WriteWalkthrough(plan, sum, env, g, "/ws")
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(content)

	assert.Contains(t, text, "# Verification Walkthrough")
	assert.Contains(t, text, "cd /ws")
	assert.Contains(t, text, `export CC="clang"`)
	assert.Contains(t, text, "go build ./core/...")
	assert.Contains(t, text, "undefined: Foo")
	assert.Contains(t, text, "skipped-upstream-failure")
	assert.Contains(t, text, "compile error")
}

func TestDisabledWriterIsNoOp(t *testing.T) {
	plan, sum, g := fixture(t)
	env, err := envctx.Build(t.TempDir())
	require.NoError(t, err)

	w := NewWriter(t.TempDir(), false)

	path, err := w.WritePlan(plan, g, "/ws")
	require.NoError(t, err)
	assert.Empty(t, path)

	path, err = w.WriteWalkthrough(plan, sum, env, g, "/ws")
	require.NoError(t, err)
	assert.Empty(t, path)
}
