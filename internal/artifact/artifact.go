// Package artifact renders the two documents produced per invocation: an
// implementation-plan record (what will run, in what order) and a
// verification walkthrough (literal commands a human can re-run to confirm
// the outcome). Both are plain Markdown for external reporting tools.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/wsrun/wsrun/internal/envctx"
	"github.com/wsrun/wsrun/internal/graph"
	"github.com/wsrun/wsrun/internal/orchestrate"
	"github.com/wsrun/wsrun/internal/runner"
	"github.com/wsrun/wsrun/internal/skill"
)

// Writer emits artifacts into an output directory.
type Writer struct {
	outputDir string
	enabled   bool
}

// NewWriter creates a writer. When disabled, every method is a no-op.
func NewWriter(outputDir string, enabled bool) *Writer {
	return &Writer{outputDir: outputDir, enabled: enabled}
}

// WritePlan records the execution plan and returns the file path.
func (w *Writer) WritePlan(plan *orchestrate.Plan, g *graph.Graph, workspace string) (string, error) {
	if !w.enabled {
		return "", nil
	}
	return w.write(plan.RunID, "plan", w.buildPlan(plan, g, workspace))
}

// WriteWalkthrough records environment and literal commands alongside the
// per-package results, and returns the file path.
func (w *Writer) WriteWalkthrough(plan *orchestrate.Plan, sum *orchestrate.Summary, env *envctx.Context, g *graph.Graph, workspace string) (string, error) {
	if !w.enabled {
		return "", nil
	}
	return w.write(plan.RunID, "verify", w.buildWalkthrough(plan, sum, env, g, workspace))
}

func (w *Writer) write(runID, kind, content string) (string, error) {
	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return "", fmt.Errorf("creating artifact directory: %w", err)
	}

	name := fmt.Sprintf("%s-%s-%s.md", time.Now().Format("20060102-150405"), runID, kind)
	path := filepath.Join(w.outputDir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("writing %s artifact: %w", kind, err)
	}
	return path, nil
}

func (w *Writer) buildPlan(plan *orchestrate.Plan, g *graph.Graph, workspace string) string {
	var b strings.Builder

	b.WriteString("# Implementation Plan\n\n")
	fmt.Fprintf(&b, "- **Run ID**: `%s`\n", plan.RunID)
	fmt.Fprintf(&b, "- **Skill**: `%s`\n", plan.Skill.Name)
	fmt.Fprintf(&b, "- **Packages in scope**: %d\n\n", len(plan.Order))

	b.WriteString("## Execution Order\n\n")
	for i, name := range plan.Order {
		pkg, _ := g.Package(name)
		if plan.Skill.AppliesTo(pkg) {
			cmd, err := plan.Skill.RenderCommand(commandData(pkg, workspace))
			if err != nil {
				cmd = "<" + err.Error() + ">"
			}
			fmt.Fprintf(&b, "%d. `%s` — `%s`\n", i+1, name, cmd)
		} else {
			fmt.Fprintf(&b, "%d. `%s` — skipped, no `%s` capability\n", i+1, name, plan.Skill.RequiredCapability())
		}
	}
	b.WriteString("\n")

	if deps := dependencyLines(plan, g); len(deps) > 0 {
		b.WriteString("## Dependencies\n\n")
		for _, line := range deps {
			b.WriteString(line + "\n")
		}
		b.WriteString("\n")
	}

	return b.String()
}

func (w *Writer) buildWalkthrough(plan *orchestrate.Plan, sum *orchestrate.Summary, env *envctx.Context, g *graph.Graph, workspace string) string {
	var b strings.Builder

	b.WriteString("# Verification Walkthrough\n\n")
	fmt.Fprintf(&b, "- **Run ID**: `%s`\n", sum.RunID)
	fmt.Fprintf(&b, "- **Skill**: `%s`\n", sum.Skill)
	fmt.Fprintf(&b, "- **Status**: %s\n", sum.Status)
	fmt.Fprintf(&b, "- **Duration**: %s\n\n", sum.Duration.Round(time.Millisecond))

	b.WriteString("## Environment\n\n")
	b.WriteString("```sh\n")
	fmt.Fprintf(&b, "cd %s\n", workspace)
	vars := env.Vars()
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "export %s=%q\n", k, vars[k])
	}
	b.WriteString("```\n\n")

	b.WriteString("## Commands\n\n")
	b.WriteString("Re-run these in order to confirm the results below.\n\n")
	for _, out := range sum.Outcomes {
		fmt.Fprintf(&b, "### %s\n\n", out.Package)
		if out.Command != "" {
			fmt.Fprintf(&b, "```sh\n%s\n```\n\n", out.Command)
		}
		fmt.Fprintf(&b, "- **Outcome**: %s\n", out.Kind)
		if out.Ran() {
			fmt.Fprintf(&b, "- **Exit code**: %d\n", out.ExitCode)
			fmt.Fprintf(&b, "- **Duration**: %s\n", out.Duration.Round(time.Millisecond))
		}
		if out.Reason != "" {
			fmt.Fprintf(&b, "- **Reason**: %s\n", out.Reason)
		}
		if out.Kind == runner.KindFailure && out.Output != "" {
			fmt.Fprintf(&b, "\n```\n%s\n```\n", strings.TrimRight(out.Output, "\n"))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func commandData(pkg *graph.Package, workspace string) skill.CommandData {
	return skill.CommandData{Package: pkg.Name, Dir: pkg.Dir, Workspace: workspace}
}

func dependencyLines(plan *orchestrate.Plan, g *graph.Graph) []string {
	var lines []string
	for _, name := range plan.Order {
		if deps := g.DirectDeps(name); len(deps) > 0 {
			lines = append(lines, fmt.Sprintf("- `%s` depends on `%s`", name, strings.Join(deps, "`, `")))
		}
	}
	return lines
}
