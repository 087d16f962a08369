// Package runner executes one skill against one package as a subprocess and
// classifies the result. It never retries and never interprets failures
// beyond best-effort categorization; policy lives in the orchestrator.
package runner

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/wsrun/wsrun/internal/envctx"
	"github.com/wsrun/wsrun/internal/graph"
	"github.com/wsrun/wsrun/internal/skill"
	"github.com/wsrun/wsrun/pkg/logger"
)

// graceDelay is how long a subprocess gets between SIGTERM and a forced kill.
const graceDelay = 5 * time.Second

// Runner launches skill subprocesses from the workspace root.
type Runner struct {
	workdir string
	timeout time.Duration
}

// New creates a runner. timeout bounds each subprocess; zero means none.
func New(workdir string, timeout time.Duration) *Runner {
	return &Runner{workdir: workdir, timeout: timeout}
}

// Execute runs the skill's command for one package under the given
// environment context and returns the classified outcome.
func (r *Runner) Execute(ctx context.Context, sk *skill.Skill, pkg *graph.Package, env *envctx.Context) Outcome {
	started := time.Now()
	out := Outcome{
		Package: pkg.Name,
		Skill:   sk.Name,
		Started: started,
	}

	command, err := sk.RenderCommand(skill.CommandData{
		Package:   pkg.Name,
		Dir:       pkg.Dir,
		Workspace: r.workdir,
	})
	if err != nil {
		out.Kind = KindFailure
		out.ExitCode = -1
		out.Reason = err.Error()
		out.Duration = time.Since(started)
		return out
	}
	out.Command = command

	runCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, "bash", "-c", command)
	cmd.Dir = r.workdir
	cmd.Env = env.Environ()
	cmd.WaitDelay = graceDelay
	setProcessGroup(cmd)
	setProcessGroupTerm(cmd)

	// stdout and stderr are captured separately, but both also feed a
	// shared ordered buffer so the combined display keeps relative order.
	var stdout, stderr bytes.Buffer
	combined := &lockedBuffer{}
	cmd.Stdout = io.MultiWriter(&stdout, combined)
	cmd.Stderr = io.MultiWriter(&stderr, combined)

	logger.Debugf("running %s on %s: %s", sk.Name, pkg.Name, command)
	err = cmd.Run()

	out.Duration = time.Since(started)
	out.Stdout = stdout.String()
	out.Stderr = stderr.String()
	out.Output = combined.String()

	switch {
	case err == nil:
		out.Kind = KindSuccess
	case errors.Is(ctx.Err(), context.Canceled):
		// The invocation was cancelled while this subprocess was running.
		out.Kind = KindCancelled
		out.ExitCode = -1
		out.Reason = "cancelled"
	case isExitError(err):
		out.Kind = KindFailure
		out.ExitCode = cmd.ProcessState.ExitCode()
		out.Reason = r.failureReason(runCtx, sk, out.Output)
	default:
		// The subprocess could not be started or was torn down abnormally.
		out.Kind = KindFailure
		out.ExitCode = -1
		out.Reason = r.failureReason(runCtx, sk, out.Output)
		if out.Reason == "" {
			out.Reason = err.Error()
		}
	}

	return out
}

// failureReason distinguishes timeouts from plain failures, falling back to
// the skill's output classifiers.
func (r *Runner) failureReason(runCtx context.Context, sk *skill.Skill, output string) string {
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return "timeout after " + r.timeout.String()
	}
	return sk.ClassifyOutput(output)
}

func isExitError(err error) bool {
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr)
}

// lockedBuffer is an io.Writer safe for the two pipe-copy goroutines the
// exec package uses for stdout and stderr.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
