// Package orchestrate sequences skill executions over the package graph.
// One orchestrator serves exactly one invocation: Planning resolves the
// execution order and applicability, Executing walks the order with bounded
// concurrency, Aggregating folds the outcomes into a run summary.
package orchestrate

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/wsrun/wsrun/internal/envctx"
	"github.com/wsrun/wsrun/internal/graph"
	"github.com/wsrun/wsrun/internal/runner"
	"github.com/wsrun/wsrun/internal/skill"
	"github.com/wsrun/wsrun/pkg/logger"
)

// Executor runs one skill against one package. The subprocess runner is the
// production implementation; tests and retry policies wrap it.
type Executor interface {
	Execute(ctx context.Context, sk *skill.Skill, pkg *graph.Package, env *envctx.Context) runner.Outcome
}

// Options configure one invocation.
type Options struct {
	// Concurrency bounds parallel subprocesses; 0 means GOMAXPROCS.
	Concurrency int
	// OnlyAffected widens the targets to everything that transitively
	// depends on them, for "test what a change can break" runs.
	OnlyAffected bool
}

const (
	phaseIdle int32 = iota
	phasePlanning
	phaseExecuting
	phaseAggregating
	phaseDone
)

// Orchestrator drives a single run of one skill over a target set.
type Orchestrator struct {
	graph    *graph.Graph
	registry *skill.Registry
	env      *envctx.Context
	exec     Executor
	opts     Options

	phase atomic.Int32
}

// New creates an orchestrator for one invocation. The graph, registry and
// environment context are read-only during execution and shared freely.
func New(g *graph.Graph, reg *skill.Registry, env *envctx.Context, exec Executor, opts Options) *Orchestrator {
	return &Orchestrator{graph: g, registry: reg, env: env, exec: exec, opts: opts}
}

// Plan resolves the skill, target closure, execution order and applicability
// without running anything. Any error it returns is a *ConfigError.
func (o *Orchestrator) Plan(skillName string, targets []string) (*Plan, error) {
	sk, err := o.registry.Resolve(skillName)
	if err != nil {
		return nil, &ConfigError{Err: err}
	}

	if o.opts.OnlyAffected {
		targets, err = o.graph.AffectedBy(targets)
		if err != nil {
			return nil, &ConfigError{Err: err}
		}
	}

	order, err := o.graph.TopologicalOrder(targets)
	if err != nil {
		return nil, &ConfigError{Err: err}
	}

	plan := &Plan{
		RunID: uuid.NewString(),
		Skill: sk,
		Order: order,
	}
	for _, name := range order {
		pkg, _ := o.graph.Package(name)
		if sk.AppliesTo(pkg) {
			plan.Applicable = append(plan.Applicable, name)
		} else {
			plan.Unsupported = append(plan.Unsupported, name)
		}
	}
	return plan, nil
}

// Run executes the skill over the targets and aggregates the outcomes.
// A *ConfigError aborts before anything executes; execution failures are
// contained to their dependency subtree and reported in the summary.
// The orchestrator is single-use; a second call fails.
func (o *Orchestrator) Run(ctx context.Context, skillName string, targets []string) (*Summary, error) {
	plan, err := o.Plan(skillName, targets)
	if err != nil {
		return nil, err
	}
	return o.ExecutePlan(ctx, plan)
}

// ExecutePlan runs a previously resolved plan. Useful when the caller wants
// the plan itself (for artifacts or a dry run) before executing.
func (o *Orchestrator) ExecutePlan(ctx context.Context, plan *Plan) (*Summary, error) {
	if !o.phase.CompareAndSwap(phaseIdle, phaseExecuting) {
		return nil, fmt.Errorf("orchestrator already ran; create a new one per invocation")
	}
	defer o.phase.Store(phaseDone)

	logger.Infof("run %s: skill=%s packages=%d workers=%d",
		plan.RunID, plan.Skill.Name, len(plan.Order), o.concurrency())

	outcomes, cancelled := o.execute(ctx, plan)

	o.phase.Store(phaseAggregating)
	return o.aggregate(plan, outcomes, cancelled), nil
}

func (o *Orchestrator) concurrency() int {
	if o.opts.Concurrency > 0 {
		return o.opts.Concurrency
	}
	return runtime.GOMAXPROCS(0)
}

// execute walks the topological order. Packages become eligible when every
// dependency inside the closure has a terminal outcome; eligible packages run
// concurrently under the semaphore. Skips are decided at eligibility time, so
// upstream failure propagates transitively without re-walking the graph.
func (o *Orchestrator) execute(ctx context.Context, plan *Plan) (map[string]runner.Outcome, bool) {
	closure := make(map[string]bool, len(plan.Order))
	for _, name := range plan.Order {
		closure[name] = true
	}
	unsupported := make(map[string]bool, len(plan.Unsupported))
	for _, name := range plan.Unsupported {
		unsupported[name] = true
	}

	indegree := make(map[string]int, len(plan.Order))
	for _, name := range plan.Order {
		for _, dep := range o.graph.DirectDeps(name) {
			if closure[dep] {
				indegree[name]++
			}
		}
	}

	sem := semaphore.NewWeighted(int64(o.concurrency()))
	results := make(chan runner.Outcome)

	// The loop below is the only writer of these; workers communicate
	// exclusively through the results channel.
	outcomes := make(map[string]runner.Outcome, len(plan.Order))
	completed := 0

	launch := func(name string) {
		pkg, _ := o.graph.Package(name)
		go func() {
			if err := sem.Acquire(ctx, 1); err != nil {
				results <- runner.Outcome{
					Package: name,
					Skill:   plan.Skill.Name,
					Kind:    runner.KindCancelled,
					Reason:  "cancelled",
				}
				return
			}
			defer sem.Release(1)
			results <- o.exec.Execute(ctx, plan.Skill, pkg, o.env)
		}()
	}

	// resolve records an immediate outcome for packages that must not run,
	// or launches the subprocess. Returns true when an outcome was recorded
	// synchronously.
	resolve := func(name string) bool {
		switch {
		case ctx.Err() != nil:
			outcomes[name] = runner.Outcome{
				Package: name,
				Skill:   plan.Skill.Name,
				Kind:    runner.KindCancelled,
				Reason:  "cancelled",
			}
		case unsupported[name]:
			outcomes[name] = runner.Outcome{
				Package: name,
				Skill:   plan.Skill.Name,
				Kind:    runner.KindSkippedUnsupported,
				Reason:  fmt.Sprintf("package does not support skill %q", plan.Skill.Name),
			}
		default:
			dep := o.failedUpstream(name, closure, outcomes)
			if dep == "" {
				launch(name)
				return false
			}
			outcomes[name] = runner.Outcome{
				Package: name,
				Skill:   plan.Skill.Name,
				Kind:    runner.KindSkippedUpstream,
				Reason:  fmt.Sprintf("dependency %q did not succeed", dep),
			}
		}
		return true
	}

	// Seed with the packages that have no dependencies inside the closure,
	// in topological (hence lexicographic) order.
	var ready []string
	for _, name := range plan.Order {
		if indegree[name] == 0 {
			ready = append(ready, name)
		}
	}

	for completed < len(plan.Order) {
		// Drain the ready queue; synchronous skips release their
		// dependents immediately.
		for len(ready) > 0 {
			name := ready[0]
			ready = ready[1:]
			if !resolve(name) {
				continue
			}
			completed++
			ready = append(ready, o.release(name, closure, indegree)...)
		}

		if completed == len(plan.Order) {
			break
		}

		out := <-results
		outcomes[out.Package] = out
		completed++
		if out.Kind == runner.KindFailure {
			logger.Warnf("run %s: %s failed on %s (exit %d)",
				plan.RunID, plan.Skill.Name, out.Package, out.ExitCode)
		}
		ready = append(ready, o.release(out.Package, closure, indegree)...)
	}

	return outcomes, ctx.Err() != nil
}

// release decrements dependents of a completed package and returns those that
// became eligible, preserving the graph's deterministic order.
func (o *Orchestrator) release(name string, closure map[string]bool, indegree map[string]int) []string {
	var eligible []string
	for _, dep := range o.graph.Dependents(name) {
		if !closure[dep] {
			continue
		}
		indegree[dep]--
		if indegree[dep] == 0 {
			eligible = append(eligible, dep)
		}
	}
	return eligible
}

// failedUpstream returns the name of a direct dependency whose outcome blocks
// this package, or empty. Unsupported dependencies do not block: they were
// never attempted and nothing of theirs is stale.
func (o *Orchestrator) failedUpstream(name string, closure map[string]bool, outcomes map[string]runner.Outcome) string {
	for _, dep := range o.graph.DirectDeps(name) {
		if !closure[dep] {
			continue
		}
		switch outcomes[dep].Kind {
		case runner.KindFailure, runner.KindSkippedUpstream, runner.KindCancelled:
			return dep
		}
	}
	return ""
}
