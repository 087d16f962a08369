package orchestrate

import (
	"time"

	"github.com/wsrun/wsrun/internal/runner"
	"github.com/wsrun/wsrun/internal/skill"
)

// Plan is the outcome of the Planning phase: what would run, in what order,
// and what is pre-marked as unsupported.
type Plan struct {
	RunID string
	Skill *skill.Skill
	// Order is the target closure in dependency-first order.
	Order []string
	// Applicable lists the packages that will be executed.
	Applicable []string
	// Unsupported lists the packages lacking the skill's capability.
	Unsupported []string
}

// Status is the overall result of one invocation.
type Status string

const (
	// StatusSuccess: at least one package ran, none failed.
	StatusSuccess Status = "success"
	// StatusFailure: at least one package failed.
	StatusFailure Status = "failure"
	// StatusNoOp: nothing was attempted; every package was unsupported.
	StatusNoOp Status = "no-op"
	// StatusCancelled: the invocation was cancelled; outcomes are partial
	// but every scheduled package still has one.
	StatusCancelled Status = "cancelled"
)

// Summary aggregates every outcome of one invocation. Owned by the caller
// after Run returns.
type Summary struct {
	RunID    string           `json:"run_id"`
	Skill    string           `json:"skill"`
	Status   Status           `json:"status"`
	Started  time.Time        `json:"started"`
	Duration time.Duration    `json:"duration"`
	Outcomes []runner.Outcome `json:"outcomes"`
	Failed   []string         `json:"failed,omitempty"`
	Skipped  []string         `json:"skipped,omitempty"`
}

// Outcome returns the recorded outcome for a package.
func (s *Summary) Outcome(pkg string) (runner.Outcome, bool) {
	for _, o := range s.Outcomes {
		if o.Package == pkg {
			return o, true
		}
	}
	return runner.Outcome{}, false
}

// aggregate folds the per-package outcomes into a summary, in the plan's
// deterministic order. Every package of the closure is enumerated, never
// silently omitted.
func (o *Orchestrator) aggregate(plan *Plan, outcomes map[string]runner.Outcome, cancelled bool) *Summary {
	s := &Summary{
		RunID:   plan.RunID,
		Skill:   plan.Skill.Name,
		Started: time.Now(),
	}

	var earliest time.Time
	ran := false
	failed := false
	for _, name := range plan.Order {
		out := outcomes[name]
		s.Outcomes = append(s.Outcomes, out)

		switch out.Kind {
		case runner.KindFailure:
			failed = true
			ran = true
			s.Failed = append(s.Failed, name)
		case runner.KindSuccess:
			ran = true
		case runner.KindSkippedUnsupported, runner.KindSkippedUpstream:
			s.Skipped = append(s.Skipped, name)
		}
		if !out.Started.IsZero() && (earliest.IsZero() || out.Started.Before(earliest)) {
			earliest = out.Started
		}
	}

	if !earliest.IsZero() {
		s.Started = earliest
		s.Duration = time.Since(earliest)
	}

	switch {
	case cancelled:
		s.Status = StatusCancelled
	case failed:
		s.Status = StatusFailure
	case ran:
		s.Status = StatusSuccess
	default:
		s.Status = StatusNoOp
	}
	return s
}
