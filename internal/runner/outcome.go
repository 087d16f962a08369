package runner

import "time"

// Kind classifies the terminal state of one (package, skill) execution.
type Kind string

const (
	// KindSuccess means the subprocess exited zero.
	KindSuccess Kind = "success"
	// KindFailure means the subprocess exited nonzero, timed out, or could
	// not be started.
	KindFailure Kind = "failure"
	// KindSkippedUnsupported means the package does not declare the
	// capability the skill requires; never attempted.
	KindSkippedUnsupported Kind = "skipped-unsupported"
	// KindSkippedUpstream means a direct dependency failed or was itself
	// skipped; never attempted.
	KindSkippedUpstream Kind = "skipped-upstream-failure"
	// KindCancelled means the invocation was cancelled before this package
	// started.
	KindCancelled Kind = "cancelled"
)

// Outcome is the immutable record of one (package, skill) pair. Exactly one
// outcome exists per scheduled pair.
type Outcome struct {
	Package  string        `json:"package"`
	Skill    string        `json:"skill"`
	Kind     Kind          `json:"kind"`
	ExitCode int           `json:"exit_code"`
	Command  string        `json:"command,omitempty"`
	Reason   string        `json:"reason,omitempty"`
	Stdout   string        `json:"stdout,omitempty"`
	Stderr   string        `json:"stderr,omitempty"`
	Output   string        `json:"output,omitempty"`
	Duration time.Duration `json:"duration"`
	Started  time.Time     `json:"started,omitempty"`
}

// Ran reports whether a subprocess was actually launched for this pair.
func (o Outcome) Ran() bool {
	return o.Kind == KindSuccess || o.Kind == KindFailure
}
