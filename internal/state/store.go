// Package state persists per-package run results between invocations, so a
// later run can target exactly what failed last time.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wsrun/wsrun/internal/orchestrate"
	"github.com/wsrun/wsrun/internal/runner"
)

// LastRun is the persisted summary of the most recent invocation.
// Stored as <base>/last-run.json.
type LastRun struct {
	RunID    string    `json:"run_id"`
	Skill    string    `json:"skill"`
	Status   string    `json:"status"`
	Packages []string  `json:"packages"`
	Failed   []string  `json:"failed,omitempty"`
	Skipped  []string  `json:"skipped,omitempty"`
	Finished time.Time `json:"finished"`
}

// Store reads and writes run state under a base directory.
type Store struct {
	baseDir string
}

// NewStore creates a store at the given base directory (e.g. .wsrun/run).
func NewStore(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) lastRunPath() string {
	return filepath.Join(s.baseDir, "last-run.json")
}

func (s *Store) outcomePath(pkg string) string {
	// Package names are flat identifiers, but be safe about separators.
	name := strings.ReplaceAll(pkg, string(os.PathSeparator), "__")
	return filepath.Join(s.baseDir, "outcomes", name+".json")
}

// WriteSummary persists one outcome file per package plus the run summary.
func (s *Store) WriteSummary(sum *orchestrate.Summary) error {
	for _, out := range sum.Outcomes {
		if err := writeJSON(s.outcomePath(out.Package), out); err != nil {
			return fmt.Errorf("writing outcome for %s: %w", out.Package, err)
		}
	}

	last := LastRun{
		RunID:    sum.RunID,
		Skill:    sum.Skill,
		Status:   string(sum.Status),
		Failed:   sum.Failed,
		Skipped:  sum.Skipped,
		Finished: time.Now(),
	}
	for _, out := range sum.Outcomes {
		last.Packages = append(last.Packages, out.Package)
	}

	if err := writeJSON(s.lastRunPath(), last); err != nil {
		return fmt.Errorf("writing last run: %w", err)
	}
	return nil
}

// ReadLastRun loads the previous summary. A missing file is clean state, not
// an error.
func (s *Store) ReadLastRun() (*LastRun, error) {
	var last LastRun
	ok, err := readJSON(s.lastRunPath(), &last)
	if err != nil || !ok {
		return nil, err
	}
	return &last, nil
}

// ReadOutcome loads the persisted outcome of one package, if any.
func (s *Store) ReadOutcome(pkg string) (*runner.Outcome, error) {
	var out runner.Outcome
	ok, err := readJSON(s.outcomePath(pkg), &out)
	if err != nil || !ok {
		return nil, err
	}
	return &out, nil
}

// FailedPackages returns the packages that failed in the last run.
func (s *Store) FailedPackages() ([]string, error) {
	last, err := s.ReadLastRun()
	if err != nil || last == nil {
		return nil, err
	}
	return last.Failed, nil
}

// Reset clears all persisted run state.
func (s *Store) Reset() error {
	return os.RemoveAll(s.baseDir)
}

func writeJSON(path string, v interface{}) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		cerr := f.Close()
		if err == nil {
			err = cerr
		}
	}()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func readJSON(path string, v interface{}) (bool, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer func() { _ = f.Close() }()

	if err := json.NewDecoder(f).Decode(v); err != nil {
		return false, fmt.Errorf("decoding %s: %w", path, err)
	}
	return true, nil
}
