// Package skill defines the catalog of named operations that can be run
// against workspace packages, and the registry that resolves them by name.
package skill

import (
	"fmt"
	"regexp"
	"strings"
	"text/template"
)

// CommandData is the data a command template is rendered with.
type CommandData struct {
	// Package is the package identity.
	Package string
	// Dir is the package directory relative to the workspace root.
	Dir string
	// Workspace is the absolute workspace root.
	Workspace string
}

// Classifier attaches a human-readable reason to a failure by matching the
// captured output. Best effort; correctness never depends on it.
type Classifier struct {
	Pattern string `yaml:"pattern"`
	Reason  string `yaml:"reason"`

	re *regexp.Regexp
}

// Skill is a named, parameterized operation runnable against a package.
type Skill struct {
	Name string `yaml:"name"`
	// Command is a text/template producing the shell command to run,
	// rendered with CommandData.
	Command string `yaml:"command"`
	// Requires names the capability a package must declare to support this
	// skill. Empty means the skill's own name.
	Requires string `yaml:"requires"`
	// Classify maps failure output to reasons, first match wins.
	Classify []Classifier `yaml:"classify"`

	tmpl *template.Template
}

// RequiredCapability returns the capability this skill needs from a package.
func (s *Skill) RequiredCapability() string {
	if s.Requires != "" {
		return s.Requires
	}
	return s.Name
}

// compile validates the command template and classifier patterns. Called by
// the registry so that a bad definition fails at registration, not mid-run.
func (s *Skill) compile() error {
	if s.Name == "" {
		return fmt.Errorf("skill name is required")
	}
	if strings.TrimSpace(s.Command) == "" {
		return fmt.Errorf("skill %q: command is required", s.Name)
	}

	tmpl, err := template.New(s.Name).Option("missingkey=error").Parse(s.Command)
	if err != nil {
		return fmt.Errorf("skill %q: invalid command template: %w", s.Name, err)
	}
	s.tmpl = tmpl

	for i := range s.Classify {
		re, err := regexp.Compile(s.Classify[i].Pattern)
		if err != nil {
			return fmt.Errorf("skill %q: invalid classifier pattern %q: %w", s.Name, s.Classify[i].Pattern, err)
		}
		s.Classify[i].re = re
	}
	return nil
}

// RenderCommand produces the concrete shell command for one package.
func (s *Skill) RenderCommand(data CommandData) (string, error) {
	if s.tmpl == nil {
		if err := s.compile(); err != nil {
			return "", err
		}
	}
	var b strings.Builder
	if err := s.tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("skill %q: rendering command: %w", s.Name, err)
	}
	return b.String(), nil
}

// ClassifyOutput returns the reason of the first classifier matching the
// captured output, or empty when none matches.
func (s *Skill) ClassifyOutput(output string) string {
	for _, c := range s.Classify {
		if c.re != nil && c.re.MatchString(output) {
			return c.Reason
		}
	}
	return ""
}
