package skill

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// skillFile is the on-disk catalog format.
type skillFile struct {
	Skills []*Skill `yaml:"skills"`
}

// LoadFile parses a skills.yaml catalog. Definitions are validated later, at
// registration.
func LoadFile(path string) ([]*Skill, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading skill catalog: %w", err)
	}

	var f skillFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing skill catalog %s: %w", path, err)
	}
	if len(f.Skills) == 0 {
		return nil, fmt.Errorf("skill catalog %s defines no skills", path)
	}
	return f.Skills, nil
}

// Builtin returns the default skill catalog used when no skills.yaml is
// configured. Commands assume a Go workspace; other toolchains override them
// through the catalog file.
func Builtin() []*Skill {
	return []*Skill{
		{
			Name:    "build",
			Command: "go build ./{{.Dir}}/...",
			Classify: []Classifier{
				{Pattern: `(?m)undefined:|cannot find package|syntax error`, Reason: "compile error"},
			},
		},
		{
			Name:    "test",
			Command: "go test ./{{.Dir}}/...",
			Classify: []Classifier{
				{Pattern: `(?m)^--- FAIL`, Reason: "test failures"},
				{Pattern: `(?m)^FAIL.*\[build failed\]`, Reason: "compile error"},
			},
		},
		{
			Name:    "lint",
			Command: "golangci-lint run ./{{.Dir}}/...",
			Classify: []Classifier{
				{Pattern: `(?m)^[^\s]+\.go:\d+`, Reason: "lint violations found"},
			},
		},
		{
			Name:    "deps",
			Command: "go list -deps ./{{.Dir}}/... >/dev/null",
			Classify: []Classifier{
				{Pattern: `missing go\.sum entry|cannot find module`, Reason: "unresolved dependency"},
			},
		},
	}
}
