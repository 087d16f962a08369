// Package config holds the viper-backed application configuration.
package config

import (
	"time"

	"github.com/spf13/viper"
)

var v *viper.Viper

// Init initializes the viper instance
func Init() {
	v = viper.New()
}

// Viper returns the viper instance
func Viper() *viper.Viper {
	return v
}

// Workspace locates the packages to orchestrate.
type Workspace struct {
	Root string `mapstructure:"root" yaml:"root"`
}

// Env describes the environment roots merged into every subprocess
// environment: a base toolchain root plus ordered overlays.
type Env struct {
	BaseRoot string   `mapstructure:"base_root" yaml:"base_root"`
	Overlays []string `mapstructure:"overlays" yaml:"overlays"`
}

// Run bounds execution: worker count and the per-package timeout
// (zero = no timeout).
type Run struct {
	Concurrency int           `mapstructure:"concurrency" yaml:"concurrency"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout"`
	StateDir    string        `mapstructure:"state_dir" yaml:"state_dir"`
}

// Artifacts controls the plan/walkthrough reports.
type Artifacts struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Dir     string `mapstructure:"dir" yaml:"dir"`
}

// Skills points at an optional skill catalog overriding the built-ins.
type Skills struct {
	File string `mapstructure:"file" yaml:"file"`
}

// Log configuration
type Log struct {
	Level string `mapstructure:"level" yaml:"level"`
	Path  string `mapstructure:"path" yaml:"path"`
	Debug bool   `mapstructure:"debug" yaml:"debug"`
}

// Config represents the application configuration
type Config struct {
	Workspace Workspace `mapstructure:"workspace" yaml:"workspace"`
	Env       Env       `mapstructure:"env" yaml:"env"`
	Run       Run       `mapstructure:"run" yaml:"run"`
	Artifacts Artifacts `mapstructure:"artifacts" yaml:"artifacts"`
	Skills    Skills    `mapstructure:"skills" yaml:"skills"`
	Log       Log       `mapstructure:"log" yaml:"log"`
}

// LoadConfig loads configuration from viper
func LoadConfig() (*Config, error) {
	cfg := &Config{}

	if err := Viper().Unmarshal(cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Workspace.Root == "" {
		cfg.Workspace.Root = "."
	}
	if cfg.Env.BaseRoot == "" {
		cfg.Env.BaseRoot = cfg.Workspace.Root
	}
	if cfg.Run.StateDir == "" {
		cfg.Run.StateDir = ".wsrun/run"
	}
	if cfg.Artifacts.Dir == "" {
		cfg.Artifacts.Dir = ".wsrun/reports"
	}
	if !Viper().IsSet("artifacts.enabled") {
		cfg.Artifacts.Enabled = true
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "INFO"
	}
	if cfg.Log.Path == "" {
		cfg.Log.Path = "./log"
	}

	return cfg, nil
}
