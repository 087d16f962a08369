package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/wsrun/wsrun/internal/artifact"
	"github.com/wsrun/wsrun/internal/config"
	"github.com/wsrun/wsrun/internal/envctx"
	"github.com/wsrun/wsrun/internal/graph"
	"github.com/wsrun/wsrun/internal/manifest"
	"github.com/wsrun/wsrun/internal/orchestrate"
	"github.com/wsrun/wsrun/internal/skill"
	"github.com/wsrun/wsrun/internal/state"
	"github.com/wsrun/wsrun/pkg/logger"
)

// workspace bundles everything a command needs: the loaded graph, the skill
// registry, the environment context and the state/artifact sinks.
type workspace struct {
	cfg       *config.Config
	root      string
	graph     *graph.Graph
	registry  *skill.Registry
	env       *envctx.Context
	store     *state.Store
	artifacts *artifact.Writer
}

// setupWorkspace loads configuration, manifests, skills and the environment
// context. Everything that can fail here is a configuration problem, so
// failures are wrapped as *orchestrate.ConfigError for the exit-code mapping.
func setupWorkspace() (*workspace, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	root, err := filepath.Abs(cfg.Workspace.Root)
	if err != nil {
		return nil, fmt.Errorf("resolving workspace root: %w", err)
	}

	manifests, err := manifest.NewLoader(root).LoadAll()
	if err != nil {
		return nil, &orchestrate.ConfigError{Err: err}
	}
	logger.Infof("workspace %s: %d packages", root, len(manifests))

	g, err := graph.Load(manifests)
	if err != nil {
		return nil, &orchestrate.ConfigError{Err: err}
	}

	registry, err := buildRegistry(cfg)
	if err != nil {
		return nil, &orchestrate.ConfigError{Err: err}
	}

	env, err := envctx.Build(cfg.Env.BaseRoot, cfg.Env.Overlays...)
	if err != nil {
		return nil, &orchestrate.ConfigError{Err: err}
	}

	return &workspace{
		cfg:       cfg,
		root:      root,
		graph:     g,
		registry:  registry,
		env:       env,
		store:     state.NewStore(cfg.Run.StateDir),
		artifacts: artifact.NewWriter(cfg.Artifacts.Dir, cfg.Artifacts.Enabled),
	}, nil
}

// buildRegistry registers the configured skill catalog, or the built-in one
// when no skills file is set.
func buildRegistry(cfg *config.Config) (*skill.Registry, error) {
	skills := skill.Builtin()
	if cfg.Skills.File != "" {
		loaded, err := skill.LoadFile(cfg.Skills.File)
		if err != nil {
			return nil, err
		}
		skills = loaded
	}

	registry := skill.NewRegistry()
	for _, s := range skills {
		if err := registry.Register(s); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
