package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wsrun/wsrun/internal/orchestrate"
	"github.com/wsrun/wsrun/internal/skill"
	"github.com/wsrun/wsrun/pkg/logger"
)

var planCmd = &cobra.Command{
	Use:   "plan <skill> [package...]",
	Short: "Show what a run would execute, without running it",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := setupWorkspace()
		if err != nil {
			return err
		}

		orch := orchestrate.New(ws.graph, ws.registry, ws.env, nil, orchestrate.Options{})
		plan, err := orch.Plan(args[0], args[1:])
		if err != nil {
			return err
		}

		fmt.Printf("skill %s: %d package(s) in scope\n\n", plan.Skill.Name, len(plan.Order))
		for i, name := range plan.Order {
			pkg, _ := ws.graph.Package(name)
			if !plan.Skill.AppliesTo(pkg) {
				fmt.Printf("%2d. %s  (skip: no %q capability)\n", i+1, name, plan.Skill.RequiredCapability())
				continue
			}
			command, err := plan.Skill.RenderCommand(skill.CommandData{
				Package:   pkg.Name,
				Dir:       pkg.Dir,
				Workspace: ws.root,
			})
			if err != nil {
				return err
			}
			fmt.Printf("%2d. %s  $ %s\n", i+1, name, command)
		}

		if path, err := ws.artifacts.WritePlan(plan, ws.graph, ws.root); err != nil {
			logger.Warnf("writing plan artifact: %v", err)
		} else if path != "" {
			fmt.Printf("\nplan artifact: %s\n", path)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(planCmd)
}
