package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/wsrun/wsrun/internal/orchestrate"
	"github.com/wsrun/wsrun/internal/runner"
	"github.com/wsrun/wsrun/pkg/logger"
)

var (
	runConcurrency  int
	runTimeout      time.Duration
	runOnlyAffected bool
	runFailed       bool
	runNoArtifacts  bool
)

var runCmd = &cobra.Command{
	Use:   "run <skill> [package...]",
	Short: "Run a skill against workspace packages",
	Long: `Run a skill against the given packages and their dependencies, in
dependency order. With no packages the whole workspace is targeted.
Independent packages run concurrently; a package whose dependency fails is
skipped and reported, never silently omitted.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := setupWorkspace()
		if err != nil {
			return err
		}

		skillName := args[0]
		targets := args[1:]
		if runFailed {
			targets, err = ws.store.FailedPackages()
			if err != nil {
				return err
			}
			if len(targets) == 0 {
				fmt.Println("no failed packages to re-run")
				return nil
			}
		}

		timeout := ws.cfg.Run.Timeout
		if cmd.Flags().Changed("timeout") {
			timeout = runTimeout
		}
		concurrency := ws.cfg.Run.Concurrency
		if cmd.Flags().Changed("concurrency") {
			concurrency = runConcurrency
		}

		orch := orchestrate.New(
			ws.graph, ws.registry, ws.env,
			runner.New(ws.root, timeout),
			orchestrate.Options{Concurrency: concurrency, OnlyAffected: runOnlyAffected},
		)

		plan, err := orch.Plan(skillName, targets)
		if err != nil {
			return err
		}
		if !runNoArtifacts {
			if path, err := ws.artifacts.WritePlan(plan, ws.graph, ws.root); err != nil {
				logger.Warnf("writing plan artifact: %v", err)
			} else if path != "" {
				logger.Infof("plan artifact: %s", path)
			}
		}

		// Cancel on interrupt; in-flight subprocesses are terminated and
		// the partial summary is still written.
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(quit)
		go func() {
			sig, ok := <-quit
			if ok {
				logger.Infof("received signal %s, cancelling run...", sig)
				cancel()
			}
		}()

		sum, err := orch.ExecutePlan(ctx, plan)
		if err != nil {
			return err
		}

		if err := ws.store.WriteSummary(sum); err != nil {
			logger.Warnf("persisting run state: %v", err)
		}
		if !runNoArtifacts {
			if path, err := ws.artifacts.WriteWalkthrough(plan, sum, ws.env, ws.graph, ws.root); err != nil {
				logger.Warnf("writing walkthrough artifact: %v", err)
			} else if path != "" {
				logger.Infof("walkthrough artifact: %s", path)
			}
		}

		printSummary(sum)

		switch sum.Status {
		case orchestrate.StatusSuccess, orchestrate.StatusNoOp:
			return nil
		default:
			return fmt.Errorf("run %s: %s", sum.Status, strings.Join(sum.Failed, ", "))
		}
	},
}

func init() {
	runCmd.Flags().IntVarP(&runConcurrency, "concurrency", "j", 0, "max concurrent packages (0 = number of CPUs)")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "per-package timeout (0 = none)")
	runCmd.Flags().BoolVar(&runOnlyAffected, "only-affected", false, "widen targets to everything depending on them")
	runCmd.Flags().BoolVar(&runFailed, "failed", false, "re-run the packages that failed last time")
	runCmd.Flags().BoolVar(&runNoArtifacts, "no-artifacts", false, "skip plan/walkthrough artifacts")

	rootCmd.AddCommand(runCmd)
}

var (
	passTag = color.New(color.FgGreen, color.Bold).SprintFunc()
	failTag = color.New(color.FgRed, color.Bold).SprintFunc()
	skipTag = color.New(color.FgYellow).SprintFunc()
)

func printSummary(sum *orchestrate.Summary) {
	fmt.Println()
	for _, out := range sum.Outcomes {
		switch out.Kind {
		case runner.KindSuccess:
			fmt.Printf("%s %s (%s)\n", passTag("PASS"), out.Package, out.Duration.Round(time.Millisecond))
		case runner.KindFailure:
			line := fmt.Sprintf("%s %s (exit %d)", failTag("FAIL"), out.Package, out.ExitCode)
			if out.Reason != "" {
				line += ": " + out.Reason
			}
			fmt.Println(line)
		default:
			fmt.Printf("%s %s: %s\n", skipTag("SKIP"), out.Package, out.Reason)
		}
	}

	fmt.Println()
	switch sum.Status {
	case orchestrate.StatusSuccess:
		fmt.Printf("%s %d package(s), %s\n", passTag("OK"), len(sum.Outcomes), sum.Duration.Round(time.Millisecond))
	case orchestrate.StatusNoOp:
		fmt.Println("no-op: no targeted package supports this skill")
	case orchestrate.StatusCancelled:
		fmt.Printf("%s run cancelled; %d outcome(s) recorded\n", skipTag("CANCELLED"), len(sum.Outcomes))
	default:
		fmt.Printf("%s %d of %d package(s) failed\n", failTag("FAILED"), len(sum.Failed), len(sum.Outcomes))
	}
}
