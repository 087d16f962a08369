package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the result of the last run",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := setupWorkspace()
		if err != nil {
			return err
		}

		last, err := ws.store.ReadLastRun()
		if err != nil {
			return err
		}
		if last == nil {
			fmt.Println("no runs recorded")
			return nil
		}

		fmt.Printf("run %s: skill=%s status=%s finished=%s\n",
			last.RunID, last.Skill, last.Status, last.Finished.Format("2006-01-02 15:04:05"))
		fmt.Printf("packages: %d\n", len(last.Packages))
		if len(last.Failed) > 0 {
			fmt.Printf("failed:   %s\n", strings.Join(last.Failed, ", "))
		}
		if len(last.Skipped) > 0 {
			fmt.Printf("skipped:  %s\n", strings.Join(last.Skipped, ", "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
