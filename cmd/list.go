package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:       "list [skills|packages]",
	Short:     "List registered skills or workspace packages",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"skills", "packages"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := setupWorkspace()
		if err != nil {
			return err
		}

		what := "packages"
		if len(args) > 0 {
			what = args[0]
		}

		if what == "skills" {
			for _, name := range ws.registry.Names() {
				sk, _ := ws.registry.Resolve(name)
				fmt.Printf("%-12s requires %-12s %s\n", name, sk.RequiredCapability(), sk.Command)
			}
			return nil
		}

		for _, name := range ws.graph.Names() {
			pkg, _ := ws.graph.Package(name)
			deps := "-"
			if len(pkg.Dependencies) > 0 {
				deps = strings.Join(pkg.Dependencies, ", ")
			}
			fmt.Printf("%-20s deps: %-30s capabilities: %s\n", name, deps, strings.Join(pkg.Capabilities, ", "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
