package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kayz/dobby/internal/search"
)

var enginesCmd = &cobra.Command{
	Use:   "engines",
	Short: "List configured search engines and the engine types this build supports",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Supported types: %s\n", strings.Join(search.NewRegistry().ListTypes(), ", "))

		mgr, err := search.NewManager(cfg.Search, search.NewRegistry())
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "Configured engines, in search order:")
		for i, name := range mgr.ListEngines() {
			fmt.Fprintf(out, "  %d. %s\n", i+1, name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(enginesCmd)
}
