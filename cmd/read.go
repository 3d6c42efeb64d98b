package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var readCmd = &cobra.Command{
	Use:   "read <url>",
	Short: "Summarize a web page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		summary, err := a.reader.Summarize(cmd.Context(), args[0])
		fmt.Fprintln(cmd.OutOrStdout(), summary)
		return err
	},
}

func init() {
	rootCmd.AddCommand(readCmd)
}
