package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kayz/dobby/internal/research"
	"github.com/kayz/dobby/internal/search"
)

var (
	researchQuery  string
	researchRaw    bool
	researchLimit  int
	researchEngine string
)

var researchCmd = &cobra.Command{
	Use:   "research <question>",
	Short: "Plan, search and synthesize a cited answer",
	Long: `Plan, search and synthesize a cited answer.

With --raw the planned searches run but the model does not write a report;
the scored, deduplicated results are printed instead. Adding --engine to
--raw queries that one engine directly and prints its unprocessed hits.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		question := strings.Join(args, " ")
		q := researchQuery
		if q == "" {
			q = question
		}
		out := cmd.OutOrStdout()

		if researchRaw && researchEngine != "" {
			resp, err := a.search.SearchWithEngine(cmd.Context(), researchEngine, q, researchLimit)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, search.FormatResults(resp))
			return nil
		}
		if researchEngine != "" {
			if err := a.search.SetPrimaryEngine(researchEngine); err != nil {
				return fmt.Errorf("%w (configured: %s)", err, strings.Join(a.search.ListEngines(), ", "))
			}
		}
		if researchRaw {
			fmt.Fprintln(out, research.FormatResults(a.research.Search(cmd.Context(), q), researchLimit))
			return nil
		}

		fmt.Fprintln(out, a.research.Run(cmd.Context(), question, researchQuery, ""))
		return nil
	},
}

func init() {
	researchCmd.Flags().StringVar(&researchQuery, "query", "", "Search query to use instead of the question")
	researchCmd.Flags().BoolVar(&researchRaw, "raw", false, "Print scored search results without a written report")
	researchCmd.Flags().IntVar(&researchLimit, "limit", 10, "Result count for --raw")
	researchCmd.Flags().StringVar(&researchEngine, "engine", "", "Configured engine to try first (with --raw, the only engine asked)")
	rootCmd.AddCommand(researchCmd)
}
