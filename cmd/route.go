package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kayz/dobby/internal/ai"
)

var routeContext string

var routeCmd = &cobra.Command{
	Use:   "route <message>",
	Short: "Show which capability would handle a message",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg)
		if err != nil {
			return err
		}

		utterance := strings.Join(args, " ")
		var history []ai.Message
		if routeContext != "" {
			history = append(history, ai.Assistant(routeContext))
		}
		history = append(history, ai.User(utterance))

		d := a.router.Classify(cmd.Context(), utterance, history)
		out, err := json.MarshalIndent(d, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	routeCmd.Flags().StringVar(&routeContext, "context", "", "Previous assistant answer to route against")
	rootCmd.AddCommand(routeCmd)
}
