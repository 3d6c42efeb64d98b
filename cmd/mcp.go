package cmd

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/kayz/dobby/internal/logger"
	"github.com/kayz/dobby/internal/tools"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve route_intent, web_research and read_url over MCP stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		s := tools.NewServer(Version, &tools.Handlers{
			Router:   a.router,
			Research: a.research,
			Reader:   a.reader,
		})
		logger.Info("[MCP] Serving on stdio")
		return server.ServeStdio(s)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
