package cmd

import (
	"github.com/huangsam/transcomplex/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the transcomplex MCP server",
	Long: `Launch an MCP server on stdio that allows AI agents to score texts via standard tools.

Tools:
  score_text       - score one text
  batch_score      - score a list of texts
  describe_metrics - describe sub-metrics, weights and tiers`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Logs go to stderr so stdio stays clean for the protocol.
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager, version)
	},
}
