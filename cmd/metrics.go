package cmd

import (
	"github.com/huangsam/transcomplex/core"
	"github.com/huangsam/transcomplex/internal/contract"
	"github.com/spf13/cobra"
)

// metricsCmd displays the formal definitions of all sub-metrics.
var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Display definitions, normalization and weights of every sub-metric",
	Long: `Show the formal definitions behind every score.

Provides complete transparency into how texts are scored, including:
- Family purpose and weight
- Sub-metric formulas and normalization bounds
- The aggregation formula for the overall score
- Tier thresholds
- Custom weights, thresholds and bounds if configured via .transcomplex.yaml

No text is scored - this is purely informational.

Examples:
  # Show default definitions
  transcomplex metrics

  # View with custom weights from config file
  transcomplex metrics --config .transcomplex.yaml`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteMetrics(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot display metrics", err)
		}
	},
}
