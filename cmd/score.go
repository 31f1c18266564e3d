package cmd

import (
	"github.com/huangsam/transcomplex/core"
	"github.com/huangsam/transcomplex/internal/contract"
	"github.com/huangsam/transcomplex/schema"
	"github.com/spf13/cobra"
)

// scoreCmd scores a single text.
var scoreCmd = &cobra.Command{
	Use:   "score [text...]",
	Short: "Score how hard one text is to translate.",
	Long: `Score a single text and print its sub-metrics, family means, overall score and tier.

The arguments are joined with spaces into one text. Without arguments the whole of
stdin is read as one text.

Every sub-metric lands in [0,1]. Families average their sub-metrics, and the overall
score is the weighted mean of the families that produced metrics. The overall score
is then mapped to a tier (low, medium, high, very high).

Examples:
  # Score a sentence
  transcomplex score "The early bird catches the worm."

  # Score a file through stdin, with raw values and skipped families
  transcomplex score --explain < chapter1.txt

  # Machine-readable output
  transcomplex score --output json "Break a leg tonight!"`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		text, err := core.CollectArgText(args, pipedStdin())
		if err != nil {
			contract.LogFatal("Cannot read text", err)
		}
		if err := core.ExecuteScore(rootCtx, cfg, cacheManager, []schema.TextInput{text}); err != nil {
			contract.LogFatal("Cannot score text", err)
		}
	},
}
