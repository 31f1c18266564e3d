package cmd

import (
	"github.com/huangsam/transcomplex/core"
	"github.com/huangsam/transcomplex/internal/contract"
	"github.com/spf13/cobra"
)

// checkCmd focused on CI/CD policy enforcement.
var checkCmd = &cobra.Command{
	Use:   "check [files...]",
	Short: "Enforce complexity limits for CI/CD pipelines (fails build on violations)",
	Long: `Score texts like batch does and enforce a complexity policy.

Designed specifically for CI/CD integration - exits with a non-zero code when:
- any text reaches --fail-tier (e.g. high also catches very high)
- any overall score exceeds --max-score
- any text cannot be scored at all

Default policy: no fail tier, max score 1.0 (only unscorable texts fail).

Use cases:
- Gate UI string changes to keep localization cost down
- Keep documentation pages below a translation budget
- Catch idioms and jargon before sending copy to vendors

Examples:
  # Fail when any UI string is high complexity or worse
  transcomplex check --split line --fail-tier high strings.txt

  # Cap the overall score of every doc page
  transcomplex check --glob 'docs/**/*.md' --max-score 0.6`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		inputs, err := core.CollectInputs(cfg, args, pipedStdin())
		if err != nil {
			contract.LogFatal("Cannot collect texts", err)
		}
		// Results are printed by ExecuteCheck
		if _, err := core.ExecuteCheck(rootCtx, cfg, cacheManager, inputs); err != nil {
			contract.LogFatal("Policy check failed", err)
		}
	},
}
