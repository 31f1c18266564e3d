package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/huangsam/transcomplex/internal/contract"
	"github.com/huangsam/transcomplex/schema"
)

// ErrCheckFailed is returned by ExecuteCheck when at least one text violates the policy.
var ErrCheckFailed = errors.New("policy check failed")

// maxViolationsShown caps how many violations are listed per group.
const maxViolationsShown = 5

// ExecuteCheck runs the check command for CI/CD gating.
// It scores every input and fails when any text reaches cfg.FailTier, exceeds
// cfg.MaxScore, or cannot be scored.
func ExecuteCheck(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, inputs []schema.TextInput) (*schema.CheckResult, error) {
	eng, err := NewEngine(cfg, mgr)
	if err != nil {
		return nil, err
	}
	start := time.Now()

	items, err := runScoringCore(ctx, cfg, eng, inputs, nil)
	if err != nil {
		return nil, err
	}

	result := EvaluateCheck(items, cfg)
	if !shouldSuppressHeader(ctx) {
		printCheckResult(os.Stdout, result, time.Since(start))
	}
	if !result.Passed {
		return result, fmt.Errorf("%w: %d violation(s), %d error(s)", ErrCheckFailed, len(result.FailedTexts), len(result.ErroredTexts))
	}
	return result, nil
}

// EvaluateCheck applies the fail tier and max score policy to scored items.
func EvaluateCheck(items []schema.BatchItem, cfg *contract.Config) *schema.CheckResult {
	result := &schema.CheckResult{
		TotalTexts: len(items),
		FailTier:   cfg.FailTier,
		MaxScore:   cfg.MaxScore,
		TierCounts: make(map[schema.Tier]int),
	}

	failIndex := -1
	if cfg.FailTier != "" && cfg.Scoring != nil {
		failIndex = cfg.Scoring.TierIndex(cfg.FailTier)
	}

	var sum float64
	scored := 0
	for _, it := range items {
		if it.Failed() {
			result.ErroredTexts = append(result.ErroredTexts, schema.CheckFailedText{
				Index:  it.Index,
				Source: it.Source,
				Reason: it.ErrorString(),
			})
			continue
		}

		r := it.Result
		scored++
		sum += r.Overall
		result.TierCounts[r.Tier]++
		if scored == 1 || r.Overall > result.MaxObserved {
			result.MaxObserved = r.Overall
			result.MaxObservedSource = it.Source
		}

		var reason string
		switch {
		case failIndex >= 0 && cfg.Scoring.TierIndex(r.Tier) >= failIndex:
			reason = fmt.Sprintf("tier %s reaches fail tier %s", r.Tier, cfg.FailTier)
		case r.Overall > cfg.MaxScore:
			reason = fmt.Sprintf("score %.3f > max %.3f", r.Overall, cfg.MaxScore)
		}
		if reason != "" {
			result.FailedTexts = append(result.FailedTexts, schema.CheckFailedText{
				Index:  it.Index,
				Source: it.Source,
				Score:  r.Overall,
				Tier:   r.Tier,
				Reason: reason,
			})
		}
	}

	if scored > 0 {
		result.AvgScore = sum / float64(scored)
	}
	result.Passed = len(result.FailedTexts) == 0 && len(result.ErroredTexts) == 0
	return result
}

// printCheckResult prints the check result in a concise format suitable for CI/CD.
func printCheckResult(w io.Writer, result *schema.CheckResult, duration time.Duration) {
	printCheckHeader(w, result, duration)

	if result.Passed {
		printCheckSuccess(w, result)
	} else {
		printCheckFailure(w, result)
	}
}

// printCheckHeader prints the common header information for check results.
func printCheckHeader(w io.Writer, result *schema.CheckResult, duration time.Duration) {
	_, _ = fmt.Fprintln(w, "Policy Check Results:")

	failTier := "(none)"
	if result.FailTier != "" {
		failTier = schema.GetPlainLabel(result.FailTier)
	}

	// Define labels and values for dynamic padding
	labels := []string{"Fail tier:", "Max score:"}
	values := []any{failTier, fmt.Sprintf("%.3f", result.MaxScore)}

	// Find the longest label for consistent padding
	maxLabelLen := 0
	for _, label := range labels {
		maxLabelLen = max(maxLabelLen, len(label))
	}

	for i, label := range labels {
		_, _ = fmt.Fprintf(w, "  %-*s %v\n", maxLabelLen+1, label, values[i])
	}
	_, _ = fmt.Fprintln(w)

	_, _ = fmt.Fprintf(w, "Checked %d texts in %v\n\n", result.TotalTexts, duration)
}

// printCheckSuccess prints the success case output.
func printCheckSuccess(w io.Writer, result *schema.CheckResult) {
	_, _ = fmt.Fprintf(w, "✅ All texts passed policy checks\n\n")
	if result.TotalTexts == 0 {
		return
	}
	_, _ = fmt.Fprintln(w, "Scores observed:")
	_, _ = fmt.Fprintf(w, "  max=%.3f (%s), avg=%.3f\n", result.MaxObserved, result.MaxObservedSource, result.AvgScore)
	printTierCounts(w, result)
}

// printCheckFailure prints the failure case output.
func printCheckFailure(w io.Writer, result *schema.CheckResult) {
	_, _ = fmt.Fprintf(w, "❌ Policy check failed: %d violation(s) and %d error(s) across %d texts\n\n",
		len(result.FailedTexts), len(result.ErroredTexts), result.TotalTexts)

	if len(result.FailedTexts) > 0 {
		failed := slices.Clone(result.FailedTexts)
		// Sort by score descending
		slices.SortStableFunc(failed, func(a, b schema.CheckFailedText) int {
			switch {
			case a.Score > b.Score:
				return -1
			case a.Score < b.Score:
				return 1
			default:
				return 0
			}
		})
		_, _ = fmt.Fprintf(w, "Violations (%d)\n", len(failed))
		printFailedList(w, failed, func(f schema.CheckFailedText) string {
			return fmt.Sprintf("%s (%s)", f.Source, f.Reason)
		})
	}

	if len(result.ErroredTexts) > 0 {
		_, _ = fmt.Fprintf(w, "Errors (%d)\n", len(result.ErroredTexts))
		printFailedList(w, result.ErroredTexts, func(f schema.CheckFailedText) string {
			return fmt.Sprintf("%s: %s", f.Source, f.Reason)
		})
	}
}

// printFailedList shows the top entries, with "+X more" if needed.
func printFailedList(w io.Writer, entries []schema.CheckFailedText, format func(schema.CheckFailedText) string) {
	for i, f := range entries {
		if i >= maxViolationsShown {
			_, _ = fmt.Fprintf(w, "  ... and %d more\n", len(entries)-i)
			break
		}
		_, _ = fmt.Fprintf(w, "  - %s\n", format(f))
	}
	_, _ = fmt.Fprintln(w)
}

// printTierCounts prints how many texts landed in each tier, in name order.
func printTierCounts(w io.Writer, result *schema.CheckResult) {
	tiers := make([]schema.Tier, 0, len(result.TierCounts))
	for t := range result.TierCounts {
		tiers = append(tiers, t)
	}
	slices.Sort(tiers)
	for _, t := range tiers {
		_, _ = fmt.Fprintf(w, "  %s: %d\n", schema.GetPlainLabel(t), result.TierCounts[t])
	}
}
