package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/huangsam/transcomplex/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scoredItem(i int, overall float64, tier schema.Tier) schema.BatchItem {
	return schema.BatchItem{
		Index:  i,
		Source: fmt.Sprintf("t%d", i),
		Result: &schema.ComplexityResult{Overall: overall, Tier: tier},
	}
}

func TestEvaluateCheck(t *testing.T) {
	tests := []struct {
		name       string
		failTier   schema.Tier
		maxScore   float64
		items      []schema.BatchItem
		wantPassed bool
		wantFailed []string
		wantErrors int
	}{
		{
			name:       "all below limits",
			failTier:   schema.HighTier,
			maxScore:   1.0,
			items:      []schema.BatchItem{scoredItem(0, 0.1, schema.LowTier), scoredItem(1, 0.3, schema.MediumTier)},
			wantPassed: true,
		},
		{
			name:       "fail tier reached or exceeded",
			failTier:   schema.HighTier,
			maxScore:   1.0,
			items:      []schema.BatchItem{scoredItem(0, 0.5, schema.HighTier), scoredItem(1, 0.9, schema.VeryHighTier), scoredItem(2, 0.2, schema.LowTier)},
			wantFailed: []string{"t0", "t1"},
		},
		{
			name:       "max score exceeded",
			maxScore:   0.35,
			items:      []schema.BatchItem{scoredItem(0, 0.36, schema.MediumTier), scoredItem(1, 0.35, schema.MediumTier)},
			wantFailed: []string{"t0"},
		},
		{
			name:       "errored texts fail the check",
			maxScore:   1.0,
			items:      []schema.BatchItem{scoredItem(0, 0.1, schema.LowTier), {Index: 1, Source: "bad", Err: errors.New("no metrics")}},
			wantErrors: 1,
		},
		{
			name:       "no texts",
			maxScore:   1.0,
			wantPassed: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.FailTier = tt.failTier
			cfg.MaxScore = tt.maxScore

			result := EvaluateCheck(tt.items, cfg)
			assert.Equal(t, tt.wantPassed, result.Passed)
			assert.Equal(t, len(tt.items), result.TotalTexts)
			assert.Len(t, result.ErroredTexts, tt.wantErrors)

			var failed []string
			for _, f := range result.FailedTexts {
				failed = append(failed, f.Source)
				assert.NotEmpty(t, f.Reason)
			}
			assert.Equal(t, tt.wantFailed, failed)
		})
	}
}

func TestEvaluateCheckStats(t *testing.T) {
	items := []schema.BatchItem{
		scoredItem(0, 0.2, schema.LowTier),
		scoredItem(1, 0.6, schema.HighTier),
		scoredItem(2, 0.4, schema.MediumTier),
		{Index: 3, Source: "bad", Err: errors.New("x")},
	}
	result := EvaluateCheck(items, testConfig())
	assert.InDelta(t, 0.4, result.AvgScore, 1e-9)
	assert.Equal(t, 0.6, result.MaxObserved)
	assert.Equal(t, "t1", result.MaxObservedSource)
	assert.Equal(t, map[schema.Tier]int{schema.LowTier: 1, schema.MediumTier: 1, schema.HighTier: 1}, result.TierCounts)
}

func TestPrintCheckResult(t *testing.T) {
	t.Run("passed", func(t *testing.T) {
		var buf bytes.Buffer
		result := &schema.CheckResult{
			Passed: true, TotalTexts: 2, MaxScore: 1.0, MaxObserved: 0.3, MaxObservedSource: "a.txt",
			AvgScore: 0.2, TierCounts: map[schema.Tier]int{schema.LowTier: 1, schema.MediumTier: 1},
		}
		printCheckResult(&buf, result, time.Second)
		out := buf.String()
		assert.Contains(t, out, "Fail tier:  (none)")
		assert.Contains(t, out, "✅ All texts passed policy checks")
		assert.Contains(t, out, "max=0.300 (a.txt), avg=0.200")
	})

	t.Run("failed lists at most five violations", func(t *testing.T) {
		var failed []schema.CheckFailedText
		for i := range 7 {
			failed = append(failed, schema.CheckFailedText{Index: i, Source: fmt.Sprintf("t%d", i), Score: float64(i) / 10, Reason: "too high"})
		}
		result := &schema.CheckResult{
			TotalTexts: 8, FailTier: schema.HighTier, MaxScore: 1.0, FailedTexts: failed,
			ErroredTexts: []schema.CheckFailedText{{Source: "bad", Reason: "no metrics"}},
		}
		var buf bytes.Buffer
		printCheckResult(&buf, result, time.Second)
		out := buf.String()
		assert.Contains(t, out, "❌ Policy check failed: 7 violation(s) and 1 error(s) across 8 texts")
		assert.Contains(t, out, "... and 2 more")
		assert.Contains(t, out, "bad: no metrics")
		// Highest score first
		assert.Less(t, bytes.Index(buf.Bytes(), []byte("t6 (")), bytes.Index(buf.Bytes(), []byte("t5 (")))
		assert.NotContains(t, out, "t0 (")
	})
}

func TestExecuteCheck(t *testing.T) {
	ctx := WithSuppressHeader(context.Background())

	cfg := testConfig()
	result, err := ExecuteCheck(ctx, cfg, nil, textInputs("The cat sat on the mat."))
	require.NoError(t, err)
	assert.True(t, result.Passed)

	cfg.MaxScore = 0
	result, err = ExecuteCheck(ctx, cfg, nil, textInputs("The committee deliberated extensively regarding organizational restructuring."))
	assert.ErrorIs(t, err, ErrCheckFailed)
	require.NotNil(t, result)
	assert.False(t, result.Passed)
}
