package algo

import (
	"errors"
	"testing"

	"github.com/huangsam/transcomplex/schema"
	"github.com/stretchr/testify/assert"
)

// TestRankItems tests batch item ranking logic.
func TestRankItems(t *testing.T) {
	items := []schema.BatchItem{
		{Index: 0, Source: "low", Result: &schema.ComplexityResult{Overall: 0.1}},
		{Index: 1, Source: "broken", Err: errors.New("boom")},
		{Index: 2, Source: "high", Result: &schema.ComplexityResult{Overall: 0.9}},
		{Index: 3, Source: "medium", Result: &schema.ComplexityResult{Overall: 0.5}},
	}

	t.Run("rank and limit", func(t *testing.T) {
		ranked := RankItems(items, 2)
		assert.Len(t, ranked, 2)
		assert.Equal(t, "high", ranked[0].Source)
		assert.Equal(t, "medium", ranked[1].Source)
	})

	t.Run("failures sort last", func(t *testing.T) {
		ranked := RankItems(items, 0)
		assert.Len(t, ranked, 4)
		assert.Equal(t, "broken", ranked[3].Source)
	})

	t.Run("input untouched", func(t *testing.T) {
		_ = RankItems(items, 0)
		assert.Equal(t, "low", items[0].Source)
	})
}
