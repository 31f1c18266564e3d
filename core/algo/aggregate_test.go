package algo

import (
	"math/rand/v2"
	"testing"

	"github.com/huangsam/transcomplex/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate(t *testing.T) {
	weights := schema.GetDefaultFamilyWeights()

	t.Run("all families present", func(t *testing.T) {
		sets := map[schema.Family]schema.NormalizedMetricSet{
			schema.ReadabilityFamily: {"a": 0.2, "b": 0.4},
			schema.LinguisticFamily:  {"c": 0.5},
			schema.TranslationFamily: {"d": 1.0, "e": 0.0},
		}
		scores, overall, err := Aggregate(sets, weights)
		require.NoError(t, err)
		assert.InDelta(t, 0.3, scores[schema.ReadabilityFamily], 1e-12)
		assert.InDelta(t, 0.5, scores[schema.LinguisticFamily], 1e-12)
		assert.InDelta(t, 0.5, scores[schema.TranslationFamily], 1e-12)
		assert.InDelta(t, 0.3*0.3+0.4*0.5+0.3*0.5, overall, 1e-12)
	})

	t.Run("empty family leaves the denominator", func(t *testing.T) {
		sets := map[schema.Family]schema.NormalizedMetricSet{
			schema.ReadabilityFamily: {"a": 0.6},
			schema.LinguisticFamily:  {"c": 0.2},
			schema.TranslationFamily: {},
		}
		scores, overall, err := Aggregate(sets, weights)
		require.NoError(t, err)
		assert.NotContains(t, scores, schema.TranslationFamily)
		assert.InDelta(t, (0.3*0.6+0.4*0.2)/0.7, overall, 1e-12)
	})

	t.Run("zero-weight family is reported but not averaged", func(t *testing.T) {
		w := schema.FamilyWeights{schema.ReadabilityFamily: 1, schema.LinguisticFamily: 1, schema.TranslationFamily: 0}
		sets := map[schema.Family]schema.NormalizedMetricSet{
			schema.ReadabilityFamily: {"a": 0.2},
			schema.LinguisticFamily:  {"c": 0.4},
			schema.TranslationFamily: {"d": 1.0},
		}
		scores, overall, err := Aggregate(sets, w)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, scores[schema.TranslationFamily], 1e-12)
		assert.InDelta(t, 0.3, overall, 1e-12)
	})

	t.Run("no metrics", func(t *testing.T) {
		_, _, err := Aggregate(map[schema.Family]schema.NormalizedMetricSet{}, weights)
		assert.ErrorIs(t, err, ErrNoMetrics)
	})

	t.Run("only zero-weight families present", func(t *testing.T) {
		w := schema.FamilyWeights{schema.ReadabilityFamily: 1}
		sets := map[schema.Family]schema.NormalizedMetricSet{
			schema.TranslationFamily: {"d": 0.5},
		}
		scores, _, err := Aggregate(sets, w)
		assert.ErrorIs(t, err, ErrNoMetrics)
		assert.InDelta(t, 0.5, scores[schema.TranslationFamily], 1e-12)
	})

	t.Run("unknown family", func(t *testing.T) {
		sets := map[schema.Family]schema.NormalizedMetricSet{"phonetic": {"x": 0.1}}
		_, _, err := Aggregate(sets, weights)
		assert.ErrorIs(t, err, ErrInvalidMetric)
	})
}

func TestAggregateConvexity(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for range 500 {
		sets := make(map[schema.Family]schema.NormalizedMetricSet)
		weights := make(schema.FamilyWeights)
		for _, f := range schema.AllFamilies {
			n := r.IntN(5)
			set := make(schema.NormalizedMetricSet, n)
			for i := range n {
				set[string(rune('a'+i))] = r.Float64()
			}
			sets[f] = set
			weights[f] = r.Float64() * 10
		}
		_, overall, err := Aggregate(sets, weights)
		if err != nil {
			assert.ErrorIs(t, err, ErrNoMetrics)
			continue
		}
		assert.GreaterOrEqual(t, overall, 0.0)
		assert.LessOrEqual(t, overall, 1.0)
	}
}

func TestAggregateDeterministic(t *testing.T) {
	sets := map[schema.Family]schema.NormalizedMetricSet{
		schema.ReadabilityFamily: {"a": 0.1, "b": 0.2, "c": 0.3, "d": 0.7, "e": 0.11},
		schema.LinguisticFamily:  {"f": 0.33, "g": 0.91},
		schema.TranslationFamily: {"h": 0.05},
	}
	weights := schema.GetDefaultFamilyWeights()

	_, first, err := Aggregate(sets, weights)
	require.NoError(t, err)
	for range 100 {
		_, again, err := Aggregate(sets, weights)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func BenchmarkAggregate(b *testing.B) {
	sets := map[schema.Family]schema.NormalizedMetricSet{
		schema.ReadabilityFamily: {"a": 0.1, "b": 0.2, "c": 0.3, "d": 0.7, "e": 0.11},
		schema.LinguisticFamily:  {"f": 0.33, "g": 0.91, "h": 0.4, "i": 0.2},
		schema.TranslationFamily: {"j": 0.05, "k": 0.5},
	}
	weights := schema.GetDefaultFamilyWeights()
	for b.Loop() {
		_, _, _ = Aggregate(sets, weights)
	}
}
