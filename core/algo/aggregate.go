package algo

import (
	"fmt"
	"maps"
	"slices"

	"github.com/huangsam/transcomplex/schema"
)

// Aggregate combines normalized sub-metrics into per-family means and a
// weighted overall mean.
//
// Families with no sub-metrics are left out entirely, so their weight leaves
// the denominator. Families with weight 0 are still reported in the family
// scores but do not move the overall score. Summation runs over families in
// schema.AllFamilies order and over sub-metrics in sorted key order, which
// makes the result bit-reproducible.
func Aggregate(sets map[schema.Family]schema.NormalizedMetricSet, weights schema.FamilyWeights) (schema.FamilyScores, float64, error) {
	for f := range sets {
		if _, ok := schema.ValidFamilies[f]; !ok {
			return nil, 0, &InvalidMetricError{Family: f, Reason: "unknown family"}
		}
	}

	scores := make(schema.FamilyScores, len(sets))
	var num, den float64
	for _, f := range schema.AllFamilies {
		set := sets[f]
		if len(set) == 0 {
			continue
		}
		s := familyMean(set)
		scores[f] = s

		w := weights[f]
		if w <= 0 {
			continue
		}
		num += w * s
		den += w
	}

	if den == 0 {
		return scores, 0, fmt.Errorf("%w: no positively weighted family produced sub-metrics", ErrNoMetrics)
	}
	return scores, clamp01(num / den), nil
}

func familyMean(set schema.NormalizedMetricSet) float64 {
	var sum float64
	for _, k := range slices.Sorted(maps.Keys(set)) {
		sum += set[k]
	}
	return sum / float64(len(set))
}
