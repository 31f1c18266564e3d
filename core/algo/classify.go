package algo

import "github.com/huangsam/transcomplex/schema"

// Classify returns the highest tier whose lower bound is at most score.
// Thresholds must be sorted by lower bound, lowest first; a score sitting
// exactly on a bound belongs to the tier that bound introduces.
func Classify(score float64, thresholds []schema.Threshold) schema.Tier {
	for i := len(thresholds) - 1; i >= 0; i-- {
		if thresholds[i].LowerBound <= score {
			return thresholds[i].Tier
		}
	}
	if len(thresholds) > 0 {
		return thresholds[0].Tier
	}
	return ""
}
