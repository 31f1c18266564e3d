package algo

import (
	"math"

	"github.com/huangsam/transcomplex/schema"
)

// Normalize maps one raw sub-metric value onto [0,1] using the strategy
// registered for it in cfg. Infinite values clamp; NaN is rejected.
func Normalize(family schema.Family, metric string, raw float64, cfg *Configuration) (float64, error) {
	p, ok := cfg.norm[metric]
	if !ok {
		return 0, &InvalidMetricError{Family: family, Metric: metric, Reason: "no normalization strategy registered"}
	}
	if math.IsNaN(raw) {
		return 0, &InvalidMetricError{Family: family, Metric: metric, Reason: "raw value is NaN"}
	}

	switch p.Strategy {
	case schema.LinearClamp:
		return linearClamp(raw, p.Min, p.Max), nil
	case schema.InverseLinearClamp:
		return 1 - linearClamp(raw, p.Min, p.Max), nil
	case schema.AlreadyBounded:
		return clamp01(raw), nil
	default:
		return 0, &InvalidMetricError{Family: family, Metric: metric, Reason: "unknown strategy " + string(p.Strategy)}
	}
}

// NormalizeSet normalizes every value of raw. The result has exactly the same keys.
func NormalizeSet(family schema.Family, raw schema.RawMetricSet, cfg *Configuration) (schema.NormalizedMetricSet, error) {
	out := make(schema.NormalizedMetricSet, len(raw))
	for metric, v := range raw {
		n, err := Normalize(family, metric, v, cfg)
		if err != nil {
			return nil, err
		}
		out[metric] = n
	}
	return out, nil
}

func linearClamp(v, lo, hi float64) float64 {
	if v <= lo {
		return 0
	}
	if v >= hi {
		return 1
	}
	return clamp01((v - lo) / (hi - lo))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
