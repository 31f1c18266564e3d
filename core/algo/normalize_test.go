package algo

import (
	"math"
	"testing"

	"github.com/huangsam/transcomplex/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cfg := DefaultConfiguration()

	tests := []struct {
		name     string
		family   schema.Family
		metric   string
		raw      float64
		expected float64
	}{
		{"linear at min", schema.ReadabilityFamily, schema.FleschKincaid, 0, 0},
		{"linear at max", schema.ReadabilityFamily, schema.FleschKincaid, 20, 1},
		{"linear midpoint", schema.ReadabilityFamily, schema.FleschKincaid, 5, 0.25},
		{"linear below min clamps", schema.ReadabilityFamily, schema.FleschKincaid, -3.2, 0},
		{"linear above max clamps", schema.ReadabilityFamily, schema.FleschKincaid, 42, 1},
		{"linear +Inf clamps", schema.ReadabilityFamily, schema.GunningFog, math.Inf(1), 1},
		{"linear -Inf clamps", schema.ReadabilityFamily, schema.GunningFog, math.Inf(-1), 0},
		{"inverse at min", schema.ReadabilityFamily, schema.FleschReadingEase, 0, 1},
		{"inverse at max", schema.ReadabilityFamily, schema.FleschReadingEase, 100, 0},
		{"inverse midpoint", schema.ReadabilityFamily, schema.FleschReadingEase, 75, 0.25},
		{"inverse negative clamps", schema.ReadabilityFamily, schema.FleschReadingEase, -40, 1},
		{"bounded passthrough", schema.LinguisticFamily, schema.LexicalDiversity, 0.37, 0.37},
		{"bounded clamps high", schema.TranslationFamily, schema.IdiomaticDensity, 1.8, 1},
		{"bounded clamps low", schema.TranslationFamily, schema.DomainSpecificity, -0.1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.family, tt.metric, tt.raw, cfg)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 1e-12)
		})
	}
}

func TestNormalizeExactBounds(t *testing.T) {
	cfg := DefaultConfiguration()
	for metric, p := range cfg.NormParams() {
		if p.Strategy != schema.LinearClamp {
			continue
		}
		lo, err := Normalize(schema.MetricFamilies[metric], metric, p.Min, cfg)
		require.NoError(t, err)
		hi, err := Normalize(schema.MetricFamilies[metric], metric, p.Max, cfg)
		require.NoError(t, err)
		assert.Equal(t, 0.0, lo, metric)
		assert.Equal(t, 1.0, hi, metric)
	}
}

func TestNormalizeErrors(t *testing.T) {
	cfg := DefaultConfiguration()

	t.Run("unregistered metric", func(t *testing.T) {
		_, err := Normalize(schema.LinguisticFamily, "passive_voice", 0.5, cfg)
		var metricErr *InvalidMetricError
		require.ErrorAs(t, err, &metricErr)
		assert.Equal(t, "passive_voice", metricErr.Metric)
		assert.ErrorIs(t, err, ErrInvalidMetric)
	})

	t.Run("NaN", func(t *testing.T) {
		_, err := Normalize(schema.ReadabilityFamily, schema.Smog, math.NaN(), cfg)
		assert.ErrorIs(t, err, ErrInvalidMetric)
	})
}

func TestNormalizeSetKeepsKeys(t *testing.T) {
	cfg := DefaultConfiguration()
	raw := schema.RawMetricSet{
		schema.FleschKincaid:     8,
		schema.FleschReadingEase: 60,
		schema.GunningFog:        11,
	}

	got, err := NormalizeSet(schema.ReadabilityFamily, raw, cfg)
	require.NoError(t, err)
	assert.Len(t, got, len(raw))
	for k := range raw {
		assert.Contains(t, got, k)
		assert.GreaterOrEqual(t, got[k], 0.0)
		assert.LessOrEqual(t, got[k], 1.0)
	}

	_, err = NormalizeSet(schema.ReadabilityFamily, schema.RawMetricSet{"unknown": 1}, cfg)
	assert.ErrorIs(t, err, ErrInvalidMetric)
}

func FuzzNormalize(f *testing.F) {
	cfg := DefaultConfiguration()
	f.Add(0.0)
	f.Add(20.0)
	f.Add(-1e9)
	f.Add(1e300)
	f.Fuzz(func(t *testing.T, raw float64) {
		if math.IsNaN(raw) {
			return
		}
		for metric := range cfg.NormParams() {
			got, err := Normalize(schema.MetricFamilies[metric], metric, raw, cfg)
			if err != nil {
				t.Fatalf("unexpected error for %s: %v", metric, err)
			}
			if got < 0 || got > 1 {
				t.Fatalf("%s(%v) = %v, outside [0,1]", metric, raw, got)
			}
		}
	})
}
