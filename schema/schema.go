// Package schema has configs, models and constants for all parts of transcomplex.
package schema

import (
	"maps"
	"slices"
)

// RawMetricSet maps a sub-metric name to its raw value in metric-specific units.
type RawMetricSet map[string]float64

// NormalizedMetricSet maps a sub-metric name to a value in [0,1].
type NormalizedMetricSet map[string]float64

// FamilyWeights maps a family to its relative contribution to the overall score.
type FamilyWeights map[Family]float64

// FamilyScores maps a family to the mean of its normalized sub-metrics.
type FamilyScores map[Family]float64

// Threshold introduces a tier at a lower bound of the overall score.
type Threshold struct {
	Tier       Tier    `json:"tier" yaml:"tier" mapstructure:"tier"`
	LowerBound float64 `json:"lower_bound" yaml:"lower_bound" mapstructure:"lower_bound"`
}

// NormParam declares how one raw sub-metric is mapped onto [0,1].
type NormParam struct {
	Strategy NormStrategy `json:"strategy" yaml:"strategy" mapstructure:"strategy"`
	Min      float64      `json:"min" yaml:"min" mapstructure:"min"`
	Max      float64      `json:"max" yaml:"max" mapstructure:"max"`
}

// ComplexityResult is the outcome of scoring one text. It is built once and
// never mutated afterwards.
type ComplexityResult struct {
	Metrics      NormalizedMetricSet `json:"metrics" yaml:"metrics"`
	Raw          RawMetricSet        `json:"raw,omitempty" yaml:"raw,omitempty"`
	FamilyScores FamilyScores        `json:"family_scores" yaml:"family_scores"`
	Overall      float64             `json:"overall_complexity" yaml:"overall_complexity"`
	Tier         Tier                `json:"tier" yaml:"tier"`
	Skipped      map[Family]string   `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// Flatten returns the flat record of sub-metric scores plus the overall score.
func (r *ComplexityResult) Flatten() map[string]float64 {
	flat := make(map[string]float64, len(r.Metrics)+1)
	maps.Copy(flat, r.Metrics)
	flat[OverallKey] = r.Overall
	return flat
}

// MetricNames returns the sub-metric names of the result in sorted order.
func (r *ComplexityResult) MetricNames() []string {
	return slices.Sorted(maps.Keys(r.Metrics))
}

// TextInput is one unit of text to score along with where it came from.
type TextInput struct {
	Source string `json:"source"`
	Text   string `json:"text"`
}

// BatchItem is the per-text outcome of a batch. Exactly one of Result and Err is set.
type BatchItem struct {
	Index  int               `json:"index"`
	Source string            `json:"source"`
	Result *ComplexityResult `json:"result,omitempty"`
	Err    error             `json:"-"`
}

// Failed reports whether the text could not be scored.
func (b BatchItem) Failed() bool {
	return b.Err != nil
}

// ErrorString returns the error message, or an empty string for successful items.
func (b BatchItem) ErrorString() string {
	if b.Err == nil {
		return ""
	}
	return b.Err.Error()
}
