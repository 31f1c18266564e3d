// Package outwriter has output and writer logic.
package outwriter

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/huangsam/transcomplex/internal/contract"
	"github.com/huangsam/transcomplex/schema"
)

const (
	// topNMetrics is how many sub-metrics the explain column lists.
	topNMetrics = 3

	// missingValue is printed for scores that do not exist.
	missingValue = "-"
)

// tierLabel returns the display label of a tier for table output.
func tierLabel(cfg *contract.Config, tier schema.Tier) string {
	if cfg.UseColors {
		return contract.GetColorLabel(tier)
	}
	return schema.GetPlainLabel(tier)
}

// errorLabel returns the display label of a failed text for table output.
func errorLabel(cfg *contract.Config) string {
	if cfg.UseColors {
		return contract.ErrorColor.Sprint("Error")
	}
	return "Error"
}

// familyColumn returns the table header of a family, e.g. "Readability".
func familyColumn(f schema.Family) string {
	name := string(f)
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// metricScore pairs a sub-metric with its normalized value.
type metricScore struct {
	Name  string
	Value float64
}

// formatTopMetrics lists the sub-metrics that push the score up the most.
func formatTopMetrics(r *schema.ComplexityResult, fmtFloat func(float64) string) string {
	metrics := make([]metricScore, 0, len(r.Metrics))
	for name, v := range r.Metrics {
		metrics = append(metrics, metricScore{Name: name, Value: v})
	}
	if len(metrics) == 0 {
		return "Not applicable"
	}

	// Highest first, name breaks ties so output is stable
	slices.SortFunc(metrics, func(a, b metricScore) int {
		if c := cmp.Compare(b.Value, a.Value); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})

	limit := min(len(metrics), topNMetrics)
	parts := make([]string, 0, limit)
	for _, m := range metrics[:limit] {
		parts = append(parts, fmt.Sprintf("%s=%s", m.Name, fmtFloat(m.Value)))
	}
	return strings.Join(parts, " > ")
}

// familyValue formats a family score, or missingValue when the family was absent.
func familyValue(r *schema.ComplexityResult, f schema.Family, fmtFloat func(float64) string) string {
	if r == nil {
		return missingValue
	}
	v, ok := r.FamilyScores[f]
	if !ok {
		return missingValue
	}
	return fmtFloat(v)
}

// allMetricNames returns every known sub-metric in family order, then name order.
func allMetricNames() []string {
	names := make([]string, 0, len(schema.MetricFamilies))
	for _, f := range schema.AllFamilies {
		var fam []string
		for name, family := range schema.MetricFamilies {
			if family == f {
				fam = append(fam, name)
			}
		}
		slices.Sort(fam)
		names = append(names, fam...)
	}
	return names
}
