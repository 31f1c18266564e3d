package schema

import "strings"

// EnrichedBatchItem adds presentation data to a BatchItem.
type EnrichedBatchItem struct {
	Index   int               `json:"index" yaml:"index"`
	Source  string            `json:"source" yaml:"source"`
	Label   string            `json:"label" yaml:"label"`
	Overall *float64          `json:"overall_complexity,omitempty" yaml:"overall_complexity,omitempty"`
	Result  *ComplexityResult `json:"result,omitempty" yaml:"result,omitempty"`
	Error   string            `json:"error,omitempty" yaml:"error,omitempty"`
}

// GetPlainLabel returns a plain text label for a tier, e.g. "Very High" for very_high.
func GetPlainLabel(tier Tier) string {
	if tier == "" {
		return "Unknown"
	}
	parts := strings.Split(string(tier), "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}

// EnrichItems adds labels and error strings to a list of batch items.
func EnrichItems(items []BatchItem) []EnrichedBatchItem {
	output := make([]EnrichedBatchItem, len(items))
	for i, it := range items {
		e := EnrichedBatchItem{
			Index:  it.Index,
			Source: it.Source,
			Result: it.Result,
			Error:  it.ErrorString(),
		}
		if it.Result != nil {
			overall := it.Result.Overall
			e.Overall = &overall
			e.Label = GetPlainLabel(it.Result.Tier)
		} else {
			e.Label = "Error"
		}
		output[i] = e
	}
	return output
}
