package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/transcomplex/schema"
)

// writeJSONMetrics writes the metrics definitions in JSON format.
func writeJSONMetrics(w io.Writer, renderModel *schema.MetricsRenderModel) error {
	return writeJSON(w, renderModel)
}

// writeCSVMetrics writes one row per sub-metric with its family weight.
func writeCSVMetrics(w io.Writer, renderModel *schema.MetricsRenderModel) error {
	weights := make(map[schema.Family]float64, len(renderModel.Families))
	for _, fam := range renderModel.Families {
		weights[fam.Name] = fam.Weight
	}

	header := []string{"metric", "family", "family_weight", "strategy", "min", "max", "description", "formula"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, m := range renderModel.Metrics {
			record := []string{
				m.Name,
				string(m.Family),
				strconv.FormatFloat(weights[m.Family], 'f', -1, 64),
				string(m.Strategy),
				strconv.FormatFloat(m.Min, 'f', -1, 64),
				strconv.FormatFloat(m.Max, 'f', -1, 64),
				m.Description,
				m.Formula,
			}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}
