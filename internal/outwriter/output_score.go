package outwriter

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/huangsam/transcomplex/core/algo"
	"github.com/huangsam/transcomplex/internal/contract"
	"github.com/huangsam/transcomplex/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteScoreResult outputs a single scored text, dispatching based on the output format configured.
// Flat formats (csv, parquet) share the batch layout with a single row.
func WriteScoreResult(item schema.BatchItem, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, schema.EnrichItems([]schema.BatchItem{item})[0])
		}, "Wrote JSON")
	case schema.NDJSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeNDJSON(w, schema.EnrichItems([]schema.BatchItem{item}))
		}, "Wrote NDJSON")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, schema.EnrichItems([]schema.BatchItem{item})[0])
		}, "Wrote YAML")
	case schema.CSVOut, schema.ParquetOut:
		return WriteBatchResults([]schema.BatchItem{item}, cfg, duration)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeScoreText(w, item, cfg, duration)
		}, "Wrote text")
	}
}

// writeScoreText prints the overall score, the family breakdown and every sub-metric.
func writeScoreText(w io.Writer, item schema.BatchItem, cfg *contract.Config, duration time.Duration) error {
	r := item.Result
	if r == nil {
		return fmt.Errorf("no result for %s: %s", item.Source, item.ErrorString())
	}
	fmtFloat := createFormatter(cfg.Precision)
	scoring := cfg.Scoring
	if scoring == nil {
		scoring = algo.DefaultConfiguration()
	}

	if _, err := fmt.Fprintf(w, "Source: %s\n", item.Source); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Overall complexity: %s (%s)\n\n", fmtFloat(r.Overall), tierLabel(cfg, r.Tier)); err != nil {
		return err
	}

	if err := writeFamilyTable(w, r, scoring.Weights(), fmtFloat); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	if err := writeMetricTable(w, r, cfg.Explain, fmtFloat); err != nil {
		return err
	}

	if cfg.Explain && len(r.Skipped) > 0 {
		if _, err := fmt.Fprintln(w, "Skipped families:"); err != nil {
			return err
		}
		for _, f := range slices.Sorted(maps.Keys(r.Skipped)) {
			if _, err := fmt.Fprintf(w, "  %s: %s\n", f, r.Skipped[f]); err != nil {
				return err
			}
		}
	}

	_, err := fmt.Fprintf(w, "Scored in %v. Cache backend: %s\n", duration, cfg.CacheBackend)
	return err
}

// writeFamilyTable prints one row per family with its mean and weight.
func writeFamilyTable(w io.Writer, r *schema.ComplexityResult, weights schema.FamilyWeights, fmtFloat func(float64) string) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Family", "Score", "Weight"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, f := range schema.AllFamilies {
		data = append(data, []string{familyColumn(f), familyValue(r, f, fmtFloat), fmtFloat(weights[f])})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeMetricTable prints every normalized sub-metric, and its raw value when explain is set.
func writeMetricTable(w io.Writer, r *schema.ComplexityResult, explain bool, fmtFloat func(float64) string) error {
	table := tablewriter.NewWriter(w)
	headers := []string{"Metric", "Family", "Score"}
	if explain {
		headers = append(headers, "Raw")
	}
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, name := range r.MetricNames() {
		row := []string{name, string(schema.MetricFamilies[name]), fmtFloat(r.Metrics[name])}
		if explain {
			row = append(row, cellValue(r.Raw, name, fmtFloat))
		}
		data = append(data, row)
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
