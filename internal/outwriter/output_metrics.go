package outwriter

import (
	"fmt"
	"io"
	"strings"

	"github.com/huangsam/transcomplex/internal/contract"
	"github.com/huangsam/transcomplex/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteMetricsDefinitions displays the formal definitions of every family and sub-metric.
// This is a static display that does not score anything.
func WriteMetricsDefinitions(renderModel *schema.MetricsRenderModel, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSONMetrics(w, renderModel)
		}, "Wrote JSON")
	case schema.NDJSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeNDJSON(w, renderModel.Metrics)
		}, "Wrote NDJSON")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, renderModel)
		}, "Wrote YAML")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVMetrics(w, renderModel)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return fmt.Errorf("metrics definitions cannot be written as %s", cfg.Output)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMetricsText(w, renderModel, cfg)
		}, "Wrote text")
	}
}

// writeMetricsText displays metrics in human-readable text format.
func writeMetricsText(w io.Writer, renderModel *schema.MetricsRenderModel, cfg *contract.Config) error {
	fmtFloat := createFormatter(cfg.Precision)

	if _, err := fmt.Fprintf(w, "📚 %s\n%s\n\n", renderModel.Title, strings.Repeat("=", len(renderModel.Title)+3)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s\nFormula: %s\n\n", renderModel.Description, renderModel.Formula); err != nil {
		return err
	}

	for _, fam := range renderModel.Families {
		if _, err := fmt.Fprintf(w, "%s (weight %s): %s\n", familyColumn(fam.Name), fmtFloat(fam.Weight), fam.Purpose); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "   Metrics: %s\n\n", strings.Join(fam.Metrics, ", ")); err != nil {
			return err
		}
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Metric", "Family", "Strategy", "Min", "Max", "Description"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})
	var data [][]string
	for _, m := range renderModel.Metrics {
		data = append(data, []string{
			m.Name, string(m.Family), string(m.Strategy), fmtFloat(m.Min), fmtFloat(m.Max),
			contract.TruncateText(m.Description, getMaxExplainWidth(cfg)),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(w, "\n🏷️  Tiers"); err != nil {
		return err
	}
	for i, th := range renderModel.Thresholds {
		upper := "1.0"
		if i+1 < len(renderModel.Thresholds) {
			upper = fmtFloat(renderModel.Thresholds[i+1].LowerBound)
		}
		if _, err := fmt.Fprintf(w, "  %-10s [%s, %s)\n", schema.GetPlainLabel(th.Tier), fmtFloat(th.LowerBound), upper); err != nil {
			return err
		}
	}
	return nil
}
