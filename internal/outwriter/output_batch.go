package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/transcomplex/internal/contract"
	"github.com/huangsam/transcomplex/internal/parquet"
	"github.com/huangsam/transcomplex/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// errParquetNeedsFile is returned when parquet output would go to a terminal.
var errParquetNeedsFile = errors.New("parquet output requires --output-file")

// WriteBatchResults outputs batch results, dispatching based on the output format configured.
func WriteBatchResults(items []schema.BatchItem, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := createFormatter(cfg.Precision)

	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, schema.EnrichItems(items))
		}, "Wrote JSON")
	case schema.NDJSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeNDJSON(w, schema.EnrichItems(items))
		}, "Wrote NDJSON")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, schema.EnrichItems(items))
		}, "Wrote YAML")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeBatchCSV(w, items, fmtFloat)
		}, "Wrote CSV")
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return errParquetNeedsFile
		}
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.WriteRows(w, parquet.ConvertBatchItems(items))
		}, "Wrote Parquet")
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeBatchTable(w, items, cfg, fmtFloat, duration)
		}, "Wrote table")
	}
}

// writeBatchTable generates and writes the human-readable table.
func writeBatchTable(w io.Writer, items []schema.BatchItem, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)

	// 1. Define Headers
	headers := []string{"#", "Source", "Score", "Tier"}
	if cfg.Detail {
		for _, f := range schema.AllFamilies {
			headers = append(headers, familyColumn(f))
		}
	}
	if cfg.Explain {
		headers = append(headers, "Explain")
	}
	table.Header(headers)

	// 2. Configure Separators/Borders to match a minimal look
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	// 3. Populate Rows
	sourceWidth := getMaxTableSourceWidth(cfg)
	explainWidth := getMaxExplainWidth(cfg)
	var data [][]string
	failed := 0
	for _, it := range items {
		row := []string{
			strconv.Itoa(it.Index + 1),
			contract.TruncatePath(it.Source, sourceWidth),
		}
		if it.Failed() || it.Result == nil {
			failed++
			row = append(row, missingValue, errorLabel(cfg))
		} else {
			row = append(row, fmtFloat(it.Result.Overall), tierLabel(cfg, it.Result.Tier))
		}
		if cfg.Detail {
			for _, f := range schema.AllFamilies {
				row = append(row, familyValue(it.Result, f, fmtFloat))
			}
		}
		if cfg.Explain {
			explain := it.ErrorString()
			if explain == "" && it.Result != nil {
				explain = formatTopMetrics(it.Result, fmtFloat)
			}
			row = append(row, contract.TruncateText(explain, explainWidth))
		}
		data = append(data, row)
	}

	// 4. Render the table
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Showing %d texts (%d failed)\n", len(items), failed); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Scoring completed in %v with %d workers. Cache backend: %s\n", duration, cfg.Workers, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}

// batchCSVHeader returns the CSV columns: identity, overall, families, every sub-metric, error.
func batchCSVHeader(metricNames []string) []string {
	header := []string{"index", "source", schema.OverallKey, "tier"}
	for _, f := range schema.AllFamilies {
		header = append(header, string(f))
	}
	header = append(header, metricNames...)
	return append(header, "error")
}

// writeBatchCSV writes one flat record per text. Absent values are empty cells.
func writeBatchCSV(w io.Writer, items []schema.BatchItem, fmtFloat func(float64) string) error {
	metricNames := allMetricNames()
	return writeCSVWithHeader(w, batchCSVHeader(metricNames), func(cw *csv.Writer) error {
		for _, it := range items {
			rec := []string{strconv.Itoa(it.Index), it.Source}
			var families schema.FamilyScores
			var metrics schema.NormalizedMetricSet
			if r := it.Result; r != nil {
				rec = append(rec, fmtFloat(r.Overall), string(r.Tier))
				families, metrics = r.FamilyScores, r.Metrics
			} else {
				rec = append(rec, "", "")
			}
			for _, f := range schema.AllFamilies {
				rec = append(rec, cellValue(families, f, fmtFloat))
			}
			for _, name := range metricNames {
				rec = append(rec, cellValue(metrics, name, fmtFloat))
			}
			rec = append(rec, it.ErrorString())
			if err := cw.Write(rec); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}

// cellValue formats m[key], or an empty cell when the key is absent.
func cellValue[M ~map[K]float64, K comparable](m M, key K, fmtFloat func(float64) string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}
	return fmtFloat(v)
}
