package iocache

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/huangsam/transcomplex/internal/contract"
	"github.com/huangsam/transcomplex/internal/parquet"
)

// Export file names written into the export directory.
const (
	runsExportFile       = "runs.parquet"
	textScoresExportFile = "text_scores.parquet"
)

// ExecuteAnalysisExport writes runs.parquet and text_scores.parquet into outputDir.
func ExecuteAnalysisExport(store contract.AnalysisStore, outputDir string) error {
	return exportAnalysis(os.Stdout, store, outputDir)
}

func exportAnalysis(w io.Writer, store contract.AnalysisStore, outputDir string) error {
	if outputDir == "" {
		return errors.New("--output-file is required for export command and names the target directory")
	}
	if store == nil {
		return errors.New("analysis tracking is disabled; set --analysis-backend to export runs")
	}

	// Check if there's any data to export
	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get analysis status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no analysis data found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total scoring runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total text records: %d\n", status.TableSizes[textScoresTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve scoring runs: %w", err)
	}
	scores, err := store.GetAllTextScores()
	if err != nil {
		return fmt.Errorf("failed to retrieve text scores: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	runsFile := filepath.Join(outputDir, runsExportFile)
	if err := parquet.WriteScoringRunsParquet(parquet.ConvertScoringRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write scoring runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d scoring runs to: %s\n", len(runs), runsFile)

	scoresFile := filepath.Join(outputDir, textScoresExportFile)
	if err := parquet.WriteTextScoresParquet(parquet.ConvertTextScoreRecords(scores), scoresFile); err != nil {
		return fmt.Errorf("failed to write text scores: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d text score records to: %s\n", len(scores), scoresFile)

	_, _ = fmt.Fprintln(w, "\nExport complete! The Parquet files can be used with:")
	_, _ = fmt.Fprintln(w, "  - DuckDB")
	_, _ = fmt.Fprintln(w, "  - Pandas (via pyarrow)")
	_, _ = fmt.Fprintln(w, "  - Apache Spark")
	return nil
}
