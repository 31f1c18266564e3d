// Package parquet exports scoring runs, text scores and batch results to
// Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/transcomplex/schema"
	"github.com/parquet-go/parquet-go"
)

// ScoringRun maps to the scoring_runs database table.
type ScoringRun struct {
	RunID             int64      `parquet:"run_id,snappy"`
	RunUUID           string     `parquet:"run_uuid,snappy"`
	StartTime         time.Time  `parquet:"start_time,snappy"`
	EndTime           *time.Time `parquet:"end_time,optional,snappy"`
	RunDurationMs     *int32     `parquet:"run_duration_ms,optional,snappy"`
	TotalTexts        int32      `parquet:"total_texts,snappy"`
	FailedTexts       int32      `parquet:"failed_texts,snappy"`
	ConfigFingerprint string     `parquet:"config_fingerprint,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// TextScore maps to the text_scores database table. Score columns are null
// for texts that failed.
type TextScore struct {
	RunID            int64     `parquet:"run_id,snappy"`
	TextIndex        int32     `parquet:"text_index,snappy"`
	Source           string    `parquet:"source,snappy"`
	TextHash         string    `parquet:"text_hash,snappy"`
	ScoredAt         time.Time `parquet:"scored_at,snappy"`
	Overall          *float64  `parquet:"overall,optional,snappy"`
	Tier             *string   `parquet:"tier,optional,snappy"`
	ReadabilityScore *float64  `parquet:"readability_score,optional,snappy"`
	LinguisticScore  *float64  `parquet:"linguistic_score,optional,snappy"`
	TranslationScore *float64  `parquet:"translation_score,optional,snappy"`
	MetricsJSON      *string   `parquet:"metrics_json,optional,snappy"`
	ErrorMessage     *string   `parquet:"error_message,optional,snappy"`
}

// BatchRow is one row of batch output in Parquet form.
type BatchRow struct {
	Index            int32    `parquet:"index,snappy"`
	Source           string   `parquet:"source,snappy"`
	Overall          *float64 `parquet:"overall_complexity,optional,snappy"`
	Tier             *string  `parquet:"tier,optional,snappy"`
	ReadabilityScore *float64 `parquet:"readability_score,optional,snappy"`
	LinguisticScore  *float64 `parquet:"linguistic_score,optional,snappy"`
	TranslationScore *float64 `parquet:"translation_score,optional,snappy"`

	// MetricsJSON holds every normalized sub-metric by name
	MetricsJSON *string `parquet:"metrics_json,optional,snappy"`

	Error *string `parquet:"error,optional,snappy"`
}

// WriteRows writes rows to w as a single Parquet file.
func WriteRows[T any](w io.Writer, rows []T) error {
	// The schema is derived from the struct tags of T
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// writeFile creates outputPath and writes rows to it.
func writeFile[T any](rows []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := WriteRows(file, rows); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// WriteScoringRunsParquet writes scoring runs to a Parquet file.
func WriteScoringRunsParquet(data []ScoringRun, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteTextScoresParquet writes text scores to a Parquet file.
func WriteTextScoresParquet(data []TextScore, outputPath string) error {
	return writeFile(data, outputPath)
}

// ConvertScoringRunRecords converts store records for Parquet export.
func ConvertScoringRunRecords(records []schema.ScoringRunRecord) []ScoringRun {
	out := make([]ScoringRun, len(records))
	for i, r := range records {
		out[i] = ScoringRun{
			RunID:             r.RunID,
			RunUUID:           r.RunUUID,
			StartTime:         r.StartTime,
			EndTime:           r.EndTime,
			RunDurationMs:     r.RunDurationMs,
			TotalTexts:        r.TotalTexts,
			FailedTexts:       r.FailedTexts,
			ConfigFingerprint: r.ConfigFingerprint,
			ConfigParams:      r.ConfigParams,
		}
	}
	return out
}

// ConvertTextScoreRecords converts store records for Parquet export.
func ConvertTextScoreRecords(records []schema.TextScoreRecord) []TextScore {
	out := make([]TextScore, len(records))
	for i, r := range records {
		out[i] = TextScore{
			RunID:            r.RunID,
			TextIndex:        r.TextIndex,
			Source:           r.Source,
			TextHash:         r.TextHash,
			ScoredAt:         r.ScoredAt,
			Overall:          r.Overall,
			Tier:             r.Tier,
			ReadabilityScore: r.ReadabilityScore,
			LinguisticScore:  r.LinguisticScore,
			TranslationScore: r.TranslationScore,
			MetricsJSON:      r.MetricsJSON,
			ErrorMessage:     r.ErrorMessage,
		}
	}
	return out
}

// ConvertBatchItems converts batch results for Parquet output.
func ConvertBatchItems(items []schema.BatchItem) []BatchRow {
	out := make([]BatchRow, len(items))
	for i, it := range items {
		row := BatchRow{Index: int32(it.Index), Source: it.Source}
		if it.Failed() {
			msg := it.ErrorString()
			row.Error = &msg
		} else if r := it.Result; r != nil {
			overall := r.Overall
			tier := string(r.Tier)
			row.Overall = &overall
			row.Tier = &tier
			row.ReadabilityScore = familyScore(r, schema.ReadabilityFamily)
			row.LinguisticScore = familyScore(r, schema.LinguisticFamily)
			row.TranslationScore = familyScore(r, schema.TranslationFamily)
			if data, err := json.Marshal(r.Metrics); err == nil {
				metrics := string(data)
				row.MetricsJSON = &metrics
			}
		}
		out[i] = row
	}
	return out
}

func familyScore(r *schema.ComplexityResult, f schema.Family) *float64 {
	v, ok := r.FamilyScores[f]
	if !ok {
		return nil
	}
	return &v
}
