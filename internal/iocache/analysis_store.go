package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/huangsam/transcomplex/internal/contract"
	"github.com/huangsam/transcomplex/schema"
)

// Table names for analysis tracking.
const (
	scoringRunsTable = "scoring_runs"
	textScoresTable  = "text_scores"
)

// analysisTables lists the analysis tables in creation order.
var analysisTables = []string{scoringRunsTable, textScoresTable}

// AnalysisStoreImpl implements the AnalysisStore interface.
type AnalysisStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
	sb      sq.StatementBuilderType
}

var _ contract.AnalysisStore = &AnalysisStoreImpl{} // Compile-time check

// NewAnalysisStore creates a new AnalysisStore with the specified backend.
func NewAnalysisStore(backend schema.DatabaseBackend, connStr string) (contract.AnalysisStore, error) {
	switch backend {
	case schema.NoneBackend:
		// Return a no-op store for disabled tracking
		return &AnalysisStoreImpl{backend: backend}, nil
	case schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend:
	default:
		return nil, fmt.Errorf("unsupported analysis backend: %s. Must be sqlite, mysql, postgresql, or none", backend)
	}

	db, err := openSQL(backend, connStr, GetAnalysisDBFilePath())
	if err != nil {
		return nil, err
	}

	// Create the table schemas
	if err := ensureAnalysisSchema(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create analysis tables: %w", err)
	}

	return &AnalysisStoreImpl{db: db, backend: backend, sb: statementBuilder(backend)}, nil
}

// disabled reports whether the store is a no-op.
func (as *AnalysisStoreImpl) disabled() bool {
	return as.backend == schema.NoneBackend || as.db == nil
}

// table returns a quoted table name for the store's backend.
func (as *AnalysisStoreImpl) table(name string) string {
	return quoteTableName(name, as.backend)
}

// BeginAnalysis creates a new scoring run and returns its ID.
func (as *AnalysisStoreImpl) BeginAnalysis(startTime time.Time, fingerprint string, configParams map[string]any) (int64, error) {
	// Skip for NoneBackend
	if as.disabled() {
		return 0, nil
	}

	// Serialize config params to JSON
	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	insert := as.sb.Insert(as.table(scoringRunsTable)).
		Columns("run_uuid", "start_time", "config_fingerprint", "config_params").
		Values(uuid.NewString(), formatTime(startTime, as.backend), fingerprint, string(configJSON))

	var runID int64
	if as.backend == schema.PostgreSQLBackend {
		query, args, err := insert.Suffix("RETURNING run_id").ToSql()
		if err != nil {
			return 0, err
		}
		err = as.db.QueryRow(query, args...).Scan(&runID)
		if err != nil {
			return 0, fmt.Errorf("failed to insert scoring run: %w", err)
		}
		return runID, nil
	}

	query, args, err := insert.ToSql()
	if err != nil {
		return 0, err
	}
	result, err := as.db.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to insert scoring run: %w", err)
	}
	runID, err = result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read scoring run id: %w", err)
	}
	return runID, nil
}

// EndAnalysis updates the scoring run with completion data.
func (as *AnalysisStoreImpl) EndAnalysis(runID int64, endTime time.Time, totalTexts, failedTexts int) error {
	// Skip for NoneBackend
	if as.disabled() {
		return nil
	}

	// First, get the start_time to calculate duration
	query, args, err := as.sb.Select("start_time").From(as.table(scoringRunsTable)).
		Where(sq.Eq{"run_id": runID}).ToSql()
	if err != nil {
		return err
	}
	var start sqlTime
	if err := as.db.QueryRow(query, args...).Scan(&start); err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}

	query, args, err = as.sb.Update(as.table(scoringRunsTable)).
		Set("end_time", formatTime(endTime, as.backend)).
		Set("run_duration_ms", endTime.Sub(start.Time).Milliseconds()).
		Set("total_texts", totalTexts).
		Set("failed_texts", failedTexts).
		Where(sq.Eq{"run_id": runID}).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := as.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to update scoring run: %w", err)
	}
	return nil
}

// RecordTextScore stores the outcome of one text in a run.
func (as *AnalysisStoreImpl) RecordTextScore(record schema.TextScoreRecord) error {
	// Skip for NoneBackend
	if as.disabled() {
		return nil
	}

	query, args, err := as.sb.Insert(as.table(textScoresTable)).
		Columns("run_id", "text_index", "source", "text_hash", "scored_at", "overall", "tier",
			"readability_score", "linguistic_score", "translation_score", "metrics_json", "error_message").
		Values(record.RunID, record.TextIndex, record.Source, record.TextHash, formatTime(record.ScoredAt, as.backend),
			record.Overall, record.Tier, record.ReadabilityScore, record.LinguisticScore, record.TranslationScore,
			record.MetricsJSON, record.ErrorMessage).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := as.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to insert text score: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (as *AnalysisStoreImpl) Close() error {
	if as.db != nil {
		return as.db.Close()
	}
	return nil
}

// Clear deletes every run and text score but keeps the tables.
func (as *AnalysisStoreImpl) Clear() error {
	if as.disabled() {
		return nil
	}
	for _, table := range []string{textScoresTable, scoringRunsTable} {
		query, args, err := as.sb.Delete(as.table(table)).ToSql()
		if err != nil {
			return err
		}
		if _, err := as.db.Exec(query, args...); err != nil {
			return fmt.Errorf("failed to clear table %s: %w", table, err)
		}
	}
	return nil
}

// GetStatus returns status information about the analysis store.
func (as *AnalysisStoreImpl) GetStatus() (schema.AnalysisStatus, error) {
	status := schema.AnalysisStatus{
		Backend:    string(as.backend),
		Connected:  as.db != nil,
		TableSizes: make(map[string]int64),
	}

	if as.disabled() {
		return status, nil
	}

	// Get total runs
	query, args, err := as.sb.Select("COUNT(*)").From(as.table(scoringRunsTable)).ToSql()
	if err != nil {
		return status, err
	}
	if err := as.db.QueryRow(query, args...).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		// Get last run info
		var last, oldest sqlTime
		query, args, err = as.sb.Select("run_id", "start_time").From(as.table(scoringRunsTable)).
			OrderBy("run_id DESC").Limit(1).ToSql()
		if err != nil {
			return status, err
		}
		if err := as.db.QueryRow(query, args...).Scan(&status.LastRunID, &last); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		status.LastRunTime = last.Time

		// Get oldest run time
		query, args, err = as.sb.Select("start_time").From(as.table(scoringRunsTable)).
			OrderBy("run_id ASC").Limit(1).ToSql()
		if err != nil {
			return status, err
		}
		if err := as.db.QueryRow(query, args...).Scan(&oldest); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.OldestRunTime = oldest.Time

		// Get total texts scored
		query, args, err = as.sb.Select("COALESCE(SUM(total_texts), 0)").From(as.table(scoringRunsTable)).ToSql()
		if err != nil {
			return status, err
		}
		if err := as.db.QueryRow(query, args...).Scan(&status.TotalTextsScored); err != nil {
			return status, fmt.Errorf("failed to get total texts scored: %w", err)
		}
	}

	// Get table sizes
	for _, table := range analysisTables {
		query, args, err := as.sb.Select("COUNT(*)").From(as.table(table)).ToSql()
		if err != nil {
			return status, err
		}
		var count int64
		if err := as.db.QueryRow(query, args...).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// GetAllRuns retrieves all scoring runs from the store.
func (as *AnalysisStoreImpl) GetAllRuns() ([]schema.ScoringRunRecord, error) {
	// Skip for NoneBackend
	if as.disabled() {
		return nil, nil
	}

	query, args, err := as.sb.Select("run_id", "run_uuid", "start_time", "end_time", "run_duration_ms",
		"total_texts", "failed_texts", "config_fingerprint", "config_params").
		From(as.table(scoringRunsTable)).OrderBy("run_id").ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := as.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query scoring runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ScoringRunRecord
	for rows.Next() {
		var record schema.ScoringRunRecord
		var start, end sqlTime
		if err := rows.Scan(&record.RunID, &record.RunUUID, &start, &end, &record.RunDurationMs,
			&record.TotalTexts, &record.FailedTexts, &record.ConfigFingerprint, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan scoring run: %w", err)
		}
		record.StartTime = start.Time
		record.EndTime = end.ptr()
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scoring runs: %w", err)
	}
	return results, nil
}

// GetAllTextScores retrieves all text scores from the store.
func (as *AnalysisStoreImpl) GetAllTextScores() ([]schema.TextScoreRecord, error) {
	// Skip for NoneBackend
	if as.disabled() {
		return nil, nil
	}

	query, args, err := as.sb.Select("run_id", "text_index", "source", "text_hash", "scored_at", "overall", "tier",
		"readability_score", "linguistic_score", "translation_score", "metrics_json", "error_message").
		From(as.table(textScoresTable)).OrderBy("run_id", "text_index").ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := as.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query text scores: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.TextScoreRecord
	for rows.Next() {
		var record schema.TextScoreRecord
		var scoredAt sqlTime
		if err := rows.Scan(&record.RunID, &record.TextIndex, &record.Source, &record.TextHash, &scoredAt,
			&record.Overall, &record.Tier, &record.ReadabilityScore, &record.LinguisticScore,
			&record.TranslationScore, &record.MetricsJSON, &record.ErrorMessage); err != nil {
			return nil, fmt.Errorf("failed to scan text score: %w", err)
		}
		record.ScoredAt = scoredAt.Time
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating text scores: %w", err)
	}
	return results, nil
}
