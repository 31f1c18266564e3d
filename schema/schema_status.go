package schema

import "time"

// CacheStatus represents the status of the cache store.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// AnalysisStatus represents the status of the analysis store.
type AnalysisStatus struct {
	Backend          string           `json:"backend"`
	Connected        bool             `json:"connected"`
	TotalRuns        int              `json:"total_runs"`
	LastRunID        int64            `json:"last_run_id"`
	LastRunTime      time.Time        `json:"last_run_time"`
	OldestRunTime    time.Time        `json:"oldest_run_time"`
	TotalTextsScored int              `json:"total_texts_scored"`
	TableSizes       map[string]int64 `json:"table_sizes"`
}

// ScoringRunRecord represents a row from the scoring_runs table.
type ScoringRunRecord struct {
	RunID             int64
	RunUUID           string
	StartTime         time.Time
	EndTime           *time.Time
	RunDurationMs     *int32
	TotalTexts        int32
	FailedTexts       int32
	ConfigFingerprint string
	ConfigParams      *string
}

// TextScoreRecord represents a row from the text_scores table.
type TextScoreRecord struct {
	RunID            int64
	TextIndex        int32
	Source           string
	TextHash         string
	ScoredAt         time.Time
	Overall          *float64
	Tier             *string
	ReadabilityScore *float64
	LinguisticScore  *float64
	TranslationScore *float64
	MetricsJSON      *string
	ErrorMessage     *string
}
