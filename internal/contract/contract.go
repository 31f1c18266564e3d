// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"time"

	"github.com/huangsam/transcomplex/schema"
)

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetResultStore() CacheStore
	GetAnalysisStore() AnalysisStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Clear() error
	Close() error
}

// AnalysisStore defines the interface for tracking scoring runs and their per-text results.
type AnalysisStore interface {
	// BeginAnalysis creates a new scoring run and returns its unique ID
	BeginAnalysis(startTime time.Time, fingerprint string, configParams map[string]any) (int64, error)

	// EndAnalysis updates the scoring run with completion data
	EndAnalysis(runID int64, endTime time.Time, totalTexts, failedTexts int) error

	// RecordTextScore stores the outcome of scoring one text
	RecordTextScore(record schema.TextScoreRecord) error

	// GetStatus returns status information about the analysis store
	GetStatus() (schema.AnalysisStatus, error)

	// GetAllRuns returns every recorded scoring run, oldest first
	GetAllRuns() ([]schema.ScoringRunRecord, error)

	// GetAllTextScores returns every recorded text score, ordered by run and index
	GetAllTextScores() ([]schema.TextScoreRecord, error)

	// Clear removes all runs and text scores
	Clear() error

	// Close closes the underlying connection
	Close() error
}
