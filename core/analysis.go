package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/transcomplex/internal/contract"
	"github.com/huangsam/transcomplex/schema"
)

// runScoringCore runs the batch on the engine's scorer and tracks the run in the
// analysis store when one is configured. onItem may be nil.
func runScoringCore(ctx context.Context, cfg *contract.Config, eng *Engine, inputs []schema.TextInput, onItem func(schema.BatchItem)) ([]schema.BatchItem, error) {
	mgr := eng.mgr
	var err error

	// Add cache manager to context for use in worker goroutines
	ctx = contextWithCacheManager(ctx, mgr)

	// --- 0. Begin Analysis Tracking (if configured) ---
	var runID int64
	analysisStore := analysisStoreOf(mgr)
	if analysisStore != nil {
		runID, err = analysisStore.BeginAnalysis(time.Now(), eng.fingerprint, runConfigParams(cfg, len(inputs)))
		if err != nil {
			contract.LogWarn("Analysis tracking initialization failed", err)
		} else if runID > 0 {
			ctx = withRunID(ctx, runID)
		}
	}

	// --- 1. Scoring Phase ---
	opts := BatchOptions{
		Workers:     cfg.Workers,
		TextTimeout: cfg.TextTimeout,
		OnItem: func(item schema.BatchItem) {
			recordTextScore(ctx, item, inputs[item.Index].Text)
			if onItem != nil {
				onItem(item)
			}
		},
	}
	items, err := RunBatch(ctx, eng.scorer, inputs, opts)
	if err != nil {
		return nil, err
	}

	// --- 2. End Analysis Tracking ---
	if analysisStore != nil && runID > 0 {
		if err := analysisStore.EndAnalysis(runID, time.Now(), len(items), countFailed(items)); err != nil {
			contract.LogWarn("Failed to finalize analysis tracking", err)
		}
	}

	return items, nil
}

// runConfigParams captures the settings that explain a run's results.
func runConfigParams(cfg *contract.Config, totalTexts int) map[string]any {
	params := map[string]any{
		"workers":      cfg.Workers,
		"split":        string(cfg.Split),
		"text_timeout": cfg.TextTimeout.String(),
		"total_texts":  totalTexts,
		"lexicon_file": cfg.LexiconFile,
	}
	if cfg.Scoring != nil {
		params["weights"] = cfg.Scoring.Weights()
		params["thresholds"] = cfg.Scoring.Thresholds()
	}
	if cfg.Embedder.Enabled() {
		params["embedder_model"] = cfg.Embedder.Model
	}
	return params
}

// recordTextScore stores one batch item in the analysis store of the run in ctx.
func recordTextScore(ctx context.Context, item schema.BatchItem, text string) {
	runID, ok := getRunID(ctx)
	if !ok || runID <= 0 {
		return
	}
	store := analysisStoreOf(cacheManagerFromContext(ctx))
	if store == nil {
		return
	}

	sum := sha256.Sum256([]byte(text))
	record := schema.TextScoreRecord{
		RunID:     runID,
		TextIndex: int32(item.Index),
		Source:    item.Source,
		TextHash:  hex.EncodeToString(sum[:]),
		ScoredAt:  time.Now(),
	}

	if item.Failed() {
		msg := item.ErrorString()
		record.ErrorMessage = &msg
	} else {
		r := item.Result
		overall := r.Overall
		tier := string(r.Tier)
		record.Overall = &overall
		record.Tier = &tier
		record.ReadabilityScore = familyScorePtr(r, schema.ReadabilityFamily)
		record.LinguisticScore = familyScorePtr(r, schema.LinguisticFamily)
		record.TranslationScore = familyScorePtr(r, schema.TranslationFamily)
		if data, err := json.Marshal(r.Flatten()); err == nil {
			metrics := string(data)
			record.MetricsJSON = &metrics
		}
	}

	if err := store.RecordTextScore(record); err != nil {
		logTrackingError("RecordTextScore", item.Source, err)
	}
}

// familyScorePtr returns the family score, or nil when the family was absent.
func familyScorePtr(r *schema.ComplexityResult, f schema.Family) *float64 {
	v, ok := r.FamilyScores[f]
	if !ok {
		return nil
	}
	return &v
}

// countFailed returns the number of items that carry an error.
func countFailed(items []schema.BatchItem) int {
	n := 0
	for _, it := range items {
		if it.Failed() {
			n++
		}
	}
	return n
}

// analysisStoreOf returns the analysis store of mgr, tolerating a nil manager.
func analysisStoreOf(mgr contract.CacheManager) contract.AnalysisStore {
	if mgr == nil {
		return nil
	}
	return mgr.GetAnalysisStore()
}

// resultStoreOf returns the result cache of mgr, tolerating a nil manager.
func resultStoreOf(mgr contract.CacheManager) contract.CacheStore {
	if mgr == nil {
		return nil
	}
	return mgr.GetResultStore()
}

// logTrackingError logs database tracking errors to stderr without disrupting scoring.
func logTrackingError(operation, source string, err error) {
	contract.LogWarn(fmt.Sprintf("Analysis tracking failed for %s on %s", operation, source), err)
}
