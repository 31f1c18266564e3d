// Package core has core logic for scoring, batching, caching and checking texts.
package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/huangsam/transcomplex/core/algo"
	"github.com/huangsam/transcomplex/core/provider"
	"github.com/huangsam/transcomplex/internal/contract"
	"github.com/huangsam/transcomplex/internal/outwriter"
	"github.com/huangsam/transcomplex/schema"
)

// Progress receives updates while a batch runs. Increment may be called from
// several goroutines. Done is called once scoring ends, before any output.
type Progress interface {
	Increment()
	Done()
}

// ExecuteScore scores a single text and prints the result.
// It serves as the main entry point for the 'score' command.
func ExecuteScore(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, inputs []schema.TextInput) error {
	if len(inputs) != 1 {
		return fmt.Errorf("score expects exactly one text, got %d", len(inputs))
	}
	eng, err := NewEngine(cfg, mgr)
	if err != nil {
		return err
	}
	start := time.Now()
	item, err := GetScoreResult(ctx, cfg, eng, inputs[0])
	if err != nil {
		return err
	}
	return outwriter.WriteScoreResult(item, cfg, time.Since(start))
}

// ExecuteBatch scores every input and prints one row per text, failures included.
// It serves as the main entry point for the 'batch' command. progress may be nil.
func ExecuteBatch(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, inputs []schema.TextInput, progress Progress) error {
	eng, err := NewEngine(cfg, mgr)
	if err != nil {
		return err
	}
	start := time.Now()

	var onItem func(schema.BatchItem)
	if progress != nil {
		onItem = func(schema.BatchItem) { progress.Increment() }
	}
	items, err := GetBatchResults(ctx, cfg, eng, inputs, onItem)
	if progress != nil {
		progress.Done()
	}
	if err != nil {
		return err
	}
	return outwriter.WriteBatchResults(items, cfg, time.Since(start))
}

// GetBatchResults scores inputs on eng and applies cfg.Sort and cfg.ResultLimit.
// It is shared by the batch command, the MCP tools and the HTTP server.
func GetBatchResults(ctx context.Context, cfg *contract.Config, eng *Engine, inputs []schema.TextInput, onItem func(schema.BatchItem)) ([]schema.BatchItem, error) {
	items, err := runScoringCore(ctx, cfg, eng, inputs, onItem)
	if err != nil {
		return nil, err
	}
	if cfg.Sort {
		return algo.RankItems(items, cfg.ResultLimit), nil
	}
	if cfg.ResultLimit > 0 && len(items) > cfg.ResultLimit {
		items = items[:cfg.ResultLimit]
	}
	return items, nil
}

// GetScoreResult scores a single text. A text that cannot be scored is
// returned as an error.
func GetScoreResult(ctx context.Context, cfg *contract.Config, eng *Engine, input schema.TextInput) (schema.BatchItem, error) {
	items, err := runScoringCore(ctx, cfg, eng, []schema.TextInput{input}, nil)
	if err != nil {
		return schema.BatchItem{}, err
	}
	if items[0].Failed() {
		return items[0], items[0].Err
	}
	return items[0], nil
}

// ExecuteMetrics prints the sub-metric definitions and the active configuration.
func ExecuteMetrics(_ context.Context, cfg *contract.Config) error {
	scoring := cfg.Scoring
	if scoring == nil {
		scoring = algo.DefaultConfiguration()
	}
	return outwriter.WriteMetricsDefinitions(BuildMetricsModel(scoring), cfg)
}

// BuildScorer assembles the providers described by cfg and wraps them with the
// result cache of mgr. It also returns the fingerprint that identifies every
// input of the scoring pipeline.
func BuildScorer(cfg *contract.Config, mgr contract.CacheManager) (TextScorer, string, error) {
	lex, err := provider.LoadLexicon(cfg.LexiconFile)
	if err != nil {
		return nil, "", err
	}

	var emb provider.Embedder
	if cfg.Embedder.Enabled() {
		httpEmb, err := provider.NewHTTPEmbedder(provider.HTTPEmbedderConfig{
			URL:     cfg.Embedder.URL,
			Model:   cfg.Embedder.Model,
			APIKey:  cfg.Embedder.APIKey,
			RPS:     cfg.Embedder.RPS,
			Timeout: cfg.Embedder.Timeout,
			Retries: cfg.Embedder.Retries,
		})
		if err != nil {
			return nil, "", err
		}
		emb = httpEmb
	}

	set := provider.NewDefaultSet(lex, emb)
	if emb != nil {
		set.Translation = provider.NewGuarded(set.Translation, int64(cfg.Embedder.Concurrency))
	}

	fingerprint, err := ScoringFingerprint(cfg)
	if err != nil {
		return nil, "", err
	}

	scorer := NewScorer(set, cfg.Scoring)
	return NewCachedScorer(scorer, resultStoreOf(mgr), fingerprint), fingerprint, nil
}

// ScoringFingerprint hashes everything that can change a score: the engine
// configuration, the lexicon contents and the embedding model.
func ScoringFingerprint(cfg *contract.Config) (string, error) {
	scoring := cfg.Scoring
	if scoring == nil {
		scoring = algo.DefaultConfiguration()
	}

	h := sha256.New()
	h.Write([]byte(scoring.Fingerprint()))
	h.Write([]byte{0})
	if cfg.LexiconFile != "" {
		data, err := os.ReadFile(cfg.LexiconFile)
		if err != nil {
			return "", fmt.Errorf("failed to read lexicon file: %w", err)
		}
		h.Write(data)
	}
	h.Write([]byte{0})
	if cfg.Embedder.Enabled() {
		h.Write([]byte(cfg.Embedder.URL + "\x00" + cfg.Embedder.Model))
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// BuildMetricsModel describes every family and sub-metric under scoring.
func BuildMetricsModel(scoring *algo.Configuration) *schema.MetricsRenderModel {
	weights := scoring.Weights()
	norm := scoring.NormParams()

	model := &schema.MetricsRenderModel{
		Title:       "Translation Complexity Metrics",
		Description: "Each text gets sub-metric scores in [0,1], a mean per family, and a weighted overall score mapped to a tier.",
		Formula:     "overall = sum(w_f * mean(family_f)) / sum(w_f) over families with metrics and w_f > 0",
		Thresholds:  scoring.Thresholds(),
	}

	for _, f := range schema.AllFamilies {
		var names []string
		for name, family := range schema.MetricFamilies {
			if family == f {
				names = append(names, name)
			}
		}
		slices.Sort(names)

		model.Families = append(model.Families, schema.FamilyDefinition{
			Name:    f,
			Purpose: schema.FamilyPurposes[f],
			Weight:  weights[f],
			Metrics: names,
		})

		for _, name := range names {
			desc := schema.MetricDescriptions[name]
			p := norm[name]
			model.Metrics = append(model.Metrics, schema.MetricDefinition{
				Name:        name,
				Family:      f,
				Description: desc[0],
				Formula:     desc[1],
				Strategy:    p.Strategy,
				Min:         p.Min,
				Max:         p.Max,
			})
		}
	}
	return model
}
