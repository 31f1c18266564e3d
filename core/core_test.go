package core

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/huangsam/transcomplex/core/algo"
	"github.com/huangsam/transcomplex/internal/contract"
	"github.com/huangsam/transcomplex/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMetricsModel(t *testing.T) {
	model := BuildMetricsModel(algo.DefaultConfiguration())
	require.Len(t, model.Families, len(schema.AllFamilies))
	assert.Len(t, model.Metrics, len(schema.MetricFamilies))
	assert.NotEmpty(t, model.Formula)
	assert.Equal(t, schema.GetDefaultThresholds(), model.Thresholds)

	for i, fam := range model.Families {
		assert.Equal(t, schema.AllFamilies[i], fam.Name)
		assert.NotEmpty(t, fam.Metrics)
		assert.IsNonDecreasing(t, fam.Metrics)
	}
	for _, m := range model.Metrics {
		assert.Equal(t, schema.MetricFamilies[m.Name], m.Family)
		assert.NotEmpty(t, m.Description, m.Name)
		assert.NotEmpty(t, m.Strategy, m.Name)
	}
}

func TestScoringFingerprint(t *testing.T) {
	base := testConfig()
	fp, err := ScoringFingerprint(base)
	require.NoError(t, err)
	assert.Len(t, fp, 64)

	again, err := ScoringFingerprint(testConfig())
	require.NoError(t, err)
	assert.Equal(t, fp, again)

	withEmbedder := testConfig()
	withEmbedder.Embedder = contract.EmbedderConfig{URL: "http://localhost/embed", Model: "m"}
	fpEmb, err := ScoringFingerprint(withEmbedder)
	require.NoError(t, err)
	assert.NotEqual(t, fp, fpEmb)

	custom, err := algo.NewConfiguration(algo.Options{
		Weights: schema.FamilyWeights{schema.ReadabilityFamily: 1},
	})
	require.NoError(t, err)
	withWeights := testConfig()
	withWeights.Scoring = custom
	fpW, err := ScoringFingerprint(withWeights)
	require.NoError(t, err)
	assert.NotEqual(t, fp, fpW)

	lexicon := filepath.Join(t.TempDir(), "lexicon.toml")
	require.NoError(t, os.WriteFile(lexicon, []byte(`common_words = ["the"]`), 0o644))
	withLexicon := testConfig()
	withLexicon.LexiconFile = lexicon
	fpL, err := ScoringFingerprint(withLexicon)
	require.NoError(t, err)
	assert.NotEqual(t, fp, fpL)

	withLexicon.LexiconFile = filepath.Join(t.TempDir(), "missing.toml")
	_, err = ScoringFingerprint(withLexicon)
	assert.Error(t, err)
}

func TestBuildScorer(t *testing.T) {
	scorer, fp, err := BuildScorer(testConfig(), nil)
	require.NoError(t, err)
	assert.NotEmpty(t, fp)
	_, isScorer := scorer.(*Scorer)
	assert.True(t, isScorer, "no result store means no cache wrapper")

	cfg := testConfig()
	cfg.Embedder = contract.EmbedderConfig{URL: "http://localhost:1/embed", Model: "m", Concurrency: 1}
	withEmb, fpEmb, err := BuildScorer(cfg, nil)
	require.NoError(t, err)
	assert.NotNil(t, withEmb)
	assert.NotEqual(t, fp, fpEmb)

	cfg = testConfig()
	cfg.LexiconFile = filepath.Join(t.TempDir(), "missing.toml")
	_, _, err = BuildScorer(cfg, nil)
	assert.Error(t, err)
}

type countingProgress struct {
	incs atomic.Int32
	done atomic.Int32
}

func (p *countingProgress) Increment() { p.incs.Add(1) }
func (p *countingProgress) Done()      { p.done.Add(1) }

func TestExecuteBatchReportsProgress(t *testing.T) {
	cfg := testConfig()
	cfg.Output = schema.JSONOut
	cfg.OutputFile = filepath.Join(t.TempDir(), "batch.json")

	inputs := []schema.TextInput{
		{Source: "a", Text: "The cat sat on the mat. It was warm. The sun was out."},
		{Source: "b", Text: ""},
		{Source: "c", Text: "Dogs bark at night. Owls hoot in the trees. Nobody sleeps."},
	}
	progress := &countingProgress{}
	require.NoError(t, ExecuteBatch(context.Background(), cfg, nil, inputs, progress))
	assert.EqualValues(t, 3, progress.incs.Load())
	assert.EqualValues(t, 1, progress.done.Load())

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	var items []schema.EnrichedBatchItem
	require.NoError(t, json.Unmarshal(data, &items))
	require.Len(t, items, 3)
	assert.Equal(t, "b", items[1].Source)
	assert.NotEmpty(t, items[1].Error)
}

func TestGetBatchResultsSortAndLimit(t *testing.T) {
	inputs := []schema.TextInput{
		{Source: "empty", Text: ""},
		{Source: "simple", Text: "The cat sat. The dog ran. The sun set."},
		{Source: "dense", Text: "Notwithstanding jurisdictional ambiguities, the arbitration committee's preliminary determination substantially reconfigured contractual obligations. Subsequently, stakeholders contemplated comprehensive institutional restructuring."},
	}

	t.Run("limit without sort keeps input order", func(t *testing.T) {
		cfg := testConfig()
		cfg.ResultLimit = 2
		items, err := GetBatchResults(context.Background(), cfg, newTestEngine(t, cfg, nil), inputs, nil)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "empty", items[0].Source)
		assert.Equal(t, "simple", items[1].Source)
	})

	t.Run("sort ranks failures last", func(t *testing.T) {
		cfg := testConfig()
		cfg.Sort = true
		items, err := GetBatchResults(context.Background(), cfg, newTestEngine(t, cfg, nil), inputs, nil)
		require.NoError(t, err)
		require.Len(t, items, 3)
		assert.Equal(t, "dense", items[0].Source)
		assert.Equal(t, "simple", items[1].Source)
		assert.True(t, items[2].Failed())
	})
}

func TestGetScoreResultReturnsItemError(t *testing.T) {
	item, err := GetScoreResult(context.Background(), testConfig(), newTestEngine(t, testConfig(), nil), schema.TextInput{Source: "blank", Text: "  "})
	require.Error(t, err)
	assert.True(t, item.Failed())
	assert.Equal(t, "blank", item.Source)
}

func TestEngineSharesEmbedderAcrossRequests(t *testing.T) {
	var hits, inFlight, peak atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"embedding":[3,4]}]}`))
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.Embedder = contract.EmbedderConfig{URL: srv.URL, Model: "m", RPS: 20, Concurrency: 1}
	eng := newTestEngine(t, cfg, nil)

	texts := []string{
		"The cat sat on the mat. It was warm.",
		"Dogs bark at night. Owls hoot in the trees.",
		"Rain fell all morning. The streets were empty.",
		"She opened the window. Cold air rushed in.",
	}

	start := time.Now()
	var wg sync.WaitGroup
	for i, text := range texts {
		wg.Go(func() {
			item, err := GetScoreResult(context.Background(), cfg.Clone(), eng, schema.TextInput{Source: strconv.Itoa(i), Text: text})
			if assert.NoError(t, err) {
				assert.Contains(t, item.Result.Raw, schema.SemanticComplexity)
			}
		})
	}
	wg.Wait()

	assert.EqualValues(t, len(texts), hits.Load())
	assert.EqualValues(t, 1, peak.Load(), "the concurrency cap spans requests")
	// A burst of one at 20 rps spaces the last call at least 150ms after the first
	assert.GreaterOrEqual(t, time.Since(start), 140*time.Millisecond)

	// Repeated texts are served from the shared embedding memo
	_, err := GetScoreResult(context.Background(), cfg.Clone(), eng, schema.TextInput{Source: "again", Text: texts[0]})
	require.NoError(t, err)
	assert.EqualValues(t, len(texts), hits.Load())
}
