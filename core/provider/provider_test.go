package provider

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/huangsam/transcomplex/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	simpleText  = "The cat sat on the mat. It was a sunny day."
	complexText = "The quantum mechanical properties of subatomic particles exhibit non-deterministic behavior, " +
		"which fundamentally challenges our classical understanding of causality. Although researchers " +
		"have proposed numerous interpretations, none has achieved consensus. Consequently, the " +
		"epistemological implications remain contested."
	idiomText = "Finishing the report was a piece of cake. Then she let the cat out of the bag."
)

func TestReadability(t *testing.T) {
	p := NewReadability()
	assert.Equal(t, schema.ReadabilityFamily, p.Family())

	t.Run("short text skips smog", func(t *testing.T) {
		m, err := p.Compute(context.Background(), simpleText)
		require.NoError(t, err)
		assert.Contains(t, m, schema.FleschKincaid)
		assert.Contains(t, m, schema.FleschReadingEase)
		assert.Contains(t, m, schema.ColemanLiau)
		assert.Contains(t, m, schema.GunningFog)
		assert.NotContains(t, m, schema.Smog)
		assert.InDelta(t, 0.39*11.0/2+11.8*12.0/11-15.59, m[schema.FleschKincaid], 1e-9)
	})

	t.Run("complex text grades higher", func(t *testing.T) {
		simple, err := p.Compute(context.Background(), simpleText)
		require.NoError(t, err)
		hard, err := p.Compute(context.Background(), complexText)
		require.NoError(t, err)
		assert.Contains(t, hard, schema.Smog)
		assert.Greater(t, hard[schema.FleschKincaid], simple[schema.FleschKincaid])
		assert.Less(t, hard[schema.FleschReadingEase], simple[schema.FleschReadingEase])
	})

	t.Run("empty text", func(t *testing.T) {
		_, err := p.Compute(context.Background(), "")
		assert.ErrorIs(t, err, ErrEmptyText)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := p.Compute(ctx, simpleText)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestLinguistic(t *testing.T) {
	p := NewLinguistic(DefaultLexicon())
	assert.Equal(t, schema.LinguisticFamily, p.Family())

	m, err := p.Compute(context.Background(), simpleText)
	require.NoError(t, err)
	assert.InDelta(t, 5.5, m[schema.AvgSentenceLength], 1e-9)
	// "the" appears twice among 11 words.
	assert.InDelta(t, 10.0/11.0, m[schema.LexicalDiversity], 1e-9)
	assert.InDelta(t, 1.0, m[schema.SyntacticComplexity], 1e-9)

	hard, err := p.Compute(context.Background(), complexText)
	require.NoError(t, err)
	assert.Greater(t, hard[schema.SyntacticComplexity], m[schema.SyntacticComplexity])
	assert.Greater(t, hard[schema.VocabularyRarity], m[schema.VocabularyRarity])
	assert.LessOrEqual(t, hard[schema.VocabularyRarity], 1.0)
}

func TestTranslation(t *testing.T) {
	p := NewTranslation(DefaultLexicon(), nil)
	assert.Equal(t, schema.TranslationFamily, p.Family())

	t.Run("idioms over full span", func(t *testing.T) {
		m, err := p.Compute(context.Background(), idiomText)
		require.NoError(t, err)
		doc, err := analyze(idiomText)
		require.NoError(t, err)
		assert.InDelta(t, 3*2/doc.wordCount(), m[schema.IdiomaticDensity], 1e-9)
		assert.NotContains(t, m, schema.SemanticComplexity)
	})

	t.Run("partial idiom does not count", func(t *testing.T) {
		m, err := p.Compute(context.Background(), "She ate a piece of bread.")
		require.NoError(t, err)
		assert.Zero(t, m[schema.IdiomaticDensity])
	})

	t.Run("embedder adds semantic complexity", func(t *testing.T) {
		withEmb := NewTranslation(DefaultLexicon(), staticEmbedder{3, 4})
		m, err := withEmb.Compute(context.Background(), simpleText)
		require.NoError(t, err)
		assert.InDelta(t, 5.0, m[schema.SemanticComplexity], 1e-12)
	})
}

func TestSetFor(t *testing.T) {
	set := NewDefaultSet(nil, nil)
	for _, f := range schema.AllFamilies {
		p := set.For(f)
		require.NotNil(t, p, f)
		assert.Equal(t, f, p.Family())
	}
	assert.Nil(t, set.For("phonetic"))
	assert.Nil(t, Set{}.For(schema.ReadabilityFamily))
}

func TestProvidersDeterministic(t *testing.T) {
	set := NewDefaultSet(nil, nil)
	for _, f := range schema.AllFamilies {
		a, err := set.For(f).Compute(context.Background(), complexText)
		require.NoError(t, err)
		b, err := set.For(f).Compute(context.Background(), complexText)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	}
}

func TestLoadLexicon(t *testing.T) {
	t.Run("empty path uses defaults", func(t *testing.T) {
		lex, err := LoadLexicon("")
		require.NoError(t, err)
		assert.Len(t, lex.CommonWords, 100)
		assert.Len(t, lex.DomainTerms, 30)
		assert.Len(t, lex.Idioms, 5)
	})

	t.Run("override replaces present lists only", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "lexicon.toml")
		content := "idioms = [\"Break a leg\", \"under the weather\"]\ndomain_terms = [\"patient\", \"dose\"]\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		lex, err := LoadLexicon(path)
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"break", "a", "leg"}, {"under", "the", "weather"}}, lex.Idioms)
		assert.Len(t, lex.DomainTerms, 2)
		assert.Len(t, lex.CommonWords, 100)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadLexicon(filepath.Join(t.TempDir(), "nope.toml"))
		assert.Error(t, err)
	})

	t.Run("bad toml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.toml")
		require.NoError(t, os.WriteFile(path, []byte("idioms = ["), 0o644))
		_, err := LoadLexicon(path)
		assert.Error(t, err)
	})
}

func TestGuardedLimitsConcurrency(t *testing.T) {
	slow := &countingProvider{delay: 20 * time.Millisecond}
	g := NewGuarded(slow, 2)
	assert.Equal(t, schema.LinguisticFamily, g.Family())

	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			_, err := g.Compute(context.Background(), "x")
			assert.NoError(t, err)
		})
	}
	wg.Wait()
	assert.LessOrEqual(t, slow.peak.Load(), int32(2))
}

func TestGuardedHonorsContext(t *testing.T) {
	g := NewGuarded(&countingProvider{delay: 200 * time.Millisecond}, 1)
	go func() { _, _ = g.Compute(context.Background(), "x") }()
	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := g.Compute(ctx, "x")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type staticEmbedder []float64

func (s staticEmbedder) Embed(context.Context, string) ([]float64, error) {
	return s, nil
}

type countingProvider struct {
	delay   time.Duration
	running atomic.Int32
	peak    atomic.Int32
}

func (*countingProvider) Family() schema.Family { return schema.LinguisticFamily }

func (c *countingProvider) Compute(context.Context, string) (schema.RawMetricSet, error) {
	n := c.running.Add(1)
	defer c.running.Add(-1)
	for {
		p := c.peak.Load()
		if n <= p || c.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(c.delay)
	return schema.RawMetricSet{"x": 1}, nil
}
