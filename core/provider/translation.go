package provider

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/huangsam/transcomplex/schema"
)

// Translation measures signals that make a text hard to carry across languages.
type Translation struct {
	lex *Lexicon
	emb Embedder
}

// NewTranslation returns the translation provider. emb may be nil.
func NewTranslation(lex *Lexicon, emb Embedder) *Translation {
	return &Translation{lex: lex, emb: emb}
}

// Family implements MetricProvider.
func (*Translation) Family() schema.Family {
	return schema.TranslationFamily
}

// Compute implements MetricProvider.
func (p *Translation) Compute(ctx context.Context, text string) (schema.RawMetricSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := analyze(text)
	if err != nil {
		return nil, err
	}

	m := schema.RawMetricSet{
		schema.IdiomaticDensity:  3 * float64(countIdioms(doc.lower, p.lex.Idioms)) / doc.wordCount(),
		schema.DomainSpecificity: outsideShare(doc.alphabetic(), p.lex.DomainTerms),
	}

	if p.emb != nil {
		vec, err := p.emb.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embedding failed: %w", err)
		}
		m[schema.SemanticComplexity] = l2Norm(vec)
	}
	return m, nil
}

// countIdioms counts idiom occurrences over whole lowercased word sequences.
func countIdioms(words []string, idioms [][]string) int {
	count := 0
	for _, idiom := range idioms {
		n := len(idiom)
		for i := 0; i+n <= len(words); i++ {
			if slices.Equal(words[i:i+n], idiom) {
				count++
			}
		}
	}
	return count
}

func l2Norm(vec []float64) float64 {
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	return math.Sqrt(sum)
}
