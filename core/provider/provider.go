// Package provider computes raw sub-metrics for each metric family.
package provider

import (
	"context"
	"errors"

	"github.com/huangsam/transcomplex/schema"
)

// ErrEmptyText is returned when a text holds no words at all.
var ErrEmptyText = errors.New("text contains no words")

// MetricProvider computes the raw sub-metrics of one family for a text.
// Implementations must be deterministic for a fixed text and fixed resources.
type MetricProvider interface {
	Family() schema.Family
	Compute(ctx context.Context, text string) (schema.RawMetricSet, error)
}

// Set is the closed set of providers, one slot per family. A nil slot
// disables that family.
type Set struct {
	Readability MetricProvider
	Linguistic  MetricProvider
	Translation MetricProvider
}

// For returns the provider of a family, or nil.
func (s Set) For(f schema.Family) MetricProvider {
	switch f {
	case schema.ReadabilityFamily:
		return s.Readability
	case schema.LinguisticFamily:
		return s.Linguistic
	case schema.TranslationFamily:
		return s.Translation
	default:
		return nil
	}
}

// NewDefaultSet wires the built-in heuristic providers. emb may be nil, in
// which case semantic complexity is not computed.
func NewDefaultSet(lex *Lexicon, emb Embedder) Set {
	if lex == nil {
		lex = DefaultLexicon()
	}
	return Set{
		Readability: NewReadability(),
		Linguistic:  NewLinguistic(lex),
		Translation: NewTranslation(lex, emb),
	}
}
