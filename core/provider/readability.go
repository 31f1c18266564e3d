package provider

import (
	"context"
	"math"

	"github.com/huangsam/transcomplex/schema"
)

// smogMinSentences is the fewest sentences SMOG is defined for.
const smogMinSentences = 3

// Readability computes classic readability formulas.
type Readability struct{}

// NewReadability returns the readability provider.
func NewReadability() *Readability {
	return &Readability{}
}

// Family implements MetricProvider.
func (*Readability) Family() schema.Family {
	return schema.ReadabilityFamily
}

// Compute implements MetricProvider.
func (*Readability) Compute(ctx context.Context, text string) (schema.RawMetricSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := analyze(text)
	if err != nil {
		return nil, err
	}

	var syllables, letters, complexWords float64
	for _, w := range doc.words {
		syl := countSyllables(w)
		syllables += float64(syl)
		letters += float64(countLetters(w))
		if syl >= 3 {
			complexWords++
		}
	}

	w, s := doc.wordCount(), doc.sentenceCount()
	wordsPerSentence := w / s
	syllablesPerWord := syllables / w
	lettersPer100 := letters / w * 100
	sentencesPer100 := s / w * 100

	m := schema.RawMetricSet{
		schema.FleschKincaid:     0.39*wordsPerSentence + 11.8*syllablesPerWord - 15.59,
		schema.FleschReadingEase: 206.835 - 1.015*wordsPerSentence - 84.6*syllablesPerWord,
		schema.ColemanLiau:       0.0588*lettersPer100 - 0.296*sentencesPer100 - 15.8,
		schema.GunningFog:        0.4 * (wordsPerSentence + 100*complexWords/w),
	}
	if s >= smogMinSentences {
		m[schema.Smog] = 1.043*math.Sqrt(complexWords*30/s) + 3.1291
	}
	return m, nil
}
