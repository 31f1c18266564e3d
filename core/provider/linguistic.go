package provider

import (
	"context"
	"strings"

	"github.com/huangsam/transcomplex/schema"
)

// clauseMarkers open a dependent clause.
var clauseMarkers = map[string]struct{}{
	"after": {}, "although": {}, "because": {}, "before": {}, "if": {}, "once": {},
	"since": {}, "though": {}, "unless": {}, "until": {}, "when": {}, "whenever": {},
	"where": {}, "whereas": {}, "wherever": {}, "whether": {}, "while": {},
	"that": {}, "which": {}, "who": {}, "whom": {}, "whose": {},
}

// clausePunct separates or nests clauses. Each mark adds half a level.
const clausePunct = ",;:()—"

// Linguistic measures sentence structure and vocabulary breadth.
type Linguistic struct {
	lex *Lexicon
}

// NewLinguistic returns the linguistic provider.
func NewLinguistic(lex *Lexicon) *Linguistic {
	return &Linguistic{lex: lex}
}

// Family implements MetricProvider.
func (*Linguistic) Family() schema.Family {
	return schema.LinguisticFamily
}

// Compute implements MetricProvider.
func (p *Linguistic) Compute(ctx context.Context, text string) (schema.RawMetricSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := analyze(text)
	if err != nil {
		return nil, err
	}

	unique := make(map[string]struct{}, len(doc.lower))
	for _, w := range doc.lower {
		unique[w] = struct{}{}
	}

	var depth float64
	for _, s := range doc.sentences {
		depth += clauseDepth(s)
	}

	return schema.RawMetricSet{
		schema.AvgSentenceLength:   doc.wordCount() / doc.sentenceCount(),
		schema.LexicalDiversity:    float64(len(unique)) / doc.wordCount(),
		schema.SyntacticComplexity: depth / doc.sentenceCount(),
		schema.VocabularyRarity:    outsideShare(doc.alphabetic(), p.lex.CommonWords),
	}, nil
}

// clauseDepth estimates how deeply clauses nest in one sentence.
func clauseDepth(s sentence) float64 {
	depth := 1.0
	for _, w := range s.words {
		if _, ok := clauseMarkers[strings.ToLower(w)]; ok {
			depth++
		}
	}
	for _, r := range s.raw {
		if strings.ContainsRune(clausePunct, r) {
			depth += 0.5
		}
	}
	return depth
}

// outsideShare returns the fraction of words missing from set.
func outsideShare(words []string, set map[string]struct{}) float64 {
	if len(words) == 0 {
		return 0
	}
	var outside int
	for _, w := range words {
		if _, ok := set[w]; !ok {
			outside++
		}
	}
	return float64(outside) / float64(len(words))
}
