package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/huangsam/transcomplex/core/algo"
	"github.com/huangsam/transcomplex/core/provider"
	"github.com/huangsam/transcomplex/schema"
	"golang.org/x/sync/errgroup"
)

// TextScorer scores a single text. Scorer and CachedScorer implement it.
type TextScorer interface {
	ScoreText(ctx context.Context, text string) (*schema.ComplexityResult, error)
}

// Scorer runs the metric providers of every family in parallel and turns their
// raw metrics into a ComplexityResult.
type Scorer struct {
	providers provider.Set
	cfg       *algo.Configuration
}

// NewScorer builds a scorer. A nil cfg selects the default configuration.
func NewScorer(providers provider.Set, cfg *algo.Configuration) *Scorer {
	if cfg == nil {
		cfg = algo.DefaultConfiguration()
	}
	return &Scorer{providers: providers, cfg: cfg}
}

// Configuration returns the configuration the scorer was built with.
func (s *Scorer) Configuration() *algo.Configuration {
	return s.cfg
}

// familyOutcome is the result of one provider call.
type familyOutcome struct {
	raw schema.RawMetricSet
	err error
}

// ScoreText scores text. A family whose provider fails is skipped and the reason is
// recorded in the result. ErrNoMetrics is returned when no weighted family produced
// any metric. A panicking provider or an expired context fails the whole text.
func (s *Scorer) ScoreText(ctx context.Context, text string) (*schema.ComplexityResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	outcomes, err := s.computeFamilies(ctx, text)
	if err != nil {
		return nil, err
	}

	raw := make(schema.RawMetricSet)
	normalized := make(map[schema.Family]schema.NormalizedMetricSet, len(outcomes))
	skipped := make(map[schema.Family]string)
	for _, f := range schema.AllFamilies {
		out, ok := outcomes[f]
		if !ok {
			continue
		}
		if out.err != nil {
			skipped[f] = out.err.Error()
			continue
		}
		if len(out.raw) == 0 {
			skipped[f] = "no metrics"
			continue
		}
		set, err := algo.NormalizeSet(f, out.raw, s.cfg)
		if err != nil {
			return nil, err
		}
		normalized[f] = set
		for k, v := range out.raw {
			raw[k] = v
		}
	}

	familyScores, overall, err := algo.Aggregate(normalized, s.cfg.Weights())
	if err != nil {
		if errors.Is(err, algo.ErrNoMetrics) && len(skipped) > 0 {
			return nil, fmt.Errorf("%w (%s)", err, describeSkipped(skipped))
		}
		return nil, err
	}

	metrics := make(schema.NormalizedMetricSet)
	for _, set := range normalized {
		for k, v := range set {
			metrics[k] = v
		}
	}

	result := &schema.ComplexityResult{
		Metrics:      metrics,
		Raw:          raw,
		FamilyScores: familyScores,
		Overall:      overall,
		Tier:         s.cfg.Classify(overall),
	}
	if len(skipped) > 0 {
		result.Skipped = skipped
	}
	return result, nil
}

// computeFamilies calls every configured provider concurrently. Provider errors
// are kept per family as ProviderError values. Only panics and context expiry
// abort the group.
func (s *Scorer) computeFamilies(ctx context.Context, text string) (map[schema.Family]familyOutcome, error) {
	results := make([]familyOutcome, len(schema.AllFamilies))
	present := make([]bool, len(schema.AllFamilies))

	g, gctx := errgroup.WithContext(ctx)
	for i, f := range schema.AllFamilies {
		p := s.providers.For(f)
		if p == nil {
			continue
		}
		present[i] = true
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%s provider panicked: %v", f, r)
				}
			}()
			raw, cerr := p.Compute(gctx, text)
			if cerr != nil {
				results[i] = familyOutcome{err: &algo.ProviderError{Family: f, Err: cerr}}
				return nil
			}
			results[i] = familyOutcome{raw: raw}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	outcomes := make(map[schema.Family]familyOutcome, len(results))
	for i, f := range schema.AllFamilies {
		if present[i] {
			outcomes[f] = results[i]
		}
	}
	return outcomes, nil
}

// describeSkipped renders skip reasons in family order.
func describeSkipped(skipped map[schema.Family]string) string {
	parts := make([]string, 0, len(skipped))
	for _, f := range schema.AllFamilies {
		if reason, ok := skipped[f]; ok {
			parts = append(parts, string(f)+": "+reason)
		}
	}
	return strings.Join(parts, "; ")
}
