package provider

import (
	"context"

	"github.com/huangsam/transcomplex/schema"
	"golang.org/x/sync/semaphore"
)

// Guarded caps the number of concurrent calls into a provider that is not
// reentrant, such as one backed by a single model context.
type Guarded struct {
	inner MetricProvider
	sem   *semaphore.Weighted
}

// NewGuarded wraps p so that at most limit calls run at once.
func NewGuarded(p MetricProvider, limit int64) *Guarded {
	return &Guarded{inner: p, sem: semaphore.NewWeighted(max(limit, 1))}
}

// Family implements MetricProvider.
func (g *Guarded) Family() schema.Family {
	return g.inner.Family()
}

// Compute implements MetricProvider. It blocks until a slot is free or ctx is done.
func (g *Guarded) Compute(ctx context.Context, text string) (schema.RawMetricSet, error) {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer g.sem.Release(1)
	return g.inner.Compute(ctx, text)
}
