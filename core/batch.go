package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/huangsam/transcomplex/schema"
)

// ErrNilScorer is returned by RunBatch when no scorer is given.
var ErrNilScorer = errors.New("batch requires a scorer")

// BatchOptions tune RunBatch.
type BatchOptions struct {
	// Workers is the worker-pool size. Values below 1 mean one worker.
	Workers int

	// TextTimeout bounds the time spent on each text. Zero disables it.
	TextTimeout time.Duration

	// OnItem is called once per finished text, possibly from several goroutines.
	OnItem func(schema.BatchItem)
}

// RunBatch scores every text with scorer and returns one item per input, in input
// order. Per-text failures land in BatchItem.Err and never stop the batch. The
// returned error is reserved for a nil scorer or a parent context that was done
// before any work started.
func RunBatch(ctx context.Context, scorer TextScorer, texts []schema.TextInput, opts BatchOptions) ([]schema.BatchItem, error) {
	if scorer == nil {
		return nil, ErrNilScorer
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	items := make([]schema.BatchItem, len(texts))
	if len(texts) == 0 {
		return items, nil
	}

	workers := min(max(opts.Workers, 1), len(texts))
	indexCh := make(chan int, len(texts))
	var wg sync.WaitGroup

	// Start worker pool
	for range workers {
		wg.Go(func() {
			for i := range indexCh {
				// Each worker writes to a unique index, so no lock is needed.
				items[i] = scoreOne(ctx, scorer, i, texts[i], opts.TextTimeout)
				if opts.OnItem != nil {
					opts.OnItem(items[i])
				}
			}
		})
	}

	for i := range texts {
		indexCh <- i
	}
	close(indexCh)

	wg.Wait()
	return items, nil
}

// scoreOne runs the pipeline for a single text, converting panics into errors.
func scoreOne(ctx context.Context, scorer TextScorer, index int, input schema.TextInput, timeout time.Duration) (item schema.BatchItem) {
	item = schema.BatchItem{Index: index, Source: input.Source}
	defer func() {
		if r := recover(); r != nil {
			item.Result = nil
			item.Err = fmt.Errorf("scoring panicked: %v", r)
		}
	}()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	result, err := scorer.ScoreText(ctx, input.Text)
	switch {
	case err != nil:
		item.Err = err
	case result == nil:
		item.Err = errors.New("scorer returned no result")
	default:
		item.Result = result
	}
	return item
}
