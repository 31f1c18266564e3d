package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/huangsam/transcomplex/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// funcScorer adapts a function to TextScorer.
type funcScorer func(ctx context.Context, text string) (*schema.ComplexityResult, error)

func (f funcScorer) ScoreText(ctx context.Context, text string) (*schema.ComplexityResult, error) {
	return f(ctx, text)
}

// lengthScorer scores a text by its length so results can be traced back to inputs.
var lengthScorer = funcScorer(func(_ context.Context, text string) (*schema.ComplexityResult, error) {
	if strings.HasPrefix(text, "fail") {
		return nil, errors.New("cannot score " + text)
	}
	if text == "panic" {
		panic("unexpected input")
	}
	return &schema.ComplexityResult{Overall: float64(len(text)) / 100, Tier: schema.LowTier}, nil
})

func textInputs(texts ...string) []schema.TextInput {
	out := make([]schema.TextInput, len(texts))
	for i, t := range texts {
		out[i] = schema.TextInput{Source: fmt.Sprintf("t%d", i), Text: t}
	}
	return out
}

func TestRunBatchPreservesOrder(t *testing.T) {
	texts := make([]string, 50)
	for i := range texts {
		texts[i] = strings.Repeat("a", i+1)
	}

	for _, workers := range []int{0, 1, 4, 100} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			items, err := RunBatch(context.Background(), lengthScorer, textInputs(texts...), BatchOptions{Workers: workers})
			require.NoError(t, err)
			require.Len(t, items, len(texts))
			for i, it := range items {
				assert.Equal(t, i, it.Index)
				assert.Equal(t, fmt.Sprintf("t%d", i), it.Source)
				require.NoError(t, it.Err)
				assert.InDelta(t, float64(i+1)/100, it.Result.Overall, 1e-12)
			}
		})
	}
}

func TestRunBatchIsolatesFailures(t *testing.T) {
	items, err := RunBatch(context.Background(), lengthScorer, textInputs("ok", "fail me", "panic", "fine"), BatchOptions{Workers: 2})
	require.NoError(t, err)
	require.Len(t, items, 4)

	assert.False(t, items[0].Failed())
	assert.True(t, items[1].Failed())
	assert.Nil(t, items[1].Result)
	assert.Contains(t, items[1].ErrorString(), "cannot score")
	assert.True(t, items[2].Failed())
	assert.Contains(t, items[2].ErrorString(), "panicked")
	assert.False(t, items[3].Failed())
}

func TestRunBatchEmpty(t *testing.T) {
	items, err := RunBatch(context.Background(), lengthScorer, nil, BatchOptions{Workers: 4})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestRunBatchNilScorer(t *testing.T) {
	_, err := RunBatch(context.Background(), nil, textInputs("x"), BatchOptions{})
	assert.ErrorIs(t, err, ErrNilScorer)
}

func TestRunBatchCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := RunBatch(ctx, lengthScorer, textInputs("x"), BatchOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunBatchTextTimeout(t *testing.T) {
	slow := funcScorer(func(ctx context.Context, text string) (*schema.ComplexityResult, error) {
		if text == "slow" {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return &schema.ComplexityResult{Tier: schema.LowTier}, nil
	})

	items, err := RunBatch(context.Background(), slow, textInputs("fast", "slow", "fast"), BatchOptions{
		Workers:     3,
		TextTimeout: 20 * time.Millisecond,
	})
	require.NoError(t, err)
	assert.False(t, items[0].Failed())
	assert.ErrorIs(t, items[1].Err, context.DeadlineExceeded)
	assert.False(t, items[2].Failed())
}

func TestRunBatchNilResult(t *testing.T) {
	empty := funcScorer(func(context.Context, string) (*schema.ComplexityResult, error) { return nil, nil })
	items, err := RunBatch(context.Background(), empty, textInputs("x"), BatchOptions{})
	require.NoError(t, err)
	assert.True(t, items[0].Failed())
}

func TestRunBatchBoundsConcurrency(t *testing.T) {
	var active, peak atomic.Int32
	scorer := funcScorer(func(context.Context, string) (*schema.ComplexityResult, error) {
		n := active.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		active.Add(-1)
		return &schema.ComplexityResult{}, nil
	})

	texts := make([]string, 40)
	_, err := RunBatch(context.Background(), scorer, textInputs(texts...), BatchOptions{Workers: 3})
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestRunBatchOnItem(t *testing.T) {
	var mu sync.Mutex
	seen := make(map[int]bool)
	_, err := RunBatch(context.Background(), lengthScorer, textInputs("a", "fail", "c"), BatchOptions{
		Workers: 2,
		OnItem: func(it schema.BatchItem) {
			mu.Lock()
			defer mu.Unlock()
			seen[it.Index] = it.Failed()
		},
	})
	require.NoError(t, err)
	assert.Equal(t, map[int]bool{0: false, 1: true, 2: false}, seen)
}
