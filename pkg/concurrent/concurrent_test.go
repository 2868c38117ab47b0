package concurrent

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForEachInlineKeepsOrder(t *testing.T) {
	var seen []int
	err := ForEach(context.Background(), []int{1, 2, 3}, 1, func(_ context.Context, v int) error {
		seen = append(seen, v)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, seen)
}

func TestForEachParallelVisitsAll(t *testing.T) {
	items := make([]int, 100)
	for i := range items {
		items[i] = i
	}
	var sum atomic.Int64
	err := ForEach(context.Background(), items, 8, func(_ context.Context, v int) error {
		sum.Add(int64(v))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4950), sum.Load())
}

func TestForEachReturnsError(t *testing.T) {
	boom := errors.New("boom")
	for _, workers := range []int{1, 4} {
		err := ForEach(context.Background(), []int{1, 2, 3}, workers, func(_ context.Context, v int) error {
			if v == 2 {
				return boom
			}
			return nil
		})
		assert.ErrorIs(t, err, boom, "workers=%d", workers)
	}
}

func TestForEachCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := ForEach(ctx, []int{1, 2}, 1, func(context.Context, int) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParallelMapPreservesOrder(t *testing.T) {
	out, err := ParallelMap(context.Background(), []int{1, 2, 3, 4}, 3, func(v int) int { return v * v })
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4, 9, 16}, out)
}
