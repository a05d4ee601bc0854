package utils

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPool_MapPreservesOrder(t *testing.T) {
	double := func(_ context.Context, v int) (int, error) { return v * 2, nil }

	for _, workers := range []int{0, 1, 4} {
		out, err := NewWorkerPool(double, workers).Map(context.Background(), []int{1, 2, 3, 4, 5})
		require.NoError(t, err)
		assert.Equal(t, []int{2, 4, 6, 8, 10}, out)
	}
}

func TestWorkerPool_ReportsProgress(t *testing.T) {
	var calls int32
	wp := NewWorkerPool(func(_ context.Context, v string) (string, error) { return v, nil }, 1)
	wp.OnProgress(func(current, total int) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, 3, total)
	})

	_, err := wp.Map(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestWorkerPool_StopsOnError(t *testing.T) {
	boom := errors.New("boom")
	wp := NewWorkerPool(func(_ context.Context, v int) (int, error) {
		if v == 2 {
			return 0, boom
		}
		return v, nil
	}, 1)

	_, err := wp.Map(context.Background(), []int{1, 2, 3})
	assert.ErrorIs(t, err, boom)
}

func TestWorkerPool_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	wp := NewWorkerPool(func(_ context.Context, v int) (int, error) { return v, nil }, 2)
	_, err := wp.Map(ctx, []int{1, 2, 3})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUniqueBy(t *testing.T) {
	type point struct{ lat, lon float64 }
	in := []point{{1, 2}, {1, 2}, {3, 4}, {1, 2}}

	out := UniqueBy(in, func(p point) point { return p })
	assert.Equal(t, []point{{1, 2}, {3, 4}}, out)
}

func TestChunks(t *testing.T) {
	assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5}}, Chunks([]int{1, 2, 3, 4, 5}, 2))
	assert.Equal(t, [][]int{{1}}, Chunks([]int{1}, 0))
}
