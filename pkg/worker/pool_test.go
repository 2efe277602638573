package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HondryTravis/noflo/metric"
)

func TestPool_ProcessesAllWork(t *testing.T) {
	var sum atomic.Int64

	pool := NewPool[int](4, 64, func(_ context.Context, n int) error {
		sum.Add(int64(n))
		return nil
	})

	require.NoError(t, pool.Start(context.Background()))

	total := int64(0)
	for i := 1; i <= 50; i++ {
		require.NoError(t, pool.Submit(i))
		total += int64(i)
	}

	require.NoError(t, pool.Stop(5*time.Second))
	assert.Equal(t, total, sum.Load())

	stats := pool.Stats()
	assert.Equal(t, int64(50), stats.Submitted)
	assert.Equal(t, int64(50), stats.Processed)
	assert.Equal(t, int64(0), stats.Failed)
}

func TestPool_LifecycleErrors(t *testing.T) {
	pool := NewPool[int](1, 1, func(_ context.Context, _ int) error { return nil })

	assert.ErrorIs(t, pool.Submit(1), ErrPoolNotStarted)

	require.NoError(t, pool.Start(context.Background()))
	assert.ErrorIs(t, pool.Start(context.Background()), ErrPoolAlreadyStarted)

	require.NoError(t, pool.Stop(time.Second))
	assert.ErrorIs(t, pool.Submit(1), ErrPoolStopped)

	// Stop is idempotent.
	assert.NoError(t, pool.Stop(time.Second))
}

func TestPool_QueueFull(t *testing.T) {
	block := make(chan struct{})
	started := make(chan struct{}, 1)

	pool := NewPool[int](1, 1, func(_ context.Context, _ int) error {
		started <- struct{}{}
		<-block
		return nil
	})
	require.NoError(t, pool.Start(context.Background()))

	// First item occupies the worker, second fills the queue.
	require.NoError(t, pool.Submit(1))
	<-started
	require.NoError(t, pool.Submit(2))

	err := pool.Submit(3)
	assert.ErrorIs(t, err, ErrQueueFull)
	assert.Equal(t, int64(1), pool.Stats().Dropped)

	close(block)
	require.NoError(t, pool.Stop(5*time.Second))
}

func TestPool_FailedWorkCounted(t *testing.T) {
	pool := NewPool[int](2, 16, func(_ context.Context, n int) error {
		if n%2 == 0 {
			return errors.New("even numbers rejected")
		}
		return nil
	})
	require.NoError(t, pool.Start(context.Background()))

	for i := 0; i < 10; i++ {
		require.NoError(t, pool.Submit(i))
	}
	require.NoError(t, pool.Stop(5*time.Second))

	stats := pool.Stats()
	assert.Equal(t, int64(10), stats.Processed)
	assert.Equal(t, int64(5), stats.Failed)
}

func TestPool_NilProcessorPanics(t *testing.T) {
	assert.Panics(t, func() {
		NewPool[int](1, 1, nil)
	})
}

func TestPool_WithMetrics(t *testing.T) {
	registry := metric.NewMetricsRegistry()

	pool := NewPool[int](2, 16,
		func(_ context.Context, _ int) error { return nil },
		WithMetricsRegistry[int](registry, "test_pool"))
	require.NoError(t, pool.Start(context.Background()))

	require.NoError(t, pool.Submit(1))
	require.NoError(t, pool.Stop(5*time.Second))

	families, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, family := range families {
		names[family.GetName()] = true
	}
	assert.True(t, names["test_pool_submitted_total"])
	assert.True(t, names["test_pool_processed_total"])
}

func TestPool_ConcurrentSubmit(t *testing.T) {
	var processed atomic.Int64
	pool := NewPool[int](4, 1024, func(_ context.Context, _ int) error {
		processed.Add(1)
		return nil
	})
	require.NoError(t, pool.Start(context.Background()))

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				_ = pool.Submit(i)
			}
		}()
	}
	wg.Wait()

	require.NoError(t, pool.Stop(5*time.Second))
	assert.Equal(t, pool.Stats().Submitted, processed.Load())
}
