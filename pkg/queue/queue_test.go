package queue

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HondryTravis/noflo/errors"
)

func TestFIFO_Order(t *testing.T) {
	q := New[int](8, Reject)

	for i := 0; i < 5; i++ {
		require.NoError(t, q.Push(i))
	}

	for i := 0; i < 5; i++ {
		item, ok := q.Pop()
		require.True(t, ok)
		assert.Equal(t, i, item)
	}

	_, ok := q.Pop()
	assert.False(t, ok, "empty pop is not an error")
}

func TestFIFO_RejectPolicy(t *testing.T) {
	q := New[string](2, Reject)

	require.NoError(t, q.Push("a"))
	require.NoError(t, q.Push("b"))

	err := q.Push("c")
	require.Error(t, err)
	assert.True(t, errors.IsBackpressure(err))
	assert.Equal(t, 2, q.Len())
	assert.Equal(t, int64(1), q.Stats().Overflows())

	// Popping frees a slot.
	_, ok := q.Pop()
	require.True(t, ok)
	assert.NoError(t, q.Push("c"))
}

func TestFIFO_GrowPolicy(t *testing.T) {
	q := New[int](2, Grow)

	for i := 0; i < 10; i++ {
		require.NoError(t, q.Push(i))
	}

	assert.Equal(t, 10, q.Len())
	assert.True(t, q.IsFull())
	assert.Positive(t, q.Stats().Overflows())

	// Order survives growth.
	for i := 0; i < 10; i++ {
		item, ok := q.Pop()
		require.True(t, ok)
		assert.Equal(t, i, item)
	}
}

func TestFIFO_GrowPreservesWrappedOrder(t *testing.T) {
	q := New[int](4, Grow)

	// Wrap the ring before forcing growth.
	for i := 0; i < 4; i++ {
		require.NoError(t, q.Push(i))
	}
	for i := 0; i < 2; i++ {
		_, ok := q.Pop()
		require.True(t, ok)
	}
	for i := 4; i < 9; i++ {
		require.NoError(t, q.Push(i))
	}

	var got []int
	for {
		item, ok := q.Pop()
		if !ok {
			break
		}
		got = append(got, item)
	}
	assert.Equal(t, []int{2, 3, 4, 5, 6, 7, 8}, got)
}

func TestFIFO_Peek(t *testing.T) {
	q := New[string](4, Reject)

	_, ok := q.Peek()
	assert.False(t, ok)

	require.NoError(t, q.Push("first"))
	require.NoError(t, q.Push("second"))

	item, ok := q.Peek()
	require.True(t, ok)
	assert.Equal(t, "first", item)
	assert.Equal(t, 2, q.Len(), "peek is side-effect free")
}

func TestFIFO_Drain(t *testing.T) {
	q := New[int](4, Reject)
	for i := 0; i < 3; i++ {
		require.NoError(t, q.Push(i))
	}

	drained := q.Drain()
	assert.Equal(t, []int{0, 1, 2}, drained)
	assert.True(t, q.IsEmpty())
	assert.Nil(t, q.Drain())
}

func TestFIFO_Close(t *testing.T) {
	q := New[int](4, Reject)
	require.NoError(t, q.Push(1))

	q.Close()
	q.Close() // idempotent

	err := q.Push(2)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrChannelClosed)

	// Queued items remain readable after close.
	item, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, 1, item)
}

func TestFIFO_ConcurrentProducerConsumer(t *testing.T) {
	const total = 1000
	q := New[int](64, Grow)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < total; i++ {
			if err := q.Push(i); err != nil {
				t.Errorf("push %d: %v", i, err)
				return
			}
		}
	}()

	var got []int
	for len(got) < total {
		if item, ok := q.Pop(); ok {
			got = append(got, item)
		}
	}
	wg.Wait()

	for i, item := range got {
		require.Equal(t, i, item, fmt.Sprintf("out of order at %d", i))
	}
}
