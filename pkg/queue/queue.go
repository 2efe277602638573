// Package queue provides a generic, thread-safe bounded FIFO with
// configurable overflow policies.
//
// The queue backs every channel's pending-packet buffer. Two policies
// cover the runtime's delivery modes:
//   - Reject: Push fails when the queue is at capacity (strict backpressure)
//   - Grow: Push always succeeds, growing past capacity and recording an
//     overflow (legacy unbounded delivery)
//
// Statistics are always collected for observability.
package queue

import (
	"sync"

	"github.com/HondryTravis/noflo/errors"
)

// Policy defines how the queue behaves when it reaches capacity.
type Policy int

const (
	// Reject fails the Push when the queue is full.
	Reject Policy = iota

	// Grow accepts the item anyway, growing the backing storage and
	// recording an overflow.
	Grow
)

// String returns a human-readable representation of the overflow policy.
func (p Policy) String() string {
	switch p {
	case Reject:
		return "Reject"
	case Grow:
		return "Grow"
	default:
		return "Unknown"
	}
}

// FIFO is a thread-safe first-in-first-out queue with a soft capacity.
type FIFO[T any] struct {
	mu       sync.RWMutex
	items    []T
	capacity int
	size     int
	head     int // next read position
	tail     int // next write position
	policy   Policy
	stats    *Statistics
	closed   bool
}

// New creates a FIFO with the given capacity and overflow policy.
// Capacity below one is clamped to one.
func New[T any](capacity int, policy Policy) *FIFO[T] {
	if capacity <= 0 {
		capacity = 1
	}
	return &FIFO[T]{
		items:    make([]T, capacity),
		capacity: capacity,
		policy:   policy,
		stats:    NewStatistics(),
	}
}

// Push appends an item. Under the Reject policy a full queue fails with
// ErrBackpressure; under Grow the item is queued anyway and an overflow
// is recorded.
func (q *FIFO[T]) Push(item T) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return errors.WrapInvalid(errors.ErrChannelClosed, "FIFO", "Push", "queue closed")
	}

	if q.size == len(q.items) {
		switch q.policy {
		case Reject:
			q.stats.Overflow()
			return errors.WrapTransient(errors.ErrBackpressure, "FIFO", "Push", "capacity check")
		case Grow:
			q.grow()
			if q.size >= q.capacity {
				q.stats.Overflow()
			}
		}
	}

	q.items[q.tail] = item
	q.tail = (q.tail + 1) % len(q.items)
	q.size++

	q.stats.Push()
	q.stats.UpdateDepth(int64(q.size))

	return nil
}

// grow doubles the backing storage, preserving FIFO order.
// Caller must hold the lock.
func (q *FIFO[T]) grow() {
	grown := make([]T, len(q.items)*2)
	for i := 0; i < q.size; i++ {
		grown[i] = q.items[(q.head+i)%len(q.items)]
	}
	q.items = grown
	q.head = 0
	q.tail = q.size
}

// Pop removes and returns the oldest item. The second return value is
// false when the queue is empty; an empty queue is not an error.
func (q *FIFO[T]) Pop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	if q.size == 0 {
		return zero, false
	}

	item := q.items[q.head]
	q.items[q.head] = zero // release for GC
	q.head = (q.head + 1) % len(q.items)
	q.size--

	q.stats.Pop()
	q.stats.UpdateDepth(int64(q.size))

	return item, true
}

// Peek returns the oldest item without removing it.
func (q *FIFO[T]) Peek() (T, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	var zero T
	if q.size == 0 {
		return zero, false
	}
	return q.items[q.head], true
}

// Drain removes and returns every queued item in FIFO order.
func (q *FIFO[T]) Drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.size == 0 {
		return nil
	}

	var zero T
	drained := make([]T, q.size)
	for i := range drained {
		drained[i] = q.items[q.head]
		q.items[q.head] = zero
		q.head = (q.head + 1) % len(q.items)
	}

	q.stats.UpdateDepth(0)
	q.size = 0
	q.head = 0
	q.tail = 0

	return drained
}

// Len returns the current number of queued items.
func (q *FIFO[T]) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.size
}

// Capacity returns the soft capacity limit.
func (q *FIFO[T]) Capacity() int {
	return q.capacity
}

// IsEmpty returns true when no items are queued.
func (q *FIFO[T]) IsEmpty() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.size == 0
}

// IsFull returns true when the queue is at or beyond its soft capacity.
func (q *FIFO[T]) IsFull() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.size >= q.capacity
}

// Stats returns the queue statistics.
func (q *FIFO[T]) Stats() *Statistics {
	return q.stats
}

// Close marks the queue closed. Queued items remain readable; further
// pushes fail. Close is idempotent.
func (q *FIFO[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
}
