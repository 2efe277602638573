package queue

import (
	"sync"
	"sync/atomic"
)

// Statistics tracks queue activity for observability.
type Statistics struct {
	pushes    int64
	pops      int64
	overflows int64

	mu       sync.RWMutex
	depth    int64
	maxDepth int64
}

// NewStatistics creates a new statistics tracker.
func NewStatistics() *Statistics {
	return &Statistics{}
}

// Push records a push operation.
func (s *Statistics) Push() {
	atomic.AddInt64(&s.pushes, 1)
}

// Pop records a pop operation.
func (s *Statistics) Pop() {
	atomic.AddInt64(&s.pops, 1)
}

// Overflow records a capacity overflow event.
func (s *Statistics) Overflow() {
	atomic.AddInt64(&s.overflows, 1)
}

// UpdateDepth updates the current queue depth.
func (s *Statistics) UpdateDepth(depth int64) {
	s.mu.Lock()
	s.depth = depth
	if depth > s.maxDepth {
		s.maxDepth = depth
	}
	s.mu.Unlock()
}

// Pushes returns the total number of push operations.
func (s *Statistics) Pushes() int64 {
	return atomic.LoadInt64(&s.pushes)
}

// Pops returns the total number of pop operations.
func (s *Statistics) Pops() int64 {
	return atomic.LoadInt64(&s.pops)
}

// Overflows returns the total number of overflow events.
func (s *Statistics) Overflows() int64 {
	return atomic.LoadInt64(&s.overflows)
}

// Depth returns the current queue depth.
func (s *Statistics) Depth() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.depth
}

// MaxDepth returns the maximum depth the queue has reached.
func (s *Statistics) MaxDepth() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxDepth
}

// Summary is a point-in-time snapshot of queue statistics.
type Summary struct {
	Pushes    int64 `json:"pushes"`
	Pops      int64 `json:"pops"`
	Overflows int64 `json:"overflows"`
	Depth     int64 `json:"depth"`
	MaxDepth  int64 `json:"max_depth"`
}

// Summary returns a snapshot of all statistics.
func (s *Statistics) Summary() Summary {
	return Summary{
		Pushes:    s.Pushes(),
		Pops:      s.Pops(),
		Overflows: s.Overflows(),
		Depth:     s.Depth(),
		MaxDepth:  s.MaxDepth(),
	}
}
