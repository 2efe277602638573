package network

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/HondryTravis/noflo/errors"
	"github.com/HondryTravis/noflo/graph"
	"github.com/HondryTravis/noflo/packet"
	"github.com/HondryTravis/noflo/pkg/queue"
)

// Mode selects how a channel initiates delivery.
type Mode int

const (
	// ModePull is the modern mode: the consumer requests packets and a
	// full buffer fails the push with a backpressure error.
	ModePull Mode = iota

	// ModePush is the legacy mode: packets are queued unconditionally,
	// growing past capacity with a recorded warning.
	ModePush
)

// String returns a human-readable representation of the delivery mode.
func (m Mode) String() string {
	switch m {
	case ModePull:
		return "pull"
	case ModePush:
		return "push"
	default:
		return "unknown"
	}
}

// Channel is a directed connection from one output port to one input
// port: a FIFO of pending packets plus bracket-balance tracking. Both
// delivery modes share the same FIFO and bracket invariants; they differ
// only in what happens when the buffer is full.
type Channel struct {
	id   string
	from graph.Endpoint
	to   graph.Endpoint
	mode Mode

	queue  *queue.FIFO[*packet.Packet]
	notify func(*Channel, *packet.Packet)
	logger *slog.Logger

	mu           sync.Mutex
	bracketDepth int
	closed       bool
}

// NewChannel creates a channel between two endpoints. The notify
// callback, when set, fires after every successful push so the
// scheduler can mark the consumer activatable.
func NewChannel(from, to graph.Endpoint, capacity int, mode Mode, logger *slog.Logger, notify func(*Channel, *packet.Packet)) *Channel {
	policy := queue.Reject
	if mode == ModePush {
		policy = queue.Grow
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Channel{
		id:     uuid.NewString(),
		from:   from,
		to:     to,
		mode:   mode,
		queue:  queue.New[*packet.Packet](capacity, policy),
		notify: notify,
		logger: logger,
	}
}

// ID returns the channel's unique identity.
func (c *Channel) ID() string { return c.id }

// From returns the producing endpoint.
func (c *Channel) From() graph.Endpoint { return c.from }

// To returns the consuming endpoint.
func (c *Channel) To() graph.Endpoint { return c.to }

// Mode returns the delivery mode.
func (c *Channel) Mode() Mode { return c.mode }

// Key returns the edge key this channel realizes.
func (c *Channel) Key() string {
	return graph.Edge{From: c.from, To: c.to}.Key()
}

// Push enqueues a packet, updating the bracket balance. In pull mode a
// full buffer fails with a backpressure error before the packet is
// queued; in push mode the packet is queued anyway and a warning logged.
// A close bracket that would drive the depth negative is a protocol
// error and the packet is not queued.
func (c *Channel) Push(p *packet.Packet) error {
	c.mu.Lock()

	if c.closed {
		c.mu.Unlock()
		return errors.WrapInvalid(
			fmt.Errorf("%w: %s", errors.ErrChannelClosed, c.Key()),
			"Channel", "Push", "closed check")
	}

	if p.Kind() == packet.KindCloseBracket && c.bracketDepth == 0 {
		c.mu.Unlock()
		return errors.WrapInvalid(
			fmt.Errorf("%w on %s", errors.ErrBracketMismatch, c.Key()),
			"Channel", "Push", "bracket balance check")
	}

	wasFull := c.queue.IsFull()
	if err := c.queue.Push(p); err != nil {
		c.mu.Unlock()
		return errors.Wrap(err, "Channel", "Push", "enqueue")
	}
	if p.Owner() == "" {
		p.TransferOwnership(c.from.Node)
	}

	switch p.Kind() {
	case packet.KindOpenBracket:
		c.bracketDepth++
	case packet.KindCloseBracket:
		c.bracketDepth--
	}

	if c.mode == ModePush && wasFull {
		c.logger.Warn("channel over capacity, queueing anyway",
			"channel", c.Key(),
			"depth", c.queue.Len(),
			"capacity", c.queue.Capacity())
	}
	c.mu.Unlock()

	if c.notify != nil {
		c.notify(c, p)
	}
	return nil
}

// Pop dequeues the oldest pending packet, handing its ownership to the
// consuming node. The second return is false when the channel is empty;
// an empty channel is not an error.
func (c *Channel) Pop() (*packet.Packet, bool) {
	p, ok := c.queue.Pop()
	if ok {
		p.TransferOwnership(c.to.Node)
	}
	return p, ok
}

// Len returns the number of pending packets.
func (c *Channel) Len() int { return c.queue.Len() }

// BracketDepth returns the current open-bracket balance.
func (c *Channel) BracketDepth() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bracketDepth
}

// IsIdle reports whether the channel holds no pending packets and all
// brackets are balanced. A channel with open brackets is never idle.
func (c *Channel) IsIdle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue.Len() == 0 && c.bracketDepth == 0
}

// Drain removes and returns every pending packet in FIFO order, for
// drop reporting when an edge is detached.
func (c *Channel) Drain() []*packet.Packet {
	return c.queue.Drain()
}

// Close marks the channel closed; further pushes fail, queued packets
// stay readable. Closing with a nonzero bracket depth is a protocol
// error, reported rather than silently absorbed, but the channel still
// closes. Close is idempotent.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	c.queue.Close()

	if c.bracketDepth != 0 {
		return errors.WrapInvalid(
			fmt.Errorf("%w: closing %s with depth %d", errors.ErrBracketMismatch, c.Key(), c.bracketDepth),
			"Channel", "Close", "bracket balance check")
	}
	return nil
}

// Stats returns the underlying queue statistics.
func (c *Channel) Stats() queue.Summary {
	return c.queue.Stats().Summary()
}
