package network

import (
	"sync"

	"github.com/HondryTravis/noflo/packet"
)

// subscriptions holds the ordered lifecycle callback lists. Handlers
// are invoked from the scheduling goroutine in registration order, so
// they must return quickly and must not call back into the network.
type subscriptions struct {
	mu          sync.Mutex
	onActivated []func(node string)
	onError     []func(node string, err error)
	onDropped   []func(edge string, p *packet.Packet)
	onEnded     []func(err error)
}

// OnComponentActivated registers a callback fired when a component
// activation is scheduled.
func (n *Network) OnComponentActivated(fn func(node string)) {
	n.subs.mu.Lock()
	defer n.subs.mu.Unlock()
	n.subs.onActivated = append(n.subs.onActivated, fn)
}

// OnComponentError registers a callback fired when an activation fails
// and the component has no error output to absorb it.
func (n *Network) OnComponentError(fn func(node string, err error)) {
	n.subs.mu.Lock()
	defer n.subs.mu.Unlock()
	n.subs.onError = append(n.subs.onError, fn)
}

// OnPacketDropped registers a callback fired once per packet discarded
// when an edge is detached with data still queued.
func (n *Network) OnPacketDropped(fn func(edge string, p *packet.Packet)) {
	n.subs.mu.Lock()
	defer n.subs.mu.Unlock()
	n.subs.onDropped = append(n.subs.onDropped, fn)
}

// OnNetworkEnded registers a callback fired when the network reaches a
// finished state: all channels drained and no pending activations, or a
// fatal error. The error is non-nil exactly when the network errored.
func (n *Network) OnNetworkEnded(fn func(err error)) {
	n.subs.mu.Lock()
	defer n.subs.mu.Unlock()
	n.subs.onEnded = append(n.subs.onEnded, fn)
}

func (s *subscriptions) fireActivated(node string) {
	s.mu.Lock()
	handlers := make([]func(node string), len(s.onActivated))
	copy(handlers, s.onActivated)
	s.mu.Unlock()
	for _, fn := range handlers {
		fn(node)
	}
}

func (s *subscriptions) fireError(node string, err error) {
	s.mu.Lock()
	handlers := make([]func(node string, err error), len(s.onError))
	copy(handlers, s.onError)
	s.mu.Unlock()
	for _, fn := range handlers {
		fn(node, err)
	}
}

func (s *subscriptions) fireDropped(edge string, p *packet.Packet) {
	s.mu.Lock()
	handlers := make([]func(edge string, p *packet.Packet), len(s.onDropped))
	copy(handlers, s.onDropped)
	s.mu.Unlock()
	for _, fn := range handlers {
		fn(edge, p)
	}
}

func (s *subscriptions) fireEnded(err error) {
	s.mu.Lock()
	handlers := make([]func(err error), len(s.onEnded))
	copy(handlers, s.onEnded)
	s.mu.Unlock()
	for _, fn := range handlers {
		fn(err)
	}
}
