package testutil

import (
	"fmt"
	"sync"
	"time"

	"github.com/HondryTravis/noflo/errors"
	"github.com/HondryTravis/noflo/network"
	"github.com/HondryTravis/noflo/packet"
)

// Observer collects a network's lifecycle events. Register it before
// Start so no event is missed; the network must be created with
// network.WithDelay for that ordering to be possible.
type Observer struct {
	mu         sync.Mutex
	activated  []string
	compErrors map[string][]error
	dropped    []DroppedPacket

	ended chan error
}

// DroppedPacket is one packet discarded during an edge removal.
type DroppedPacket struct {
	Edge   string
	Packet *packet.Packet
}

// Observe subscribes to every lifecycle event of the network.
func Observe(n *network.Network) *Observer {
	o := &Observer{
		compErrors: make(map[string][]error),
		ended:      make(chan error, 16),
	}

	n.OnComponentActivated(func(node string) {
		o.mu.Lock()
		o.activated = append(o.activated, node)
		o.mu.Unlock()
	})
	n.OnComponentError(func(node string, err error) {
		o.mu.Lock()
		o.compErrors[node] = append(o.compErrors[node], err)
		o.mu.Unlock()
	})
	n.OnPacketDropped(func(edge string, p *packet.Packet) {
		o.mu.Lock()
		o.dropped = append(o.dropped, DroppedPacket{Edge: edge, Packet: p})
		o.mu.Unlock()
	})
	n.OnNetworkEnded(func(err error) {
		select {
		case o.ended <- err:
		default:
		}
	})

	return o
}

// WaitFinished blocks until the network reports finished or the timeout
// elapses. The first return is the error the network ended with (nil
// for a clean finish); the second is non-nil on timeout.
func (o *Observer) WaitFinished(timeout time.Duration) (error, error) {
	select {
	case err := <-o.ended:
		return err, nil
	case <-time.After(timeout):
		return nil, errors.WrapTransient(
			fmt.Errorf("network did not finish within %s", timeout),
			"Observer", "WaitFinished", "finish wait")
	}
}

// Activated returns the activation order observed so far.
func (o *Observer) Activated() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.activated...)
}

// ComponentErrors returns the errors reported for one node.
func (o *Observer) ComponentErrors(node string) []error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]error(nil), o.compErrors[node]...)
}

// Dropped returns every drop event observed so far.
func (o *Observer) Dropped() []DroppedPacket {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]DroppedPacket(nil), o.dropped...)
}
