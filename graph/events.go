package graph

import (
	"time"

	"github.com/HondryTravis/noflo/errors"
)

// EventType defines the kinds of topology mutations a graph emits.
type EventType string

const (
	// EventNodeAdded signals a new node joined the graph.
	EventNodeAdded EventType = "node_added"

	// EventNodeRemoved signals a node left the graph.
	EventNodeRemoved EventType = "node_removed"

	// EventEdgeAdded signals a new connection between two ports.
	EventEdgeAdded EventType = "edge_added"

	// EventEdgeRemoved signals a connection was removed.
	EventEdgeRemoved EventType = "edge_removed"

	// EventInitialAdded signals a new startup packet was declared.
	EventInitialAdded EventType = "initial_added"

	// EventInitialRemoved signals a startup packet was withdrawn.
	EventInitialRemoved EventType = "initial_removed"
)

// Event describes one applied graph mutation. Exactly one of Node, Edge
// or Initial is set, matching the event type.
type Event struct {
	Type      EventType `json:"type"`
	Node      *Node     `json:"node,omitempty"`
	Edge      *Edge     `json:"edge,omitempty"`
	Initial   *Initial  `json:"initial,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source,omitempty"` // who requested the mutation
}

// Validate checks the event carries the payload its type requires.
func (e *Event) Validate() error {
	switch e.Type {
	case EventNodeAdded, EventNodeRemoved:
		if e.Node == nil {
			return errors.WrapInvalid(errors.ErrInvalidData, "Event", "Validate", "node payload is required")
		}
	case EventEdgeAdded, EventEdgeRemoved:
		if e.Edge == nil {
			return errors.WrapInvalid(errors.ErrInvalidData, "Event", "Validate", "edge payload is required")
		}
	case EventInitialAdded, EventInitialRemoved:
		if e.Initial == nil {
			return errors.WrapInvalid(errors.ErrInvalidData, "Event", "Validate", "initial payload is required")
		}
	default:
		return errors.WrapInvalid(errors.ErrInvalidData, "Event", "Validate", "unknown event type")
	}
	return nil
}

// Source is the contract the network consumes: a snapshot of the current
// topology plus ordered change notifications. Subscribers receive every
// event applied after their subscription, in mutation order, from the
// mutating goroutine.
type Source interface {
	Snapshot() Snapshot
	Subscribe(handler func(Event)) (unsubscribe func())
}
