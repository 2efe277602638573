package graph

import (
	"fmt"
	"sync"
	"time"

	"github.com/HondryTravis/noflo/errors"
)

// Graph is the in-memory Source implementation. A single mutex
// serializes mutations; each mutation is fully applied to the node,
// edge and initial tables before its event reaches subscribers.
type Graph struct {
	name string

	mu          sync.Mutex
	nodes       map[string]Node
	nodeOrder   []string
	edges       map[string]Edge
	edgeOrder   []string
	initials    map[string]Initial
	initOrder   []string
	subscribers map[int]func(Event)
	subOrder    []int
	nextSub     int
}

// New creates an empty named graph.
func New(name string) *Graph {
	return &Graph{
		name:        name,
		nodes:       make(map[string]Node),
		edges:       make(map[string]Edge),
		initials:    make(map[string]Initial),
		subscribers: make(map[int]func(Event)),
	}
}

// Name returns the graph name.
func (g *Graph) Name() string { return g.name }

// Snapshot returns a copy of the current topology in insertion order.
func (g *Graph) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	snap := Snapshot{
		Name:     g.name,
		Nodes:    make([]Node, 0, len(g.nodeOrder)),
		Edges:    make([]Edge, 0, len(g.edgeOrder)),
		Initials: make([]Initial, 0, len(g.initOrder)),
	}
	for _, id := range g.nodeOrder {
		snap.Nodes = append(snap.Nodes, g.nodes[id])
	}
	for _, key := range g.edgeOrder {
		snap.Edges = append(snap.Edges, g.edges[key])
	}
	for _, key := range g.initOrder {
		snap.Initials = append(snap.Initials, g.initials[key])
	}
	return snap
}

// Subscribe registers a handler for subsequent mutations. Handlers run
// on the mutating goroutine in registration order; they must not mutate
// the graph reentrantly.
func (g *Graph) Subscribe(handler func(Event)) func() {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.nextSub
	g.nextSub++
	g.subscribers[id] = handler
	g.subOrder = append(g.subOrder, id)

	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		delete(g.subscribers, id)
		for i, sub := range g.subOrder {
			if sub == id {
				g.subOrder = append(g.subOrder[:i], g.subOrder[i+1:]...)
				break
			}
		}
	}
}

// publish delivers an event to every subscriber. Caller holds g.mu, so
// events arrive in mutation order.
func (g *Graph) publish(event Event) {
	event.Timestamp = time.Now()
	for _, id := range g.subOrder {
		g.subscribers[id](event)
	}
}

// AddNode adds a node bound to the named component type.
func (g *Graph) AddNode(id, componentName string, metadata map[string]any) error {
	if id == "" || componentName == "" {
		return errors.WrapInvalid(errors.ErrInvalidData, "Graph", "AddNode", "node identity validation")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.nodes[id]; exists {
		return errors.WrapInvalid(
			fmt.Errorf("node %q already exists", id),
			"Graph", "AddNode", "duplicate node check")
	}

	node := Node{ID: id, Component: componentName, Metadata: metadata}
	g.nodes[id] = node
	g.nodeOrder = append(g.nodeOrder, id)

	g.publish(Event{Type: EventNodeAdded, Node: &node})
	return nil
}

// RemoveNode removes a node along with every edge and initial touching
// it. Edge and initial removal events are published before the node
// removal so consumers tear down wiring first.
func (g *Graph) RemoveNode(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	node, exists := g.nodes[id]
	if !exists {
		return errors.WrapInvalid(
			fmt.Errorf("node %q not found", id),
			"Graph", "RemoveNode", "node lookup")
	}

	for _, key := range append([]string(nil), g.edgeOrder...) {
		edge := g.edges[key]
		if edge.From.Node == id || edge.To.Node == id {
			g.removeEdgeLocked(key)
		}
	}
	for _, key := range append([]string(nil), g.initOrder...) {
		initial := g.initials[key]
		if initial.To.Node == id {
			g.removeInitialLocked(key)
		}
	}

	delete(g.nodes, id)
	for i, nid := range g.nodeOrder {
		if nid == id {
			g.nodeOrder = append(g.nodeOrder[:i], g.nodeOrder[i+1:]...)
			break
		}
	}

	g.publish(Event{Type: EventNodeRemoved, Node: &node})
	return nil
}

// AddEdge connects an output endpoint to an input endpoint. Both nodes
// must exist.
func (g *Graph) AddEdge(edge Edge) error {
	if edge.From.Node == "" || edge.From.Port == "" || edge.To.Node == "" || edge.To.Port == "" {
		return errors.WrapInvalid(errors.ErrInvalidData, "Graph", "AddEdge", "endpoint validation")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.nodes[edge.From.Node]; !exists {
		return errors.WrapInvalid(
			fmt.Errorf("source node %q not found", edge.From.Node),
			"Graph", "AddEdge", "source node lookup")
	}
	if _, exists := g.nodes[edge.To.Node]; !exists {
		return errors.WrapInvalid(
			fmt.Errorf("target node %q not found", edge.To.Node),
			"Graph", "AddEdge", "target node lookup")
	}

	key := edge.Key()
	if _, exists := g.edges[key]; exists {
		return errors.WrapInvalid(
			fmt.Errorf("edge %s already exists", key),
			"Graph", "AddEdge", "duplicate edge check")
	}

	g.edges[key] = edge
	g.edgeOrder = append(g.edgeOrder, key)

	g.publish(Event{Type: EventEdgeAdded, Edge: &edge})
	return nil
}

// RemoveEdge removes the edge with the same endpoints as the argument.
func (g *Graph) RemoveEdge(edge Edge) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := edge.Key()
	if _, exists := g.edges[key]; !exists {
		return errors.WrapInvalid(
			fmt.Errorf("edge %s not found", key),
			"Graph", "RemoveEdge", "edge lookup")
	}

	g.removeEdgeLocked(key)
	return nil
}

func (g *Graph) removeEdgeLocked(key string) {
	edge := g.edges[key]
	delete(g.edges, key)
	for i, k := range g.edgeOrder {
		if k == key {
			g.edgeOrder = append(g.edgeOrder[:i], g.edgeOrder[i+1:]...)
			break
		}
	}
	g.publish(Event{Type: EventEdgeRemoved, Edge: &edge})
}

// AddInitial declares a startup packet for an input endpoint. The target
// node must exist.
func (g *Graph) AddInitial(initial Initial) error {
	if initial.To.Node == "" || initial.To.Port == "" {
		return errors.WrapInvalid(errors.ErrInvalidData, "Graph", "AddInitial", "endpoint validation")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.nodes[initial.To.Node]; !exists {
		return errors.WrapInvalid(
			fmt.Errorf("target node %q not found", initial.To.Node),
			"Graph", "AddInitial", "target node lookup")
	}

	key := initial.Key()
	if _, exists := g.initials[key]; exists {
		return errors.WrapInvalid(
			fmt.Errorf("initial for %s already exists", initial.To),
			"Graph", "AddInitial", "duplicate initial check")
	}

	g.initials[key] = initial
	g.initOrder = append(g.initOrder, key)

	g.publish(Event{Type: EventInitialAdded, Initial: &initial})
	return nil
}

// RemoveInitial withdraws the startup packet for an input endpoint.
func (g *Graph) RemoveInitial(to Endpoint) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := Initial{To: to}.Key()
	if _, exists := g.initials[key]; !exists {
		return errors.WrapInvalid(
			fmt.Errorf("initial for %s not found", to),
			"Graph", "RemoveInitial", "initial lookup")
	}

	g.removeInitialLocked(key)
	return nil
}

func (g *Graph) removeInitialLocked(key string) {
	initial := g.initials[key]
	delete(g.initials, key)
	for i, k := range g.initOrder {
		if k == key {
			g.initOrder = append(g.initOrder[:i], g.initOrder[i+1:]...)
			break
		}
	}
	g.publish(Event{Type: EventInitialRemoved, Initial: &initial})
}
