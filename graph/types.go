package graph

import "fmt"

// Node is a named graph vertex bound to a component type.
type Node struct {
	ID        string         `json:"id"`
	Component string         `json:"component"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Endpoint addresses one port on one node. Index targets a position on
// an addressable port; nil means unindexed.
type Endpoint struct {
	Node  string `json:"node"`
	Port  string `json:"port"`
	Index *int   `json:"index,omitempty"`
}

// String renders the endpoint as node.port or node.port[index].
func (e Endpoint) String() string {
	if e.Index != nil {
		return fmt.Sprintf("%s.%s[%d]", e.Node, e.Port, *e.Index)
	}
	return fmt.Sprintf("%s.%s", e.Node, e.Port)
}

// Edge is a directed connection from an output endpoint to an input
// endpoint.
type Edge struct {
	From     Endpoint       `json:"from"`
	To       Endpoint       `json:"to"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Key returns the edge's identity within a graph. Two edges with the
// same endpoints (including index) are the same edge.
func (e Edge) Key() string {
	return fmt.Sprintf("%s->%s", e.From, e.To)
}

// Initial is a packet injected on an input endpoint at network startup,
// with no preceding producer activation.
type Initial struct {
	To   Endpoint `json:"to"`
	Data any      `json:"data"`
}

// Key returns the initial's identity within a graph.
func (i Initial) Key() string {
	return fmt.Sprintf("initial->%s", i.To)
}

// Snapshot is a point-in-time copy of a graph's topology. The slices are
// owned by the caller; mutating them does not affect the graph.
type Snapshot struct {
	Name     string    `json:"name,omitempty"`
	Nodes    []Node    `json:"nodes"`
	Edges    []Edge    `json:"edges"`
	Initials []Initial `json:"initials"`
}

// Node looks up a node in the snapshot by ID.
func (s Snapshot) Node(id string) (Node, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}
