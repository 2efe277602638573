package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HondryTravis/noflo/errors"
)

func TestGraph_AddAndSnapshot(t *testing.T) {
	g := New("pipeline")

	require.NoError(t, g.AddNode("a", "core/Inject", nil))
	require.NoError(t, g.AddNode("b", "core/Repeat", map[string]any{"x": 1}))
	require.NoError(t, g.AddEdge(Edge{
		From: Endpoint{Node: "a", Port: "out"},
		To:   Endpoint{Node: "b", Port: "in"},
	}))
	require.NoError(t, g.AddInitial(Initial{
		To:   Endpoint{Node: "b", Port: "in"},
		Data: "hello",
	}))

	snap := g.Snapshot()
	assert.Equal(t, "pipeline", snap.Name)
	require.Len(t, snap.Nodes, 2)
	assert.Equal(t, "a", snap.Nodes[0].ID)
	assert.Equal(t, "b", snap.Nodes[1].ID)
	require.Len(t, snap.Edges, 1)
	assert.Equal(t, "a.out->b.in", snap.Edges[0].Key())
	require.Len(t, snap.Initials, 1)
	assert.Equal(t, "hello", snap.Initials[0].Data)

	node, ok := snap.Node("b")
	require.True(t, ok)
	assert.Equal(t, "core/Repeat", node.Component)
}

func TestGraph_Validation(t *testing.T) {
	g := New("")
	require.NoError(t, g.AddNode("a", "core/Inject", nil))

	tests := []struct {
		name string
		op   func() error
	}{
		{"empty node id", func() error { return g.AddNode("", "c", nil) }},
		{"empty component", func() error { return g.AddNode("x", "", nil) }},
		{"duplicate node", func() error { return g.AddNode("a", "c", nil) }},
		{"edge from unknown node", func() error {
			return g.AddEdge(Edge{From: Endpoint{Node: "nope", Port: "out"}, To: Endpoint{Node: "a", Port: "in"}})
		}},
		{"edge to unknown node", func() error {
			return g.AddEdge(Edge{From: Endpoint{Node: "a", Port: "out"}, To: Endpoint{Node: "nope", Port: "in"}})
		}},
		{"initial to unknown node", func() error {
			return g.AddInitial(Initial{To: Endpoint{Node: "nope", Port: "in"}, Data: 1})
		}},
		{"remove unknown node", func() error { return g.RemoveNode("nope") }},
		{"remove unknown edge", func() error {
			return g.RemoveEdge(Edge{From: Endpoint{Node: "a", Port: "out"}, To: Endpoint{Node: "a", Port: "in"}})
		}},
		{"remove unknown initial", func() error {
			return g.RemoveInitial(Endpoint{Node: "a", Port: "in"})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.op()
			require.Error(t, err)
			assert.True(t, errors.IsInvalid(err))
		})
	}
}

func TestGraph_EventsInMutationOrder(t *testing.T) {
	g := New("")

	var types []EventType
	unsubscribe := g.Subscribe(func(e Event) {
		require.NoError(t, e.Validate())
		types = append(types, e.Type)
	})
	defer unsubscribe()

	require.NoError(t, g.AddNode("a", "core/Inject", nil))
	require.NoError(t, g.AddNode("b", "core/Repeat", nil))
	require.NoError(t, g.AddEdge(Edge{
		From: Endpoint{Node: "a", Port: "out"},
		To:   Endpoint{Node: "b", Port: "in"},
	}))
	require.NoError(t, g.AddInitial(Initial{To: Endpoint{Node: "b", Port: "in"}, Data: 1}))
	require.NoError(t, g.RemoveEdge(Edge{
		From: Endpoint{Node: "a", Port: "out"},
		To:   Endpoint{Node: "b", Port: "in"},
	}))

	assert.Equal(t, []EventType{
		EventNodeAdded,
		EventNodeAdded,
		EventEdgeAdded,
		EventInitialAdded,
		EventEdgeRemoved,
	}, types)
}

func TestGraph_RemoveNodeCascades(t *testing.T) {
	g := New("")
	require.NoError(t, g.AddNode("a", "core/Inject", nil))
	require.NoError(t, g.AddNode("b", "core/Repeat", nil))
	require.NoError(t, g.AddEdge(Edge{
		From: Endpoint{Node: "a", Port: "out"},
		To:   Endpoint{Node: "b", Port: "in"},
	}))
	require.NoError(t, g.AddInitial(Initial{To: Endpoint{Node: "b", Port: "in"}, Data: 1}))

	var types []EventType
	unsubscribe := g.Subscribe(func(e Event) { types = append(types, e.Type) })
	defer unsubscribe()

	require.NoError(t, g.RemoveNode("b"))

	// Wiring teardown events come before the node removal.
	assert.Equal(t, []EventType{EventEdgeRemoved, EventInitialRemoved, EventNodeRemoved}, types)

	snap := g.Snapshot()
	assert.Len(t, snap.Nodes, 1)
	assert.Empty(t, snap.Edges)
	assert.Empty(t, snap.Initials)
}

func TestGraph_Unsubscribe(t *testing.T) {
	g := New("")

	count := 0
	unsubscribe := g.Subscribe(func(Event) { count++ })

	require.NoError(t, g.AddNode("a", "core/Inject", nil))
	unsubscribe()
	require.NoError(t, g.AddNode("b", "core/Repeat", nil))

	assert.Equal(t, 1, count)
}

func TestEndpoint_String(t *testing.T) {
	idx := 2
	assert.Equal(t, "a.out", Endpoint{Node: "a", Port: "out"}.String())
	assert.Equal(t, "a.out[2]", Endpoint{Node: "a", Port: "out", Index: &idx}.String())
}
