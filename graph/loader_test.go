package graph

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jsonDefinition = `{
  "properties": {"name": "counter-pipeline"},
  "processes": {
    "source": {"component": "core/Inject"},
    "counter": {"component": "core/Counter", "metadata": {"label": "count"}}
  },
  "connections": [
    {"src": {"process": "source", "port": "out"}, "tgt": {"process": "counter", "port": "in"}},
    {"data": "go", "tgt": {"process": "source", "port": "trigger"}}
  ]
}`

const yamlDefinition = `
properties:
  name: counter-pipeline
processes:
  source:
    component: core/Inject
  counter:
    component: core/Counter
connections:
  - src: {process: source, port: out}
    tgt: {process: counter, port: in}
  - data: go
    tgt: {process: source, port: trigger}
`

func TestParseJSON(t *testing.T) {
	g, err := ParseJSON([]byte(jsonDefinition))
	require.NoError(t, err)

	snap := g.Snapshot()
	assert.Equal(t, "counter-pipeline", snap.Name)
	assert.Len(t, snap.Nodes, 2)
	require.Len(t, snap.Edges, 1)
	assert.Equal(t, "source.out->counter.in", snap.Edges[0].Key())
	require.Len(t, snap.Initials, 1)
	assert.Equal(t, "go", snap.Initials[0].Data)

	node, ok := snap.Node("counter")
	require.True(t, ok)
	assert.Equal(t, "count", node.Metadata["label"])
}

func TestParseYAML(t *testing.T) {
	g, err := ParseYAML([]byte(yamlDefinition))
	require.NoError(t, err)

	snap := g.Snapshot()
	assert.Equal(t, "counter-pipeline", snap.Name)
	assert.Len(t, snap.Nodes, 2)
	assert.Len(t, snap.Edges, 1)
	assert.Len(t, snap.Initials, 1)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed json", `{"processes": `},
		{"edge to unknown process", `{
			"processes": {"a": {"component": "c"}},
			"connections": [{"src": {"process": "a", "port": "out"}, "tgt": {"process": "ghost", "port": "in"}}]
		}`},
		{"connection without target", `{
			"processes": {"a": {"component": "c"}},
			"connections": [{"data": 1}]
		}`},
		{"connection without src or data", `{
			"processes": {"a": {"component": "c"}},
			"connections": [{"tgt": {"process": "a", "port": "in"}}]
		}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJSON([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "graph.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(jsonDefinition), 0o600))
	yamlPath := filepath.Join(dir, "graph.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(yamlDefinition), 0o600))

	g, err := LoadFile(jsonPath)
	require.NoError(t, err)
	assert.Len(t, g.Snapshot().Nodes, 2)

	g, err = LoadFile(yamlPath)
	require.NoError(t, err)
	assert.Len(t, g.Snapshot().Nodes, 2)

	_, err = LoadFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	badExt := filepath.Join(dir, "graph.txt")
	require.NoError(t, os.WriteFile(badExt, []byte(jsonDefinition), 0o600))
	_, err = LoadFile(badExt)
	assert.Error(t, err)
}
