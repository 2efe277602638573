package packet

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected string
	}{
		{KindData, "data"},
		{KindOpenBracket, "openBracket"},
		{KindCloseBracket, "closeBracket"},
		{Kind(999), "unknown"},
	}

	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			assert.Equal(t, test.expected, test.kind.String())
		})
	}
}

func TestNewData(t *testing.T) {
	p := NewData("hello")

	assert.NotEmpty(t, p.ID())
	assert.Equal(t, KindData, p.Kind())
	assert.Equal(t, "hello", p.Payload())
	assert.Empty(t, p.Scope())
	assert.Equal(t, -1, p.Index())
	assert.Empty(t, p.Owner())
}

func TestBrackets(t *testing.T) {
	open := NewOpenBracket("batch-1")
	closeBracket := NewCloseBracket("batch-1")

	assert.Equal(t, KindOpenBracket, open.Kind())
	assert.Equal(t, KindCloseBracket, closeBracket.Kind())
	assert.Equal(t, "batch-1", open.Scope())
	assert.Nil(t, open.Payload())
}

func TestTransferOwnership(t *testing.T) {
	p := NewData(42)
	p.TransferOwnership("node-a")
	assert.Equal(t, "node-a", p.Owner())

	p.TransferOwnership("node-b")
	assert.Equal(t, "node-b", p.Owner())
}

func TestClone_IndependentIdentity(t *testing.T) {
	p := NewData("payload")
	p.TransferOwnership("producer")
	p.SetIndex(2)

	clone := p.Clone()

	assert.NotEqual(t, p.ID(), clone.ID())
	assert.Equal(t, p.Kind(), clone.Kind())
	assert.Equal(t, p.Payload(), clone.Payload())
	assert.Equal(t, p.Index(), clone.Index())
	assert.Empty(t, clone.Owner(), "clone starts unowned")
}

func TestClone_DeepCopiesPayload(t *testing.T) {
	payload := map[string]any{
		"tags":   []any{"a", "b"},
		"nested": map[string]any{"count": 1},
	}
	p := NewData(payload)

	clone := p.Clone()
	cloned, ok := clone.Payload().(map[string]any)
	require.True(t, ok)

	// Mutating the clone must not leak into the original.
	cloned["tags"].([]any)[0] = "mutated"
	cloned["nested"].(map[string]any)["count"] = 99

	assert.Equal(t, "a", payload["tags"].([]any)[0])
	assert.Equal(t, 1, payload["nested"].(map[string]any)["count"])
}

func TestMarshalJSON_WireShape(t *testing.T) {
	p := NewData("hello")
	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"data","payload":"hello"}`, string(data))

	open := NewOpenBracket("s1")
	open.SetIndex(0)
	data, err = json.Marshal(open)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"openBracket","scope":"s1","index":0}`, string(data))
}

func TestUnmarshalJSON(t *testing.T) {
	var p Packet
	err := json.Unmarshal([]byte(`{"type":"closeBracket","scope":"s1","index":3}`), &p)
	require.NoError(t, err)

	assert.Equal(t, KindCloseBracket, p.Kind())
	assert.Equal(t, "s1", p.Scope())
	assert.Equal(t, 3, p.Index())
	assert.NotEmpty(t, p.ID())
	assert.Empty(t, p.Owner())
}

func TestUnmarshalJSON_UnknownType(t *testing.T) {
	var p Packet
	err := json.Unmarshal([]byte(`{"type":"bogus"}`), &p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown packet type")
}
