package component

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HondryTravis/noflo/errors"
	"github.com/HondryTravis/noflo/packet"
)

// fakeChannel is a minimal in-memory Channel for port tests.
type fakeChannel struct {
	id      string
	packets []*packet.Packet
	pushErr error
}

func (c *fakeChannel) ID() string { return c.id }

func (c *fakeChannel) Push(p *packet.Packet) error {
	if c.pushErr != nil {
		return c.pushErr
	}
	c.packets = append(c.packets, p)
	return nil
}

func (c *fakeChannel) Pop() (*packet.Packet, bool) {
	if len(c.packets) == 0 {
		return nil, false
	}
	p := c.packets[0]
	c.packets = c.packets[1:]
	return p, true
}

func (c *fakeChannel) Len() int { return len(c.packets) }

func TestInputPort_AttachRules(t *testing.T) {
	t.Run("non-addressable rejects second attachment", func(t *testing.T) {
		port := NewInputPort(Port{Name: "in"})

		require.NoError(t, port.Attach(&fakeChannel{id: "a"}))
		err := port.Attach(&fakeChannel{id: "b"})
		require.Error(t, err)
		assert.True(t, errors.IsProtocol(err))
	})

	t.Run("addressable accepts distinct channels", func(t *testing.T) {
		port := NewInputPort(Port{Name: "in", Addressable: true})

		require.NoError(t, port.Attach(&fakeChannel{id: "a"}))
		require.NoError(t, port.Attach(&fakeChannel{id: "b"}))
		require.NoError(t, port.Attach(&fakeChannel{id: "c"}))
		assert.Len(t, port.Channels(), 3)
	})

	t.Run("addressable rejects duplicate identity", func(t *testing.T) {
		port := NewInputPort(Port{Name: "in", Addressable: true})
		ch := &fakeChannel{id: "a"}

		require.NoError(t, port.Attach(ch))
		err := port.Attach(ch)
		require.Error(t, err)
		assert.True(t, errors.IsProtocol(err))
	})

	t.Run("nil channel rejected", func(t *testing.T) {
		port := NewInputPort(Port{Name: "in"})
		assert.Error(t, port.Attach(nil))
	})
}

func TestInputPort_ReceiveFIFO(t *testing.T) {
	port := NewInputPort(Port{Name: "in"})
	ch := &fakeChannel{id: "a"}
	require.NoError(t, port.Attach(ch))

	for _, payload := range []string{"1", "2", "3"} {
		require.NoError(t, ch.Push(packet.NewData(payload)))
	}

	var got []any
	for {
		pkt, ok := port.Receive()
		if !ok {
			break
		}
		got = append(got, pkt.Payload())
	}
	assert.Equal(t, []any{"1", "2", "3"}, got)

	_, ok := port.Receive()
	assert.False(t, ok, "empty port signals no data, not an error")
}

func TestInputPort_Queries(t *testing.T) {
	port := NewInputPort(Port{Name: "in"})
	assert.False(t, port.IsConnected())
	assert.False(t, port.HasData())

	ch := &fakeChannel{id: "a"}
	require.NoError(t, port.Attach(ch))
	assert.True(t, port.IsConnected())
	assert.False(t, port.HasData())

	require.NoError(t, ch.Push(packet.NewData("x")))
	assert.True(t, port.HasData())

	// Queries are side-effect-free.
	assert.True(t, port.HasData())
	assert.Equal(t, 1, ch.Len())
}

func TestInputPort_Detach(t *testing.T) {
	port := NewInputPort(Port{Name: "in", Addressable: true})
	a := &fakeChannel{id: "a"}
	b := &fakeChannel{id: "b"}
	require.NoError(t, port.Attach(a))
	require.NoError(t, port.Attach(b))

	assert.True(t, port.Detach(a))
	assert.False(t, port.Detach(a))
	require.Len(t, port.Channels(), 1)
	assert.Equal(t, "b", port.Channels()[0].ID())
}

func TestOutputPort_SendFanOut(t *testing.T) {
	port := NewOutputPort(Port{Name: "out"})
	a := &fakeChannel{id: "a"}
	b := &fakeChannel{id: "b"}
	require.NoError(t, port.Attach(a))
	require.NoError(t, port.Attach(b))

	original := packet.NewData(map[string]any{"n": 1})
	require.NoError(t, port.Send(original))

	require.Equal(t, 1, a.Len())
	require.Equal(t, 1, b.Len())

	pa, _ := a.Pop()
	pb, _ := b.Pop()

	// Fan-out produces independent instances.
	assert.NotEqual(t, pa.ID(), pb.ID())
	pa.Payload().(map[string]any)["n"] = 99
	assert.Equal(t, 1, pb.Payload().(map[string]any)["n"])
}

func TestOutputPort_SendSingleTransfersOriginal(t *testing.T) {
	port := NewOutputPort(Port{Name: "out"})
	ch := &fakeChannel{id: "a"}
	require.NoError(t, port.Attach(ch))

	original := packet.NewData("payload")
	require.NoError(t, port.Send(original))

	got, ok := ch.Pop()
	require.True(t, ok)
	assert.Equal(t, original.ID(), got.ID())
}

func TestOutputPort_SendErrors(t *testing.T) {
	t.Run("unattached port", func(t *testing.T) {
		port := NewOutputPort(Port{Name: "out"})
		assert.Error(t, port.Send(packet.NewData("x")))
	})

	t.Run("push failure propagates", func(t *testing.T) {
		port := NewOutputPort(Port{Name: "out"})
		failing := &fakeChannel{
			id:      "a",
			pushErr: errors.WrapTransient(errors.ErrBackpressure, "Channel", "Push", "capacity check"),
		}
		require.NoError(t, port.Attach(failing))

		err := port.Send(packet.NewData("x"))
		require.Error(t, err)
		assert.True(t, errors.IsBackpressure(err))
	})
}
