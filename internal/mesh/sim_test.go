// ABOUTME: Tests for the simulated mesh backend.
// ABOUTME: Validates node snapshots, ping replies, traffic generation, and close semantics.

package mesh

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSimulator_Nodes_Snapshot(t *testing.T) {
	sim := NewSimulator(testLogger())
	defer sim.Close()

	nodes := sim.Nodes()
	require.Len(t, nodes, 3)

	// Mutating a snapshot must not leak back into the table
	for _, n := range nodes {
		n.ShortName = "MUTATED"
	}
	for _, n := range sim.Nodes() {
		assert.NotEqual(t, "MUTATED", n.ShortName)
	}
}

func TestSimulator_OwnIdentity(t *testing.T) {
	sim := NewSimulator(testLogger())
	defer sim.Close()

	id := sim.OwnIdentity()
	assert.Equal(t, "!MYNODEID", id.ID)
	assert.Equal(t, uint32(12345678), id.Num)
}

func TestSimulator_SendPing_UnknownNode(t *testing.T) {
	sim := NewSimulator(testLogger())
	defer sim.Close()

	err := sim.SendPing("!NOPE")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownNode)
}

func TestSimulator_SendPing_ReplyArrives(t *testing.T) {
	sim := NewSimulator(testLogger())
	defer sim.Close()
	sim.pongDelay = 5 * time.Millisecond

	events := make(chan *Event, 4)
	sim.Subscribe(func(ev *Event) { events <- ev })

	require.NoError(t, sim.SendPing("!MOCKNODE1"))

	select {
	case ev := <-events:
		assert.Equal(t, KindPingReply, ev.Kind)
		assert.Equal(t, "!MOCKNODE1", ev.From)
		assert.Equal(t, "12345678", ev.To)
		assert.False(t, ev.Broadcast)
		assert.NotEmpty(t, ev.Payload)
		assert.NotEmpty(t, ev.ID)
	case <-time.After(time.Second):
		t.Fatal("no ping reply within deadline")
	}
}

func TestSimulator_GeneratedTraffic(t *testing.T) {
	sim := NewSimulator(testLogger())
	defer sim.Close()
	sim.messageEvery = 5 * time.Millisecond

	events := make(chan *Event, 16)
	sim.Subscribe(func(ev *Event) { events <- ev })
	sim.Start()

	var sawText, sawUpdate bool
	deadline := time.After(2 * time.Second)
	for !(sawText && sawUpdate) {
		select {
		case ev := <-events:
			switch ev.Kind {
			case KindText:
				assert.True(t, ev.Broadcast)
				assert.Equal(t, "!MOCKNODE1", ev.From)
				assert.Contains(t, ev.Text, "Simulated mesh message")
				sawText = true
			case KindNodeUpdated:
				require.NotNil(t, ev.Node)
				assert.Equal(t, "!MOCKNODE1", ev.Node.ID)
				sawUpdate = true
			}
		case <-deadline:
			t.Fatal("expected simulated text and node-updated events")
		}
	}
}

func TestSimulator_NewNodeAppears(t *testing.T) {
	sim := NewSimulator(testLogger())
	defer sim.Close()
	sim.newNodeAfter = 5 * time.Millisecond

	events := make(chan *Event, 4)
	sim.Subscribe(func(ev *Event) { events <- ev })
	go sim.appearNewNode()

	select {
	case ev := <-events:
		assert.Equal(t, KindNodeUpdated, ev.Kind)
		require.NotNil(t, ev.Node)
		assert.Equal(t, "!NEWNODE3", ev.Node.ID)
	case <-time.After(time.Second):
		t.Fatal("new node never announced")
	}

	require.Len(t, sim.Nodes(), 4)
}

func TestSimulator_Close_Idempotent(t *testing.T) {
	sim := NewSimulator(testLogger())
	require.NoError(t, sim.Close())
	require.NoError(t, sim.Close())
}

func TestNodeEntry_DisplayName(t *testing.T) {
	assert.Equal(t, "MK1", (&NodeEntry{ID: "!A", ShortName: "MK1", LongName: "Mock"}).DisplayName())
	assert.Equal(t, "Mock", (&NodeEntry{ID: "!A", LongName: "Mock"}).DisplayName())
	assert.Equal(t, "!A", (&NodeEntry{ID: "!A"}).DisplayName())
}
