// ABOUTME: Tests for node specifier resolution order and determinism.
// ABOUTME: Exact id, numeric id, short and long names, and tie-breaking.

package gateway

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/mesh-gateway/internal/mesh"
)

func TestResolveNode_ExactID(t *testing.T) {
	g, _, _ := newTestGateway(t)

	node, ok := g.ResolveNode("!MOCKNODE1")
	require.True(t, ok)
	assert.Equal(t, "!MOCKNODE1", node.ID)
}

func TestResolveNode_NumericID(t *testing.T) {
	g, _, _ := newTestGateway(t)

	node, ok := g.ResolveNode("2222")
	require.True(t, ok)
	assert.Equal(t, "!MOCKNODE2", node.ID)
}

func TestResolveNode_ShortNameCaseInsensitive(t *testing.T) {
	g, _, _ := newTestGateway(t)

	node, ok := g.ResolveNode("mk1")
	require.True(t, ok)
	assert.Equal(t, "!MOCKNODE1", node.ID)
}

func TestResolveNode_LongNameCaseInsensitive(t *testing.T) {
	g, _, _ := newTestGateway(t)

	node, ok := g.ResolveNode("mock node two")
	require.True(t, ok)
	assert.Equal(t, "!MOCKNODE2", node.ID)
}

func TestResolveNode_NotFound(t *testing.T) {
	g, _, _ := newTestGateway(t)

	_, ok := g.ResolveNode("nope")
	assert.False(t, ok)
}

func TestResolveNode_IDBeatsName(t *testing.T) {
	g, fm, _ := newTestGateway(t)

	// A node whose short name collides with another node's canonical id
	fm.mu.Lock()
	fm.nodes = append(fm.nodes, &mesh.NodeEntry{
		ID: "!AAAA", Num: 9999, ShortName: "!MOCKNODE1", LastHeard: time.Now(),
	})
	fm.mu.Unlock()

	node, ok := g.ResolveNode("!MOCKNODE1")
	require.True(t, ok)
	assert.Equal(t, "!MOCKNODE1", node.ID, "exact id must win over a short-name match")
}

func TestResolveNode_DuplicateNames_Deterministic(t *testing.T) {
	g, fm, _ := newTestGateway(t)

	fm.mu.Lock()
	fm.nodes = []*mesh.NodeEntry{
		{ID: "!ZZZZ", Num: 1, ShortName: "DUP", LastHeard: time.Now()},
		{ID: "!AAAA", Num: 2, ShortName: "DUP", LastHeard: time.Now()},
	}
	fm.mu.Unlock()

	// Lexicographically smallest canonical id wins the tie
	node, ok := g.ResolveNode("DUP")
	require.True(t, ok)
	assert.Equal(t, "!AAAA", node.ID)
}

func TestResolveNode_Idempotent(t *testing.T) {
	g, _, _ := newTestGateway(t)

	first, ok1 := g.ResolveNode("MK2")
	second, ok2 := g.ResolveNode("MK2")
	require.True(t, ok1)
	require.True(t, ok2)
	assert.Equal(t, first.ID, second.ID)
}
