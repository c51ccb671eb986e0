// ABOUTME: Tests for the node-directory commands NODES, INFO, and LOCATION.
// ABOUTME: Checks sort order, per-field rendering, and missing-data fallbacks.

package commands

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/mesh-gateway/internal/mesh"
)

func TestNodes_SortedMostRecentFirst(t *testing.T) {
	gw := newFakeGateway()
	rsp := &fakeResponder{}

	require.NoError(t, (&nodesCmd{}).Execute(gw, rsp, "alice", nil))

	out := rsp.joined()
	// Gateway node heard now, MK1 a minute ago, MK2 five minutes ago
	gwIdx := strings.Index(out, "!MYNODEID")
	mk1Idx := strings.Index(out, "!MOCKNODE1")
	mk2Idx := strings.Index(out, "!MOCKNODE2")
	require.True(t, gwIdx >= 0 && mk1Idx >= 0 && mk2Idx >= 0)
	assert.Less(t, gwIdx, mk1Idx)
	assert.Less(t, mk1Idx, mk2Idx)
}

func TestNodes_Empty(t *testing.T) {
	gw := newFakeGateway()
	gw.nodes = nil
	rsp := &fakeResponder{}

	require.NoError(t, (&nodesCmd{}).Execute(gw, rsp, "alice", nil))
	assert.Contains(t, rsp.joined(), "No nodes currently known")
}

func TestNodes_LineFormat(t *testing.T) {
	gw := newFakeGateway()
	rsp := &fakeResponder{}

	require.NoError(t, (&nodesCmd{}).Execute(gw, rsp, "alice", nil))
	assert.Contains(t, rsp.joined(), "Num: 1111 | ID: !MOCKNODE1 | Name: Mock Node One (MK1) | SNR: 8.5")
}

func TestInfo_AllFields(t *testing.T) {
	gw := newFakeGateway()
	rsp := &fakeResponder{}

	require.NoError(t, (&infoCmd{}).Execute(gw, rsp, "alice", []string{"GW"}))

	out := rsp.joined()
	assert.Contains(t, out, "id: !MYNODEID")
	assert.Contains(t, out, "num: 12345678")
	assert.Contains(t, out, "shortName: GW")
	assert.Contains(t, out, "position: Lat 43.65000, Lon -79.38000, Alt 76m")
	assert.Contains(t, out, "metrics: Batt 100%, Volt 4.10V")
}

func TestInfo_NoPositionOrMetrics(t *testing.T) {
	gw := newFakeGateway()
	rsp := &fakeResponder{}

	require.NoError(t, (&infoCmd{}).Execute(gw, rsp, "alice", []string{"MK1"}))

	out := rsp.joined()
	assert.NotContains(t, out, "position:")
	assert.NotContains(t, out, "metrics:")
}

func TestInfo_UnknownNode(t *testing.T) {
	gw := newFakeGateway()
	rsp := &fakeResponder{}

	require.NoError(t, (&infoCmd{}).Execute(gw, rsp, "alice", []string{"nobody"}))
	assert.Contains(t, rsp.joined(), "Could not find node matching 'nobody'")
}

func TestInfo_NoArgs_Usage(t *testing.T) {
	gw := newFakeGateway()
	rsp := &fakeResponder{}

	require.NoError(t, (&infoCmd{}).Execute(gw, rsp, "alice", nil))
	assert.Contains(t, rsp.joined(), "Usage:")
}

func TestLocation_WithFix(t *testing.T) {
	gw := newFakeGateway()
	rsp := &fakeResponder{}

	require.NoError(t, (&locationCmd{}).Execute(gw, rsp, "alice", nil))

	out := rsp.joined()
	assert.Contains(t, out, "Latitude: 43.65000, Longitude: -79.38000")
	assert.Contains(t, out, "Altitude: 76 m")
	assert.Contains(t, out, "https://www.google.com/maps?q=43.65,-79.38")
}

func TestLocation_NoFix(t *testing.T) {
	gw := newFakeGateway()
	for _, n := range gw.nodes {
		n.Position = nil
	}
	rsp := &fakeResponder{}

	require.NoError(t, (&locationCmd{}).Execute(gw, rsp, "alice", nil))
	assert.Contains(t, rsp.joined(), "Location data not available")
}

func TestLocation_GatewayNodeMissing(t *testing.T) {
	gw := newFakeGateway()
	gw.nodes = []*mesh.NodeEntry{}
	rsp := &fakeResponder{}

	require.NoError(t, (&locationCmd{}).Execute(gw, rsp, "alice", nil))
	assert.Contains(t, rsp.joined(), "Location data not available")
}
