// ABOUTME: Tests for the mesh-transmitting commands SEND, DM, PING, and ALARM.
// ABOUTME: Verifies length caps reject before any transport call is made.

package commands

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/mesh-gateway/internal/mesh"
)

func TestSend_Broadcasts(t *testing.T) {
	gw := newFakeGateway()
	rsp := &fakeResponder{}

	err := (&sendCmd{}).Execute(gw, rsp, "alice", []string{"hello", "mesh"})
	require.NoError(t, err)

	require.Equal(t, []string{"hello mesh"}, gw.broadcasts)
	assert.Contains(t, rsp.joined(), "Message sent to mesh channel 0.")
}

func TestSend_NoArgs_Usage(t *testing.T) {
	gw := newFakeGateway()
	rsp := &fakeResponder{}

	require.NoError(t, (&sendCmd{}).Execute(gw, rsp, "alice", nil))
	assert.Contains(t, rsp.joined(), "Usage:")
	assert.Empty(t, gw.broadcasts)
}

func TestSend_TooLong_RejectedBeforeTransport(t *testing.T) {
	gw := newFakeGateway()
	rsp := &fakeResponder{}

	long := strings.Repeat("x", 241)
	require.NoError(t, (&sendCmd{}).Execute(gw, rsp, "alice", []string{long}))

	assert.Contains(t, rsp.joined(), "too long (241 chars)")
	assert.Empty(t, gw.broadcasts, "transport must not be called")
}

func TestSend_WhitespaceOnly_Rejected(t *testing.T) {
	gw := newFakeGateway()
	rsp := &fakeResponder{}

	require.NoError(t, (&sendCmd{}).Execute(gw, rsp, "alice", []string{"  ", " "}))
	assert.Contains(t, rsp.joined(), "cannot be empty")
	assert.Empty(t, gw.broadcasts)
}

func TestSend_TransportError_Returned(t *testing.T) {
	gw := newFakeGateway()
	gw.sendErr = mesh.ErrSendFailed
	rsp := &fakeResponder{}

	err := (&sendCmd{}).Execute(gw, rsp, "alice", []string{"hi"})
	require.ErrorIs(t, err, mesh.ErrSendFailed)
}

func TestAlarm_PrefixesAndCaps(t *testing.T) {
	gw := newFakeGateway()
	rsp := &fakeResponder{}

	require.NoError(t, (&alarmCmd{}).Execute(gw, rsp, "alice", []string{"flood", "warning"}))
	require.Equal(t, []string{"ALARM: flood warning"}, gw.broadcasts)

	// 231 chars exceeds the 230 cap that reserves prefix room
	rsp2 := &fakeResponder{}
	long := strings.Repeat("x", 231)
	require.NoError(t, (&alarmCmd{}).Execute(gw, rsp2, "alice", []string{long}))
	assert.Contains(t, rsp2.joined(), "Maximum is 230 characters")
	assert.Len(t, gw.broadcasts, 1, "transport must not be called again")
}

func TestDM_ResolvesAndRequestsAck(t *testing.T) {
	gw := newFakeGateway()
	rsp := &fakeResponder{}

	require.NoError(t, (&dmCmd{}).Execute(gw, rsp, "alice", []string{"MK1", "hi", "there"}))

	require.Len(t, gw.directed, 1)
	assert.Equal(t, directedSend{text: "hi there", destID: "!MOCKNODE1", wantAck: true}, gw.directed[0])
	assert.Contains(t, rsp.joined(), "Waiting for ACK/NAK")
}

func TestDM_UnknownNode(t *testing.T) {
	gw := newFakeGateway()
	rsp := &fakeResponder{}

	require.NoError(t, (&dmCmd{}).Execute(gw, rsp, "alice", []string{"nope", "hi"}))
	assert.Contains(t, rsp.joined(), "Could not find node matching 'nope'")
	assert.Empty(t, gw.directed)
}

func TestDM_MissingMessage_Usage(t *testing.T) {
	gw := newFakeGateway()
	rsp := &fakeResponder{}

	require.NoError(t, (&dmCmd{}).Execute(gw, rsp, "alice", []string{"MK1"}))
	assert.Contains(t, rsp.joined(), "Usage:")
	assert.Empty(t, gw.directed)
}

func TestDM_TooLong_RejectedBeforeTransport(t *testing.T) {
	gw := newFakeGateway()
	rsp := &fakeResponder{}

	long := strings.Repeat("x", 241)
	require.NoError(t, (&dmCmd{}).Execute(gw, rsp, "alice", []string{"MK1", long}))
	assert.Contains(t, rsp.joined(), "too long")
	assert.Empty(t, gw.directed)
}

func TestPing_SendsProbe(t *testing.T) {
	gw := newFakeGateway()
	rsp := &fakeResponder{}

	require.NoError(t, (&pingCmd{}).Execute(gw, rsp, "alice", []string{"!MOCKNODE2"}))
	require.Equal(t, []string{"!MOCKNODE2"}, gw.pings)
	assert.Contains(t, rsp.joined(), "Waiting for reply (PONG)")
}

func TestPing_UnknownNode(t *testing.T) {
	gw := newFakeGateway()
	rsp := &fakeResponder{}

	require.NoError(t, (&pingCmd{}).Execute(gw, rsp, "alice", []string{"ghost"}))
	assert.Contains(t, rsp.joined(), "Could not find node matching 'ghost'")
	assert.Empty(t, gw.pings)
}
