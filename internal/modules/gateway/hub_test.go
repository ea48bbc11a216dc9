package gateway

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/echoverse/core/internal/pkg/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testPeer struct {
	client *Client
	conn   net.Conn
	buf    []byte
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(nil, ratelimit.New(nil), zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func connectPeer(t *testing.T, hub *Hub, userID string) *testPeer {
	t.Helper()
	server, client := net.Pipe()
	c := newClient("client-"+userID, userID, "127.0.0.1", server, hub)
	hub.register <- c
	go c.writeLoop()
	go c.readLoop()
	return &testPeer{client: c, conn: client}
}

// readEnvelope pulls the next complete text frame off the wire.
func (p *testPeer) readEnvelope(t *testing.T) Envelope {
	t.Helper()
	p.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	chunk := make([]byte, 4096)
	for {
		if frame, consumed := DecodeFrame(p.buf); frame != nil {
			p.buf = p.buf[consumed:]
			var env Envelope
			require.NoError(t, json.Unmarshal(frame.Payload, &env))
			return env
		}
		n, err := p.conn.Read(chunk)
		require.NoError(t, err)
		p.buf = append(p.buf, chunk[:n]...)
	}
}

func TestConnectedEventOnRegister(t *testing.T) {
	hub := startHub(t)
	peer := connectPeer(t, hub, "u-1")
	defer peer.conn.Close()

	env := peer.readEnvelope(t)
	assert.Equal(t, EventConnected, env.Type)
	data, ok := env.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "client-u-1", data["clientId"])
}

func TestBroadcastExcludesSender(t *testing.T) {
	hub := startHub(t)
	alice := connectPeer(t, hub, "alice")
	bob := connectPeer(t, hub, "bob")
	defer alice.conn.Close()
	defer bob.conn.Close()

	alice.readEnvelope(t)
	bob.readEnvelope(t)

	hub.BroadcastExcludingUser("post.new", map[string]interface{}{"id": "p-1"}, "alice")

	env := bob.readEnvelope(t)
	assert.Equal(t, "post.new", env.Type)

	// Alice must not see her own post echoed; the next thing on her wire
	// is a directed event sent afterwards.
	hub.SendToUser("alice", "marker", nil)
	env = alice.readEnvelope(t)
	assert.Equal(t, "marker", env.Type)
}

// A hub without Redis (single-instance deployments, every test here) must
// still fan out local broadcasts instead of dereferencing a nil client.
func TestBroadcastWithoutRedis(t *testing.T) {
	hub := startHub(t)
	peer := connectPeer(t, hub, "u-1")
	defer peer.conn.Close()

	peer.readEnvelope(t)

	hub.Broadcast("post.new", map[string]interface{}{"id": "p-9"}, "")
	env := peer.readEnvelope(t)
	assert.Equal(t, "post.new", env.Type)
}

func TestSendToUnknownUserIsNoop(t *testing.T) {
	hub := startHub(t)
	hub.SendToUser("nobody", "message.new", nil)
	hub.SendToClient("nobody", "message.new", nil)
}

func TestPresenceOfflineOnDisconnect(t *testing.T) {
	hub := startHub(t)
	alice := connectPeer(t, hub, "alice")
	bob := connectPeer(t, hub, "bob")
	defer bob.conn.Close()

	alice.readEnvelope(t)
	bob.readEnvelope(t)

	alice.conn.Close()

	env := bob.readEnvelope(t)
	assert.Equal(t, EventPresenceOffline, env.Type)
	data, ok := env.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "client-alice", data["clientId"])
}

// A frame queued for a client after its unregister completed must be
// dropped silently. The read loop can still be answering a buffered ping,
// and handlers holding a client reference can race the teardown.
func TestEnqueueAfterDisconnectIsDropped(t *testing.T) {
	hub := startHub(t)
	alice := connectPeer(t, hub, "alice")
	bob := connectPeer(t, hub, "bob")
	defer bob.conn.Close()

	alice.readEnvelope(t)
	bob.readEnvelope(t)

	alice.conn.Close()

	// Bob's presence event means alice's unregister has fully run.
	env := bob.readEnvelope(t)
	require.Equal(t, EventPresenceOffline, env.Type)

	alice.client.enqueue(pongFrame())
	hub.SendToUser("alice", "message.new", nil)

	// The hub is still healthy for everyone else.
	hub.SendToUser("bob", "still.alive", nil)
	env = bob.readEnvelope(t)
	assert.Equal(t, "still.alive", env.Type)
}

func TestPingGetsPong(t *testing.T) {
	hub := startHub(t)
	peer := connectPeer(t, hub, "u-1")
	defer peer.conn.Close()

	peer.readEnvelope(t)

	ping := maskedFrame(nil)
	ping[0] = 0x89
	_, err := peer.conn.Write(ping)
	require.NoError(t, err)

	peer.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	chunk := make([]byte, 16)
	for {
		if frame, consumed := DecodeFrame(peer.buf); frame != nil {
			peer.buf = peer.buf[consumed:]
			assert.Equal(t, OpPong, frame.Opcode)
			return
		}
		n, err := peer.conn.Read(chunk)
		require.NoError(t, err)
		peer.buf = append(peer.buf, chunk[:n]...)
	}
}

func TestMalformedEventIsDroppedWithoutClosing(t *testing.T) {
	hub := startHub(t)
	peer := connectPeer(t, hub, "u-1")
	defer peer.conn.Close()

	peer.readEnvelope(t)

	_, err := peer.conn.Write(maskedFrame([]byte("this is not json")))
	require.NoError(t, err)

	// The connection survives and still receives directed events.
	hub.SendToUser("u-1", "still.alive", nil)
	env := peer.readEnvelope(t)
	assert.Equal(t, "still.alive", env.Type)
}
