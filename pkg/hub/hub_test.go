package hub

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-mazerunner/pkg/protocol"
)

var errClosed = errors.New("closed")

// fakeConn feeds queued inbound frames and records outbound text frames.
type fakeConn struct {
	mu      sync.Mutex
	in      chan []byte
	written [][]byte
	kinds   []int
	closed  bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{in: make(chan []byte, 8)}
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	data, ok := <-f.in
	if !ok {
		return 0, nil, errClosed
	}
	return websocket.TextMessage, data, nil
}

func (f *fakeConn) WriteMessage(kind int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return errClosed
	}
	f.kinds = append(f.kinds, kind)
	f.written = append(f.written, append([]byte(nil), data...))
	return nil
}

func (f *fakeConn) SetReadLimit(int64)                {}
func (f *fakeConn) SetReadDeadline(time.Time) error   { return nil }
func (f *fakeConn) SetWriteDeadline(time.Time) error  { return nil }
func (f *fakeConn) SetPongHandler(func(string) error) {}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// hangUp simulates the peer closing the connection.
func (f *fakeConn) hangUp() { close(f.in) }

func (f *fakeConn) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for i, w := range f.written {
		if f.kinds[i] == websocket.TextMessage {
			out = append(out, string(w))
		}
	}
	return out
}

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	h := New("test")
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	require.Eventually(t, h.IsRunning, time.Second, 5*time.Millisecond)
	t.Cleanup(cancel)
	return h, cancel
}

func TestBroadcastReachesClients(t *testing.T) {
	h, _ := startHub(t)

	a, b := newFakeConn(), newFakeConn()
	go NewClient(h, a).Run()
	go NewClient(h, b).Run()
	require.Eventually(t, func() bool { return h.ClientCount() == 2 }, time.Second, 5*time.Millisecond)

	h.Broadcast(Message{Type: protocol.TypeGoal, Data: []byte(`{"type":"goal"}`)})

	for _, c := range []*fakeConn{a, b} {
		require.Eventually(t, func() bool { return len(c.texts()) == 1 }, time.Second, 5*time.Millisecond)
		assert.Equal(t, `{"type":"goal"}`, c.texts()[0])
	}
}

func TestInitialMessagesComeFirst(t *testing.T) {
	h, _ := startHub(t)

	conn := newFakeConn()
	go NewClient(h, conn, Message{Type: protocol.TypeStatus, Data: []byte("status")}).Run()
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	h.Broadcast(Message{Type: protocol.TypeDecision, Data: []byte("decision")})

	require.Eventually(t, func() bool { return len(conn.texts()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"status", "decision"}, conn.texts())
}

func TestDisconnectUnregisters(t *testing.T) {
	h, _ := startHub(t)

	conn := newFakeConn()
	go NewClient(h, conn).Run()
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	conn.hangUp()
	require.Eventually(t, func() bool { return h.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestHandlerReceivesInbound(t *testing.T) {
	h := New("test")
	got := make(chan string, 1)
	h.SetHandler(func(c *Client, data []byte) {
		got <- string(data)
		c.Send(Message{Type: protocol.TypePong, Data: []byte("pong")})
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	conn := newFakeConn()
	go NewClient(h, conn).Run()
	conn.in <- []byte("ping")

	select {
	case data := <-got:
		assert.Equal(t, "ping", data)
	case <-time.After(time.Second):
		t.Fatal("handler not called")
	}
	require.Eventually(t, func() bool { return len(conn.texts()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "pong", conn.texts()[0])
}

func TestStopDisconnectsClients(t *testing.T) {
	h, cancel := startHub(t)

	conn := newFakeConn()
	go NewClient(h, conn).Run()
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	require.Eventually(t, func() bool { return !h.IsRunning() }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, h.ClientCount())

	// Registering after shutdown must not block.
	done := make(chan struct{})
	go func() {
		NewClient(h, newFakeConn())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("NewClient blocked on a stopped hub")
	}
}

func TestBroadcastMessageEncodes(t *testing.T) {
	h, _ := startHub(t)

	conn := newFakeConn()
	go NewClient(h, conn).Run()
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	msg, err := protocol.NewEventMessage(protocol.TypeOptimized, protocol.EventData{RunID: "r", Path: "RLS"})
	require.NoError(t, err)
	require.NoError(t, h.BroadcastMessage(msg))

	require.Eventually(t, func() bool { return len(conn.texts()) == 1 }, time.Second, 5*time.Millisecond)
	parsed, err := protocol.ParseMessage([]byte(conn.texts()[0]))
	require.NoError(t, err)
	data, err := parsed.GetEventData()
	require.NoError(t, err)
	assert.Equal(t, "RLS", data.Path)
}
