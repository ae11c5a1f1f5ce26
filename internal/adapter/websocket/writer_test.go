package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRawConn(t *testing.T) *websocket.Conn {
	t.Helper()

	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestClientWriter_RejectsAfterStop(t *testing.T) {
	cw := newClientWriter(newRawConn(t), nil)

	assert.False(t, cw.closed())
	assert.True(t, cw.enqueue([]byte(`{"type":"status"}`)))

	cw.stop()
	cw.stop()

	assert.True(t, cw.closed())
	assert.False(t, cw.enqueue([]byte(`{"type":"status"}`)))
}

func TestClientWriter_DisconnectsSlowClient(t *testing.T) {
	slow := 0
	// No run loop, so nothing drains the buffer.
	cw := &clientWriter{
		conn:   newRawConn(t),
		sendCh: make(chan []byte, 1),
		done:   make(chan struct{}),
		onSlow: func() { slow++ },
	}

	assert.True(t, cw.enqueue([]byte("first")))
	assert.False(t, cw.enqueue([]byte("second")))

	assert.Equal(t, 1, slow)
	assert.True(t, cw.closed())
	assert.False(t, cw.enqueue([]byte("third")))
	assert.Equal(t, 1, slow)
}
