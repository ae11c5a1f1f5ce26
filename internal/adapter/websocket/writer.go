package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	sendBufferSize = 16
	writeWait      = 5 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
)

// clientWriter owns all writes to one connection. enqueue never blocks; a
// client whose buffer is full is considered too slow and is disconnected.
type clientWriter struct {
	conn   *websocket.Conn
	sendCh chan []byte
	done   chan struct{}
	once   sync.Once
	onSlow func()
}

func newClientWriter(conn *websocket.Conn, onSlow func()) *clientWriter {
	cw := &clientWriter{
		conn:   conn,
		sendCh: make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
		onSlow: onSlow,
	}
	go cw.run()
	return cw
}

func (cw *clientWriter) run() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg := <-cw.sendCh:
			_ = cw.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cw.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				cw.stop()
				return
			}
		case <-ticker.C:
			_ = cw.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cw.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				cw.stop()
				return
			}
		case <-cw.done:
			return
		}
	}
}

// enqueue reports whether msg was accepted.
func (cw *clientWriter) enqueue(msg []byte) bool {
	if cw.closed() {
		return false
	}

	select {
	case cw.sendCh <- msg:
		return true
	default:
		if cw.onSlow != nil {
			cw.onSlow()
		}
		cw.stop()
		return false
	}
}

func (cw *clientWriter) stop() {
	cw.once.Do(func() {
		close(cw.done)
		cw.conn.Close()
	})
}

func (cw *clientWriter) closed() bool {
	select {
	case <-cw.done:
		return true
	default:
		return false
	}
}
