package hub

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const writeTimeout = 10 * time.Second

// connection is one accepted websocket client. Writes go through mu because
// broadcasts, direct sends, pings and close frames come from different
// goroutines. The message timestamp window is only touched by the
// connection's own read loop.
type connection struct {
	ws       *websocket.Conn
	remoteIP string

	mu    sync.Mutex
	id    string // registered client id, guarded by the hub lock
	times []time.Time

	alive atomic.Bool
}

func newConnection(ws *websocket.Conn, remoteIP string) *connection {
	c := &connection{ws: ws, remoteIP: remoteIP}
	c.alive.Store(true)
	return c
}

func (c *connection) send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

func (c *connection) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
}

// closeWith sends a close frame with the given code and reason, then drops
// the socket.
func (c *connection) closeWith(code int, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg := websocket.FormatCloseMessage(code, reason)
	c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeTimeout))
	c.ws.Close()
}

// terminate drops the socket without a close handshake.
func (c *connection) terminate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ws.Close()
}

// withinRateLimit prunes timestamps older than the window, then admits the
// message only if fewer than limit remain. Called from the read loop only.
func (c *connection) withinRateLimit(limit int, window time.Duration, now time.Time) bool {
	cutoff := now.Add(-window)
	recent := c.times[:0]
	for _, t := range c.times {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}
	c.times = recent
	if len(c.times) >= limit {
		return false
	}
	c.times = append(c.times, now)
	return true
}
