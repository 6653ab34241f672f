// Package signal carries the websocket side of the live messaging
// subsystem: handshake, per-connection pumps, message dispatch and the
// per-user rate limiter.
package signal

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/coachkit/livechat/internal/core"
	"github.com/coachkit/livechat/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

// wsConn owns the outbound half of one websocket: a buffered send
// channel drained by a single writePump, so the socket never has
// concurrent writers.
type wsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func newWsConn(conn *websocket.Conn) *wsConn {
	return &wsConn{
		conn: conn,
		send: make(chan core.Frame, 32),
	}
}

func (c *wsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

// session is the server-side state of one live connection: the
// identity resolved at handshake plus the at-most-one room it has
// joined. room is touched only from the connection's readPump
// goroutine; room membership itself lives in the registry.
type session struct {
	id     domain.ConnID
	userID domain.UserID
	room   domain.RoomKey
	signal core.SignalConnection
}

func (s *session) ID() domain.ConnID             { return s.id }
func (s *session) UserID() domain.UserID         { return s.userID }
func (s *session) Signal() core.SignalConnection { return s.signal }

func (s *session) inRoom() bool { return s.room != "" }
