package core

import "github.com/coachkit/livechat/internal/domain"

// Frame is an encoded wire envelope ready to write to a transport.
type Frame []byte

// SignalConnection abstracts the outbound half of a live transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// Conn is what the registry stores and fans out to: one live duplex
// channel bound to exactly one authenticated user. The user id is
// resolved once at handshake and never changes.
type Conn interface {
	ID() domain.ConnID
	UserID() domain.UserID
	Signal() SignalConnection
}

// PublishResult reports delivery stats/backpressure to the caller.
type PublishResult struct {
	SentTo  int
	Dropped int
}
