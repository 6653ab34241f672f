package core

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coachkit/livechat/internal/domain"
)

type mockConn struct {
	id   domain.ConnID
	user domain.UserID

	mu      sync.Mutex
	frames  []Frame
	sendErr error
}

func (m *mockConn) ID() domain.ConnID        { return m.id }
func (m *mockConn) UserID() domain.UserID    { return m.user }
func (m *mockConn) Signal() SignalConnection { return m }

func (m *mockConn) TrySend(f Frame) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.frames = append(m.frames, f)
	return nil
}

func (m *mockConn) Close() {}

func (m *mockConn) received() []Frame {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frames
}

func TestRegistry_BroadcastExcludesSender(t *testing.T) {
	r := NewRoomRegistry()
	key := domain.RoomKeyFor("coach-1", "client-9")

	sender := &mockConn{id: "c1", user: "coach-1"}
	other1 := &mockConn{id: "c2", user: "coach-1"}
	other2 := &mockConn{id: "c3", user: "coach-1"}
	r.Join(sender, key)
	r.Join(other1, key)
	r.Join(other2, key)

	res := r.Broadcast(key, Frame("hello"), sender.ID())

	assert.Equal(t, 2, res.SentTo)
	assert.Empty(t, sender.received())
	assert.Len(t, other1.received(), 1)
	assert.Len(t, other2.received(), 1)
}

func TestRegistry_BroadcastIsRoomScoped(t *testing.T) {
	r := NewRoomRegistry()
	inRoom := &mockConn{id: "c1", user: "coach-1"}
	elsewhere := &mockConn{id: "c2", user: "coach-2"}
	r.Join(inRoom, domain.RoomKeyFor("coach-1", "client-9"))
	r.Join(elsewhere, domain.RoomKeyFor("coach-2", "client-3"))

	sender := &mockConn{id: "c3", user: "coach-1"}
	r.Join(sender, domain.RoomKeyFor("coach-1", "client-9"))
	r.Broadcast(domain.RoomKeyFor("coach-1", "client-9"), Frame("x"), sender.ID())

	assert.Len(t, inRoom.received(), 1)
	assert.Empty(t, elsewhere.received())
}

func TestRegistry_BroadcastBestEffort(t *testing.T) {
	r := NewRoomRegistry()
	key := domain.RoomKeyFor("coach-1", "client-9")

	sender := &mockConn{id: "c1", user: "coach-1"}
	stale := &mockConn{id: "c2", user: "coach-1", sendErr: errors.New("backpressure")}
	healthy := &mockConn{id: "c3", user: "coach-1"}
	r.Join(sender, key)
	r.Join(stale, key)
	r.Join(healthy, key)

	res := r.Broadcast(key, Frame("x"), sender.ID())

	assert.Equal(t, 1, res.SentTo)
	assert.Equal(t, 1, res.Dropped)
	assert.Len(t, healthy.received(), 1)
}

func TestRegistry_LeaveIdempotent(t *testing.T) {
	r := NewRoomRegistry()
	conn := &mockConn{id: "c1", user: "coach-1"}

	// Never joined: must be a no-op, not a panic or error.
	r.Leave(conn)

	key := domain.RoomKeyFor("coach-1", "client-9")
	r.Join(conn, key)
	r.Leave(conn)
	r.Leave(conn)

	rooms, conns := r.Stats()
	assert.Equal(t, 0, rooms)
	assert.Equal(t, 0, conns)
}

func TestRegistry_EmptyRoomRemoved(t *testing.T) {
	r := NewRoomRegistry()
	key := domain.RoomKeyFor("coach-1", "client-9")
	c1 := &mockConn{id: "c1", user: "coach-1"}
	c2 := &mockConn{id: "c2", user: "coach-1"}

	r.Join(c1, key)
	r.Join(c2, key)
	rooms, _ := r.Stats()
	require.Equal(t, 1, rooms)

	r.Leave(c1)
	rooms, _ = r.Stats()
	assert.Equal(t, 1, rooms, "room with a member left must survive")

	r.Leave(c2)
	rooms, conns := r.Stats()
	assert.Equal(t, 0, rooms)
	assert.Equal(t, 0, conns)
	assert.Equal(t, 0, r.MemberCount(key))
}

func TestRegistry_JoinMovesConnection(t *testing.T) {
	r := NewRoomRegistry()
	conn := &mockConn{id: "c1", user: "coach-1"}
	first := domain.RoomKeyFor("coach-1", "client-9")
	second := domain.RoomKeyFor("coach-1", "client-5")

	r.Join(conn, first)
	r.Join(conn, second)

	assert.Equal(t, 0, r.MemberCount(first), "old room must be left atomically")
	assert.Equal(t, 1, r.MemberCount(second))

	got, ok := r.RoomOf(conn.ID())
	require.True(t, ok)
	assert.Equal(t, second, got)

	rooms, _ := r.Stats()
	assert.Equal(t, 1, rooms)
}

func TestRegistry_ConcurrentJoins(t *testing.T) {
	r := NewRoomRegistry()
	key := domain.RoomKeyFor("coach-1", "client-9")

	const n = 32
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		conn := &mockConn{id: domain.ConnID(fmt.Sprintf("c%d", i)), user: "coach-1"}
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Join(conn, key)
		}()
	}
	wg.Wait()

	assert.Equal(t, n, r.MemberCount(key), "no join may be lost")
}
