package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/coachkit/livechat/internal/domain"
)

type room struct {
	members map[domain.ConnID]Conn
}

// RoomRegistry maps pair-room keys to their live members. A single
// registry is constructed at server start and handed to every
// connection handler; rooms are created on first join and removed the
// moment their last member leaves.
//
// The registry does no authorization. Callers must have confirmed
// ownership before Join; everything here is bookkeeping.
type RoomRegistry struct {
	mu     sync.RWMutex
	rooms  map[domain.RoomKey]*room
	joined map[domain.ConnID]domain.RoomKey
}

func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{
		rooms:  make(map[domain.RoomKey]*room),
		joined: make(map[domain.ConnID]domain.RoomKey),
	}
}

// Join adds conn to the room for key, first removing it from whatever
// room it was in. A connection is a member of at most one room.
func (r *RoomRegistry) Join(conn Conn, key domain.RoomKey) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.leaveLocked(conn.ID())

	rm, ok := r.rooms[key]
	if !ok {
		rm = &room{members: make(map[domain.ConnID]Conn)}
		r.rooms[key] = rm
	}
	rm.members[conn.ID()] = conn
	r.joined[conn.ID()] = key
	log.Info().Str("module", "core.registry").Str("conn", string(conn.ID())).Str("user", string(conn.UserID())).Str("room", string(key)).Int("members", len(rm.members)).Msg("member joined")
}

// Leave removes conn from its current room, if any. Removing a
// connection that is not a member anywhere is a no-op.
func (r *RoomRegistry) Leave(conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(conn.ID())
}

func (r *RoomRegistry) leaveLocked(id domain.ConnID) {
	key, ok := r.joined[id]
	if !ok {
		return
	}
	delete(r.joined, id)

	rm, ok := r.rooms[key]
	if !ok {
		return
	}
	delete(rm.members, id)
	log.Info().Str("module", "core.registry").Str("conn", string(id)).Str("room", string(key)).Msg("member left")
	if len(rm.members) == 0 {
		delete(r.rooms, key)
		log.Debug().Str("module", "core.registry").Str("room", string(key)).Msg("room removed")
	}
}

// Broadcast delivers frame to every member of key except from.
// Delivery is best-effort per member; a stale connection never stops
// delivery to the rest.
func (r *RoomRegistry) Broadcast(key domain.RoomKey, frame Frame, from domain.ConnID) PublishResult {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := PublishResult{}
	rm, ok := r.rooms[key]
	if !ok {
		return res
	}
	for id, m := range rm.members {
		if id == from {
			continue
		}
		if err := m.Signal().TrySend(frame); err != nil {
			res.Dropped++
			continue
		}
		res.SentTo++
	}
	log.Debug().Str("module", "core.registry").Str("room", string(key)).Int("sent_to", res.SentTo).Int("dropped", res.Dropped).Msg("broadcast result")
	return res
}

// RoomOf reports the room the connection is currently joined to.
func (r *RoomRegistry) RoomOf(id domain.ConnID) (domain.RoomKey, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	key, ok := r.joined[id]
	return key, ok
}

// MemberCount reports the size of the room for key, zero when the room
// does not exist.
func (r *RoomRegistry) MemberCount(key domain.RoomKey) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if rm, ok := r.rooms[key]; ok {
		return len(rm.members)
	}
	return 0
}

// Stats reports the number of live rooms and joined connections.
func (r *RoomRegistry) Stats() (rooms, conns int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms), len(r.joined)
}
