// Package domain contains entity without logic, just meta-data
package domain

type (
	// UserID identifies an authenticated coach, resolved from the
	// session store at handshake time.
	UserID string

	// ClientID identifies a coached client record.
	ClientID string

	// RoomKey identifies the pair room between one coach and one of
	// their clients.
	RoomKey string

	// ConnID is a process-local connection identifier, never sent
	// over the wire.
	ConnID string
)

// RoomKeyFor builds the key for the coach-client pair room. The coach
// id always comes from the handshake, never from a client payload.
func RoomKeyFor(coach UserID, client ClientID) RoomKey {
	return RoomKey(string(coach) + ":" + string(client))
}

// Session is a record resolved from the external session store.
type Session struct {
	UserID    UserID `json:"userId"`
	ExpiresAt int64  `json:"expiresAt"` // unix seconds
}

// Expired reports whether the session's expiry lies before now
// (unix seconds).
func (s Session) Expired(now int64) bool {
	return now > s.ExpiresAt
}
