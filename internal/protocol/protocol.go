// Package protocol defines the wire envelopes exchanged over a live
// connection and the codec between them and raw text frames.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/coachkit/livechat/internal/domain"
)

// Message types recognized on the wire.
const (
	TypeJoinRoom   = "join_room"
	TypeTyping     = "typing"
	TypeRoomJoined = "room_joined"
	TypeError      = "error"
)

// Canonical user-facing rejection messages.
const (
	MsgMissingClientID  = "clientId is required to join a room"
	MsgUnauthorized     = "Unauthorized access to client"
	MsgMustJoinFirst    = "Must join room first"
	MsgTypingBeforeJoin = "Must join room before sending typing indicator"
	MsgRateLimited      = "Rate limit exceeded. Please slow down."
	MsgInvalidFormat    = "Invalid message format"
)

var ErrMalformed = errors.New("malformed envelope")

// Envelope is the wire frame: {"type": string, "data": object}.
// Data stays raw so forwarded payloads pass through opaque.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Decode parses a raw text frame into an envelope. An unknown type
// value is not an error; only frames that are not well-formed
// envelopes at all fail.
func Decode(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("%w: missing type", ErrMalformed)
	}
	return env, nil
}

// JoinRoomData is the inbound join_room payload. Any coach identity a
// client embeds alongside clientId is deliberately not modelled here.
type JoinRoomData struct {
	ClientID string `json:"clientId"`
}

// JoinRoom extracts the join_room payload from the envelope.
func (e Envelope) JoinRoom() (JoinRoomData, error) {
	var p JoinRoomData
	if len(e.Data) == 0 {
		return p, fmt.Errorf("%w: missing data", ErrMalformed)
	}
	if err := json.Unmarshal(e.Data, &p); err != nil {
		return p, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return p, nil
}

// RoomJoinedData confirms a successful join. TrainerID is the
// server-resolved identity, echoed for client-side display only.
type RoomJoinedData struct {
	RoomID    string `json:"roomId"`
	ClientID  string `json:"clientId"`
	TrainerID string `json:"trainerId"`
}

// ErrorData carries a user-facing rejection message.
type ErrorData struct {
	Message string `json:"message"`
}

// EncodeRoomJoined builds the confirmation frame for a successful
// join. Encoding the outbound shapes is total; they only hold strings
// and already-valid raw JSON.
func EncodeRoomJoined(key domain.RoomKey, client domain.ClientID, trainer domain.UserID) []byte {
	return encode(TypeRoomJoined, RoomJoinedData{
		RoomID:    string(key),
		ClientID:  string(client),
		TrainerID: string(trainer),
	})
}

// EncodeTyping forwards the original sender's data field unchanged.
func EncodeTyping(data json.RawMessage) []byte {
	b, _ := json.Marshal(Envelope{Type: TypeTyping, Data: data})
	return b
}

// EncodeError builds an error frame for the originating connection.
func EncodeError(message string) []byte {
	return encode(TypeError, ErrorData{Message: message})
}

func encode(typ string, data any) []byte {
	raw, _ := json.Marshal(data)
	b, _ := json.Marshal(Envelope{Type: typ, Data: raw})
	return b
}
