package signal

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/coachkit/livechat/internal/domain"
	"github.com/coachkit/livechat/internal/protocol"
)

func (ctl *ChatController) handleJoinRoom(ctx context.Context, sess *session, env protocol.Envelope) {
	p, err := env.JoinRoom()
	if err != nil || p.ClientID == "" {
		ctl.sendError(sess, protocol.MsgMissingClientID)
		return
	}
	clientID := domain.ClientID(p.ClientID)

	// The room identity always comes from the handshake-resolved
	// user; a coach id embedded in the payload is ignored entirely.
	owns, err := ctl.Oracle.OwnsClient(ctx, sess.userID, clientID)
	if err != nil {
		// Fail closed: an unreachable oracle denies the join.
		log.Error().Err(err).Str("module", "signal").Str("user", string(sess.userID)).Str("client", string(clientID)).Msg("ownership check failed")
		ctl.sendError(sess, protocol.MsgUnauthorized)
		return
	}
	if !owns {
		log.Warn().Str("module", "signal").Str("user", string(sess.userID)).Str("client", string(clientID)).Msg("join denied")
		ctl.sendError(sess, protocol.MsgUnauthorized)
		return
	}

	key := domain.RoomKeyFor(sess.userID, clientID)
	ctl.Rooms.Join(sess, key)
	sess.room = key
	log.Info().Str("module", "signal").Str("conn", string(sess.id)).Str("room", string(key)).Msg("join")

	_ = sess.signal.TrySend(protocol.EncodeRoomJoined(key, clientID, sess.userID))
}

func (ctl *ChatController) handleTyping(sess *session, env protocol.Envelope) {
	if !sess.inRoom() {
		ctl.sendError(sess, protocol.MsgTypingBeforeJoin)
		return
	}
	ctl.Rooms.Broadcast(sess.room, protocol.EncodeTyping(env.Data), sess.id)
}
