package signal

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/coachkit/livechat/internal/protocol"
)

const writeWait = 5 * time.Second

func (ctl *ChatController) writePump(ctx context.Context, cancel context.CancelFunc, c *wsConn) {
	ticker := time.NewTicker(ctl.pingPeriod)
	defer func() {
		ticker.Stop()
		// A dead outbound half takes the whole connection with it;
		// otherwise readPump could stay blocked on a silent peer and
		// its room membership would never be released.
		cancel()
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug().Err(err).Str("module", "signal").Msg("writePump ping")
				return
			}
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *ChatController) readPump(ctx context.Context, cancel context.CancelFunc, sess *session, c *wsConn) {
	defer func() {
		// Cleanup runs exactly once, whatever state the connection
		// was in: leave is idempotent and the only held resource.
		ctl.Rooms.Leave(sess)
		c.Close()
		cancel()
		log.Info().Str("module", "signal").Str("conn", string(sess.id)).Msg("connection closed")
	}()

	// A peer that stops answering pings is dead: the read deadline
	// only moves forward on pong, so ReadMessage fails once the peer
	// goes silent for longer than readWait.
	readWait := ctl.pingPeriod * 10 / 9
	_ = c.conn.SetReadDeadline(time.Now().Add(readWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(readWait))
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Debug().Err(err).Str("module", "signal").Str("conn", string(sess.id)).Msg("readPump read error")
				return
			}
			ctl.handleMessage(ctx, sess, data)
		}
	}
}

// handleMessage runs the per-message pipeline: rate limit, decode,
// then type dispatch. Every rejection goes back to the sender only and
// never closes the connection.
func (ctl *ChatController) handleMessage(ctx context.Context, sess *session, data []byte) {
	if !ctl.Limiter.Allow(sess.userID) {
		log.Warn().Str("module", "signal").Str("user", string(sess.userID)).Msg("rate limit exceeded")
		ctl.sendError(sess, protocol.MsgRateLimited)
		return
	}

	env, err := protocol.Decode(data)
	if err != nil {
		log.Debug().Err(err).Str("module", "signal").Str("conn", string(sess.id)).Msg("bad frame")
		ctl.sendError(sess, protocol.MsgInvalidFormat)
		return
	}

	switch env.Type {
	case protocol.TypeJoinRoom:
		ctl.handleJoinRoom(ctx, sess, env)
	case protocol.TypeTyping:
		ctl.handleTyping(sess, env)
	default:
		if sess.inRoom() {
			// Forward-compatible default: unknown types are dropped.
			log.Debug().Str("module", "signal").Str("type", env.Type).Msg("ignoring unknown message type")
			return
		}
		ctl.sendError(sess, protocol.MsgMustJoinFirst)
	}
}

func (ctl *ChatController) sendError(sess *session, msg string) {
	_ = sess.signal.TrySend(protocol.EncodeError(msg))
}
