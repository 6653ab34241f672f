package signal

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/coachkit/livechat/internal/auth"
	"github.com/coachkit/livechat/internal/config"
	"github.com/coachkit/livechat/internal/core"
	"github.com/coachkit/livechat/internal/domain"
)

// ChatController owns the live messaging endpoint: it authenticates
// upgrade requests, runs the per-connection pumps and dispatches
// inbound messages into the room registry.
type ChatController struct {
	Auth    *auth.Authenticator
	Oracle  auth.OwnershipOracle
	Rooms   *core.RoomRegistry
	Limiter *RateLimiter

	readLimit        int64
	pingPeriod       time.Duration
	handshakeTimeout time.Duration
	upgrader         websocket.Upgrader
}

func NewChatController(
	a *auth.Authenticator,
	oracle auth.OwnershipOracle,
	rooms *core.RoomRegistry,
	limiter *RateLimiter,
	cfg *config.Config,
) *ChatController {
	return &ChatController{
		Auth:             a,
		Oracle:           oracle,
		Rooms:            rooms,
		Limiter:          limiter,
		readLimit:        cfg.ReadLimit,
		pingPeriod:       cfg.PingPeriod,
		handshakeTimeout: cfg.HandshakeTimeout,
		upgrader: websocket.Upgrader{
			HandshakeTimeout: cfg.HandshakeTimeout,
			CheckOrigin:      func(r *http.Request) bool { return true },
		},
	}
}

// HandleChat authenticates the upgrade request and, on success, runs
// the connection until the transport closes. Authentication happens
// before the upgrade and is bounded by the handshake timeout: a
// rejected or abandoned handshake never produces a connection.
func (ctl *ChatController) HandleChat(ctx context.Context, c *gin.Context) {
	hsCtx, hsCancel := context.WithTimeout(ctx, ctl.handshakeTimeout)
	defer hsCancel()

	userID, err := ctl.Auth.Authenticate(hsCtx, c.GetHeader("Cookie"))
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("handshake rejected")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	ws.SetReadLimit(ctl.readLimit)

	conn := newWsConn(ws)
	sess := &session{
		id:     domain.ConnID(uuid.NewString()),
		userID: userID,
		signal: conn,
	}
	log.Info().Str("module", "signal").Str("conn", string(sess.id)).Str("user", string(userID)).Msg("connection authenticated")

	connCtx, connCancel := context.WithCancel(ctx)
	go ctl.writePump(connCtx, connCancel, conn)
	go ctl.readPump(connCtx, connCancel, sess, conn)
}
