package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/coachkit/livechat/internal/adapters/signal"
	"github.com/coachkit/livechat/internal/config"
	"github.com/coachkit/livechat/internal/core"
)

// SetupRouter wires the HTTP surface: the websocket upgrade endpoint
// and a health probe. Session issuance and client CRUD live in the
// surrounding web application, not here.
func SetupRouter(ctx context.Context, cfg *config.Config, ctl *signal.ChatController, rooms *core.RoomRegistry) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	api := r.Group("/api")

	api.GET("/ws/chat", func(c *gin.Context) {
		ctl.HandleChat(ctx, c)
	})

	api.GET("/healthz", func(c *gin.Context) {
		roomCount, connCount := rooms.Stats()
		c.JSON(http.StatusOK, gin.H{
			"status":      "ok",
			"rooms":       roomCount,
			"connections": connCount,
		})
	})

	log.Info().Str("module", "adapters.http").Msg("router setup")
	return r
}
