package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/coachkit/livechat/internal/adapters/http"
	chat "github.com/coachkit/livechat/internal/adapters/signal"
	"github.com/coachkit/livechat/internal/auth"
	"github.com/coachkit/livechat/internal/config"
	"github.com/coachkit/livechat/internal/core"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Secret == "" {
		log.Fatal().Msg("secret is required to verify session cookies")
	}

	var (
		store  auth.SessionStore
		oracle auth.OwnershipOracle
	)
	switch cfg.Store {
	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		store = auth.NewRedisStore(rdb)
		oracle = auth.NewRedisOracle(rdb)
		log.Info().Str("addr", cfg.RedisAddr).Msg("using redis session store")
	default:
		store = auth.NewMemoryStore()
		oracle = auth.NewStaticOracle()
		log.Warn().Msg("using in-memory session store; sessions do not survive restart")
	}

	authn := auth.NewAuthenticator([]byte(cfg.Secret), cfg.SessionCookie, store)
	rooms := core.NewRoomRegistry()
	limiter := chat.NewRateLimiter(cfg.MessageRateLimit, time.Minute)
	ctl := chat.NewChatController(authn, oracle, rooms, limiter, cfg)

	r := router.SetupRouter(ctx, cfg, ctl, rooms)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: cfg.HandshakeTimeout,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("livechat server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
