package main

import (
	"database/sql"
	"log/slog"
	"time"

	"voice-platform/internal/calls"
	"voice-platform/internal/config"
	"voice-platform/internal/groupvoice"
	"voice-platform/internal/httpapi"
	"voice-platform/internal/media"
	"voice-platform/internal/notify"
	"voice-platform/internal/policy"
	"voice-platform/internal/ratelimit"
	"voice-platform/internal/social"
	"voice-platform/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type dependencies struct {
	handlers httpapi.Handlers
}

// buildDependencies wires stores and services. Keep construction here and
// business logic in internal modules.
func buildDependencies(cfg config.Config, db *sql.DB, rdb *redis.Client, log *slog.Logger) (dependencies, error) {
	issuer, err := media.NewTokenIssuer(cfg.Media)
	if err != nil {
		return dependencies{}, err
	}

	socialStore := social.NewStore(db)
	settingsStore := policy.NewPostgresStore(db)

	dispatcher := notify.NewDispatcher(rdb, socialStore)

	callSvc := calls.NewService(
		calls.NewPostgresRepo(db),
		socialStore,
		settingsStore,
		issuer,
		dispatcher,
		cfg.Media.DirectTokenTTL,
	)

	voiceSvc := groupvoice.NewService(
		groupvoice.NewPostgresLog(db),
		socialStore,
		settingsStore,
		socialStore,
		issuer,
		cfg.Media.ChannelTokenTTL,
		log,
	)

	return dependencies{
		handlers: httpapi.Handlers{
			Calls:  callSvc,
			Voice:  voiceSvc,
			Events: notify.NewSubscriber(rdb, log),
			WSURL:  cfg.Media.WSURL,
		},
	}, nil
}

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers delegate to internal modules.
func registerRoutes(r *gin.Engine, cfg config.Config, deps dependencies, db *sql.DB, limiter ratelimit.Limiter, authMW gin.HandlerFunc) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		if err := utils.HealthCheck(c.Request.Context(), db, 2*time.Second); err != nil {
			c.JSON(503, gin.H{"status": "degraded"})
			return
		}
		c.JSON(200, gin.H{"status": "ok"})
	})

	h := deps.handlers
	rl := func(endpoint string) gin.HandlerFunc {
		return ratelimit.Middleware(limiter, endpoint, cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)
	}

	v1 := r.Group("/v1")
	v1.Use(authMW)
	{
		callsGroup := v1.Group("/calls")
		{
			callsGroup.POST("/initiate", rl("calls.initiate"), h.InitiateCall)
			callsGroup.POST("/answer", rl("calls.answer"), h.AnswerCall)
			callsGroup.POST("/end", rl("calls.end"), h.EndCall)
			callsGroup.GET("/events", h.CallEvents)
		}

		voice := v1.Group("/voice")
		{
			voice.POST("/token", rl("voice.token"), h.VoiceToken)
			voice.POST("/leave", rl("voice.leave"), h.VoiceLeave)
			voice.GET("/history", h.VoiceHistory)
		}
	}
}
