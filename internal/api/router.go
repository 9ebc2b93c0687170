package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"youassist/internal/config"
	"youassist/pkg/logger"
	"youassist/pkg/ratelimiter"
)

// NewRouter builds the gin engine with middleware and routes registered.
func NewRouter(handler *Handler, cfg config.ServerConfig, log *logger.Logger) (*gin.Engine, error) {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), RequestLogger(log))

	if cfg.RateLimiter.Enabled {
		limiter, err := newRateLimiter(cfg.RateLimiter)
		if err != nil {
			return nil, err
		}
		log.Info(fmt.Sprintf("Enabling rate limiter with algorithm: %s", cfg.RateLimiter.Algorithm))
		router.Use(RateLimit(limiter))
	}

	router.POST("/extract_transcript", handler.ExtractTranscript)
	router.POST("/summarize", handler.Summarize)
	router.POST("/chat", handler.Chat)
	router.POST("/render_pdf", handler.RenderPDF)
	router.GET("/healthz", handler.Healthz)

	return router, nil
}

func newRateLimiter(cfg config.RateLimiterConfig) (ratelimiter.RateLimiter, error) {
	algorithm := cfg.Algorithm
	if algorithm == "" {
		algorithm = "tokenBucket"
	}

	switch algorithm {
	case "tokenBucket":
		return ratelimiter.NewTokenBucket(cfg.Rate, cfg.Capacity), nil
	case "fixedWindow":
		window, err := config.ParseDuration(cfg.Window, time.Second)
		if err != nil {
			return nil, fmt.Errorf("invalid fixedWindow duration: %w", err)
		}
		return ratelimiter.NewFixedWindowCounter(cfg.Limit, window), nil
	default:
		return nil, fmt.Errorf("unknown rate limiter algorithm: %s", algorithm)
	}
}
