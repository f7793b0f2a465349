package api

import (
	"github.com/askwhyharsh/geohunt/internal/ratelimit"

	"github.com/gin-gonic/gin"
)

type WebSocketHandler interface {
	HandleWatch(c *gin.Context)
}

type RouterConfig struct {
	AllowedOrigins []string
	// RateLimit is nil when writes are not limited.
	RateLimit *ratelimit.Middleware
}

func SetupRoutes(r *gin.Engine, handler *Handler, wsHandler WebSocketHandler, cfg RouterConfig) {
	// Apply global middleware
	r.Use(RequestIDMiddleware())
	r.Use(LoggingMiddleware(handler.logger))
	r.Use(CORSMiddleware(cfg.AllowedOrigins))

	write := []gin.HandlerFunc{handler.PostCoordinates}
	if cfg.RateLimit != nil {
		write = append([]gin.HandlerFunc{cfg.RateLimit.WriteRateLimit()}, write...)
	}

	coordinates := r.Group("/coordinates")
	{
		coordinates.POST("/:role", write...)
		coordinates.GET("/:role", handler.GetCoordinates)
		if wsHandler != nil {
			coordinates.GET("/:role/watch", wsHandler.HandleWatch)
		}
	}

	// Health check (no rate limit)
	r.GET("/health", handler.Health)
}
