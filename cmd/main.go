package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/askwhyharsh/geohunt/internal/api"
	"github.com/askwhyharsh/geohunt/internal/config"
	"github.com/askwhyharsh/geohunt/internal/ratelimit"
	"github.com/askwhyharsh/geohunt/internal/storage"
	"github.com/askwhyharsh/geohunt/internal/store"
	"github.com/askwhyharsh/geohunt/internal/websocket"
	"github.com/askwhyharsh/geohunt/pkg/logger"
	"github.com/askwhyharsh/geohunt/pkg/validator"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	appLogger := logger.NewLogger(cfg.Server.Env, cfg.Monitoring.LogLevel)
	defer appLogger.Sync()
	appLogger.Info("Starting coordinate server...", "backend", cfg.Store.Backend)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		coordinateStore store.Store
		redisClient     storage.RedisClient
		rlMiddleware    *ratelimit.Middleware
	)

	switch cfg.Store.Backend {
	case config.BackendRedis:
		redisClient, err = storage.NewRedisClient(cfg)
		if err != nil {
			appLogger.Error("Failed to connect to Redis", "address", cfg.RedisAddr(), "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		appLogger.Info("Connected to Redis", "address", cfg.RedisAddr())

		coordinateStore = store.NewRedis(redisClient, cfg.Store.RecordTTL)
		rateLimiter := ratelimit.NewLimiter(redisClient, cfg.RateLimit)
		rlMiddleware = ratelimit.NewMiddleware(rateLimiter, appLogger)
	default:
		coordinateStore = store.NewMemory()
	}

	// Initialize WebSocket hub
	hub := websocket.NewHub(ctx, redisClient, appLogger)
	go hub.Run()

	wsHandler := websocket.NewHandler(hub, coordinateStore, cfg.CORS.AllowedOrigins, appLogger)
	apiHandler := api.NewHandler(coordinateStore, hub, validator.NewValidator(), appLogger)

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	api.SetupRoutes(router, apiHandler, wsHandler, api.RouterConfig{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		RateLimit:      rlMiddleware,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		appLogger.Info("Server starting", "address", srv.Addr, "env", cfg.Server.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Cancel context to stop the hub and its watchers
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", "error", err)
	}

	appLogger.Info("Server stopped")
}
