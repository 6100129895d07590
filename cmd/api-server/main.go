package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"commenthub/database"
	"commenthub/internal/clock"
	"commenthub/internal/config"
	"commenthub/internal/lifecycle"
	"commenthub/internal/metrics"
	"commenthub/internal/microservices/http-api/handler"
	"commenthub/internal/microservices/http-api/middleware"
	"commenthub/internal/microservices/http-api/repository"
	"commenthub/internal/microservices/http-api/service"
	"commenthub/internal/microservices/websocket"
	"commenthub/internal/pubsub"
	"commenthub/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {
	if err := run(); err != nil {
		slog.Error("api_server_failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.ConnectDB(ctx, cfg, logger)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	clk := clock.System()

	var m *metrics.Metrics
	if cfg.PrometheusEnabled {
		m = metrics.New()
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Live delivery is optional; without it notifications are only stored
	var broker *pubsub.RedisBroker
	var publisher service.NotificationPublisher
	if cfg.RealtimeEnabled {
		broker, err = pubsub.NewRedisBroker(cfg.RedisURL)
		if err != nil {
			return err
		}
		defer broker.Close()
		publisher = broker
		logger.Info("realtime_enabled", "redis_url", cfg.RedisURL)
	}

	pool := worker.NewPool(cfg.NotifyWorkers, cfg.NotifyQueueSize, logger)
	pool.Start()

	// Services
	notificationService := service.NewNotificationService(notificationRepo, publisher, clk, logger)
	dispatcher := service.NewReplyDispatcher(commentRepo, userRepo, notificationService, pool, cfg.NotifyTimeout, m, logger)
	policy := lifecycle.Policy{EditWindow: cfg.EditWindow, RestoreWindow: cfg.RestoreWindow}
	commentService := service.NewCommentService(commentRepo, dispatcher, policy, clk, m, logger)
	authService := service.NewAuthService(userRepo, cfg, clk, logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(m.Middleware())

	router.GET("/health", func(c *gin.Context) {
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := gin.H{"status": "ok", "database": "ok"}
		code := http.StatusOK
		if err := sqlDB.PingContext(pingCtx); err != nil {
			status["status"], status["database"] = "degraded", "unreachable"
			code = http.StatusServiceUnavailable
		}
		if broker != nil {
			status["redis"] = "ok"
			if err := broker.Ping(pingCtx); err != nil {
				status["status"], status["redis"] = "degraded", "unreachable"
				code = http.StatusServiceUnavailable
			}
		}
		c.JSON(code, status)
	})
	if m != nil {
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}

	authHandler := handler.NewAuthHandler(authService, logger)

	api := router.Group("/api")
	authHandler.RegisterRoutes(api)

	protected := api.Group("", middleware.AuthMiddleware(authService))
	protected.GET("/auth/verify", authHandler.Verify)
	handler.NewCommentHandler(commentService, logger).RegisterRoutes(protected)
	handler.NewNotificationHandler(notificationService, logger).RegisterRoutes(protected)

	hub := websocket.NewHub(logger)
	if broker != nil {
		websocket.NewStreamHandler(hub, broker, cfg.CORSOrigins, logger).RegisterRoutes(protected)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api_server_listening", "addr", srv.Addr, "env", cfg.GoEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("api_server_shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http_shutdown_failed", "error", err)
	}
	hub.CloseAll()
	// drain queued reply notifications before the database closes
	pool.Close()
	logger.Info("api_server_stopped")
	return nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
