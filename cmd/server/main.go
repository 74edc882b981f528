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

	"github.com/gin-gonic/gin"
	"github.com/mahora/task-tracker/internal/cache"
	"github.com/mahora/task-tracker/internal/config"
	"github.com/mahora/task-tracker/internal/database"
	"github.com/mahora/task-tracker/internal/handlers"
	"github.com/mahora/task-tracker/internal/middleware"
	"github.com/mahora/task-tracker/internal/repository"
	"github.com/mahora/task-tracker/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := database.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)

	// Run migrations
	if err := database.Migrate(db); err != nil {
		return err
	}

	// Create users out of band
	if cfg.SeedUsersFile != "" {
		seed, err := database.LoadSeedFile(cfg.SeedUsersFile)
		if err != nil {
			return err
		}
		created, err := database.SeedUsers(ctx, db, seed)
		if err != nil {
			return err
		}
		logger.Info("seeded users", "file", cfg.SeedUsersFile, "created", created)
	}

	// Redis is optional
	var redisCache *cache.Cache
	var healthCache handlers.HealthChecker
	if cfg.RedisURL != "" {
		redisCache, err = cache.New(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer redisCache.Close()
		healthCache = redisCache
		logger.Info("connected to Redis")
	}

	// Initialize services
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	policy := services.PolicyFailOpen
	if cfg.RejectUnknownUsers {
		policy = services.PolicyFailClosed
	}

	authService := services.NewAuthService(userRepo)
	taskService := services.NewTaskService(taskRepo, services.NewDirectoryResolver(userRepo), policy)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, logger)
	taskHandler := handlers.NewTaskHandler(taskService, logger)
	healthHandler := handlers.NewHealthHandler(database.Pinger{DB: db}, healthCache)

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(logger),
		gin.Recovery(),
		middleware.CORS(cfg.AllowedOrigins()),
	)

	r.GET("/health", healthHandler.Health)

	loginChain := []gin.HandlerFunc{}
	if redisCache != nil && cfg.LoginRateLimit > 0 {
		limiter := cache.NewLoginLimiter(redisCache, cfg.LoginRateLimit, cfg.LoginRateWindow)
		loginChain = append(loginChain, middleware.RateLimitByIP(limiter, logger))
	}
	loginChain = append(loginChain, authHandler.Login)
	r.POST("/login", loginChain...)

	tasks := r.Group("/tareas")
	{
		tasks.GET("", taskHandler.ListTasks)
		tasks.POST("", taskHandler.CreateTask)
		tasks.PUT("/:id", taskHandler.UpdateTask)
		tasks.DELETE("/:id", taskHandler.DeleteTask)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.AppPort),
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", srv.Addr, "driver", cfg.DBDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}

// initLogger builds the slog logger from LOG_LEVEL and LOG_FORMAT.
func initLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
