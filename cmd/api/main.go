package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wavenote-api/internal/config"
	"wavenote-api/internal/dashboard"
	"wavenote-api/internal/handlers"
	"wavenote-api/internal/middleware"
	"wavenote-api/internal/repository"
	"wavenote-api/internal/service"
	"wavenote-api/internal/utils"
	"wavenote-api/pkg/database"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load configuration
	cfg := config.LoadConfig()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize Redis (optional)
	var redisClient *redis.Client
	if database.RedisEnabled(&cfg.Redis) {
		rdb, err := database.NewRedisClient(&cfg.Redis)
		if err != nil {
			log.Printf("Warning: %v", err)
			log.Println("Continuing without Redis...")
		} else {
			redisClient = rdb
			defer redisClient.Close()
		}
	}

	healthChecks := map[string]handlers.HealthCheck{}
	if redisClient != nil {
		healthChecks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}

	// Initialize stores
	var (
		userRepo  repository.UserRepository
		taskRepo  repository.TaskRepository
		tokenRepo repository.TokenRepository
	)
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		log.Println("Using in-memory store, data is lost on restart")
		userRepo = repository.NewMemoryUserRepository()
		taskRepo = repository.NewMemoryTaskRepository()
	case config.StoreDriverPostgres:
		pgPool, err := database.NewPostgresPool(&cfg.Database)
		if err != nil {
			log.Fatalf("Failed to connect to PostgreSQL: %v", err)
		}
		defer pgPool.Close()
		healthChecks["postgres"] = pgPool.Ping

		userRepo = repository.NewUserRepository(pgPool)
		taskRepo = repository.NewTaskRepository(pgPool, redisClient)
	default:
		log.Fatalf("Unknown STORE_DRIVER %q", cfg.Store.Driver)
	}

	if redisClient != nil {
		tokenRepo = repository.NewRedisTokenRepository(redisClient)
	} else {
		tokenRepo = repository.NewMemoryTokenRepository()
	}

	jwtManager, err := utils.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	if err != nil {
		log.Fatalf("Invalid JWT config: %v", err)
	}

	// Initialize services
	logger := log.Default()
	loc := cfg.Server.Location()
	clock := dashboard.RealClock{}

	authService := service.NewAuthService(userRepo, tokenRepo, jwtManager, logger)
	taskService := service.NewTaskService(taskRepo)

	dashboards := dashboard.NewRegistry(taskService, dashboard.Options{
		Clock:    clock,
		Location: loc,
		Logger:   logger,
	})
	unsubscribe := authService.OnAuthStateChange(dashboards.HandleAuthEvent)
	defer unsubscribe()

	var extra []gin.HandlerFunc
	if redisClient != nil {
		limiter := middleware.NewRateLimiter(redisClient, cfg.RateLimit.Requests, cfg.RateLimit.Window)
		extra = append(extra, limiter.Middleware())
	} else {
		log.Println("Rate limiting disabled (Redis not available)")
	}

	router := handlers.NewRouter(handlers.RouterDeps{
		Auth:       authService,
		Tasks:      taskService,
		Dashboards: dashboards,
		Clock:      clock,
		Location:   loc,
		SessionTTL: cfg.JWT.Expiry,
		Secure:     cfg.Server.Env == "production",
		Middleware: extra,

		HealthChecks: healthChecks,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s (store=%s, tz=%s)", cfg.Server.Port, cfg.Store.Driver, loc)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		return
	}

	log.Println("Server exited properly")
}
