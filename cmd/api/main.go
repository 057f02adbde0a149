package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"

	_ "github.com/enrollhq/enroll-api/docs" // Swagger docs (generated)
	"github.com/enrollhq/enroll-api/internal/auth"
	"github.com/enrollhq/enroll-api/internal/config"
	"github.com/enrollhq/enroll-api/internal/database"
	httpServer "github.com/enrollhq/enroll-api/internal/http"
	"github.com/enrollhq/enroll-api/internal/logging"
	"github.com/enrollhq/enroll-api/internal/ratelimit"
	"github.com/enrollhq/enroll-api/internal/user"
)

// @title           Enroll API
// @version         1.0
// @description     Registration and session-authentication API.

// @host      localhost:8080
// @BasePath  /

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	// Load configuration. This fails hard on a missing or short SESSION_KEY;
	// there is no development fallback secret.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
		"session_store", cfg.Auth.SessionStore,
	)

	db, err := initDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	redisClient, err := initRedis(cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}
	defer redisClient.Close()

	// Repositories
	userRepo := user.NewRepository(db)

	var sessionRepo auth.SessionRepository
	switch cfg.Auth.SessionStore {
	case config.SessionStoreRedis:
		sessionRepo = auth.NewSessionRedisRepository(redisClient)
	default:
		sessionRepo = auth.NewSessionDBRepository(db)
	}

	rateLimiter := ratelimit.NewLimiter(redisClient)

	pasetoService, err := auth.NewPasetoService(cfg.Auth.SessionKey)
	if err != nil {
		return fmt.Errorf("failed to initialize PASETO service: %w", err)
	}

	hasher := auth.NewHasher(auth.DefaultHashParams)

	authService := auth.NewService(
		userRepo,
		sessionRepo,
		hasher,
		pasetoService,
		logger,
		cfg.Auth.SessionTokenDuration,
	)

	cookieReader := auth.ParsedCookieReader{}
	authHandler := auth.NewHandler(
		authService,
		rateLimiter,
		logger,
		cookieReader,
		!cfg.Server.IsDevelopment(), // isProduction
		cfg.Auth.SessionTokenDuration,
	)
	authMiddleware := auth.NewMiddleware(pasetoService, sessionRepo, cookieReader)

	router := httpServer.NewRouter(cfg, authHandler, authMiddleware, logger)

	server := httpServer.NewServer(
		":"+cfg.Server.Port,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	// Wait for interrupt signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Printf("Received signal: %v", sig)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// initDB initializes the database connection and returns a Bun DB instance
func initDB(cfg config.DatabaseConfig) (*bun.DB, error) {
	sqlDB, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	return database.NewBunDB(sqlDB), nil
}

// initRedis initializes the Redis connection and returns a Redis client
func initRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}
