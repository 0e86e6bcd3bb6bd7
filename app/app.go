package app

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"studylab-api/config"
	"studylab-api/db"
	"studylab-api/handler"
	"studylab-api/logger"
	"studylab-api/repository"
	"studylab-api/router"
	"studylab-api/service"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// App holds the wired application. DB and Redis are nil when not in use.
type App struct {
	Config *config.Config
	DB     *sql.DB
	Redis  *redis.Client
	Router http.Handler
}

type repositories struct {
	users   repository.IUserRepository
	tokens  repository.ITokenRepository
	history repository.IHistoryRepository
}

func newRepositories(cfg *config.Config, database *sql.DB) repositories {
	if cfg.Database.Driver == "memory" || database == nil {
		logger.Log.Warn("Using in-memory store; data is lost on restart")
		return repositories{
			users:   repository.NewMemoryUserRepository(),
			tokens:  repository.NewMemoryTokenRepository(),
			history: repository.NewMemoryHistoryRepository(),
		}
	}
	return repositories{
		users:   repository.NewUserRepository(database),
		tokens:  repository.NewTokenRepository(database),
		history: repository.NewHistoryRepository(database),
	}
}

// New wires every layer together. ctx bounds background workers such as
// the rate limiter's sweeper.
func New(ctx context.Context, cfg *config.Config, database *sql.DB, rdb *redis.Client) *App {
	repos := newRepositories(cfg, database)

	// A nil *redis.Client must not become a non-nil interface.
	var cache service.ICacheClient
	if rdb != nil {
		cache = rdb
	}

	tokenService := service.NewTokenService(cfg.JWT)
	authService := service.NewAuthService(repos.users, repos.tokens, tokenService, cfg.Auth)
	userService := service.NewUserService(repos.users)
	historyService := service.NewHistoryService(repos.history, cache, cfg.Redis.HistoryTTL)

	var limiter *handler.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = handler.NewRateLimiter(ctx, cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}

	r := router.NewRouter(router.Handlers{
		Auth:          handler.NewAuthHandler(authService),
		History:       handler.NewHistoryHandler(historyService),
		Authenticator: handler.NewAuthenticator(tokenService, userService, cfg.Auth.OptionalFallbackOnStoreError),
		RateLimiter:   limiter,
	}, cfg)

	return &App{Config: cfg, DB: database, Redis: rdb, Router: r}
}

// Run loads configuration, connects backing services and serves until
// SIGINT or SIGTERM.
func Run() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	logger.Log.Info("Configuration loaded successfully")

	var database *sql.DB
	if cfg.Database.Driver == "postgres" {
		database, err = db.Connect(cfg.Database)
		switch {
		case database == nil:
			logger.Log.Fatalf("Error connecting to the database: %v", err)
		case err != nil:
			// The pool reconnects lazily; requests fail until Postgres is reachable.
			logger.Log.WithError(err).Warn("Database unreachable at startup, continuing without migrations")
		case cfg.Database.RunMigrations:
			if err := db.Migrate(database); err != nil {
				logger.Log.Fatalf("Failed to run migrations: %v", err)
			}
		}
		if database != nil {
			defer database.Close()
		}
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = db.ConnectRedis(cfg.Redis)
		if err != nil {
			logger.Log.WithError(err).Warn("Redis unavailable, history caching disabled")
		} else {
			defer rdb.Close()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application := New(ctx, cfg, database, rdb)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      application.Router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Log.WithFields(logrus.Fields{
			"port":   cfg.Server.Port,
			"driver": cfg.Database.Driver,
		}).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Log.Warn("Shutdown signal received. Starting graceful shutdown...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("Server forced to shutdown")
		return
	}

	logger.Log.Info("Server exited properly")
}
