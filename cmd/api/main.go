package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/srgjo27/driveezzy/internal/adapter/handler"
	"github.com/srgjo27/driveezzy/internal/adapter/repository/boltrepo"
	"github.com/srgjo27/driveezzy/internal/adapter/repository/postgres"
	"github.com/srgjo27/driveezzy/internal/adapter/repository/redisrepo"
	"github.com/srgjo27/driveezzy/internal/config"
	"github.com/srgjo27/driveezzy/internal/core/domain"
	"github.com/srgjo27/driveezzy/internal/core/ports"
	"github.com/srgjo27/driveezzy/internal/core/services"
	"github.com/srgjo27/driveezzy/internal/platform/database"
	"github.com/srgjo27/driveezzy/internal/platform/logger"
	"github.com/srgjo27/driveezzy/internal/platform/metrics"
	"github.com/srgjo27/driveezzy/internal/platform/redisdb"
	"github.com/srgjo27/driveezzy/internal/platform/security"
)

type storage struct {
	users    ports.UserRepository
	bookings ports.BookingRepository
	redis    *redis.Client
	close    func() error
}

func openStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (*storage, error) {
	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		db, err := database.NewPostgresDB(ctx, database.Config{
			Host:            cfg.Database.Host,
			Port:            cfg.Database.Port,
			User:            cfg.Database.User,
			Password:        cfg.Database.Password,
			DBName:          cfg.Database.DBName,
			SSLMode:         cfg.Database.SSLMode,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		}, log)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(ctx, db, log); err != nil {
			db.Close()
			return nil, err
		}
		return &storage{
			users:    postgres.NewUserRepository(db),
			bookings: postgres.NewBookingRepository(db),
			close:    db.Close,
		}, nil

	case config.BackendRedis:
		client := redisdb.NewClient(redisdb.Config{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		log.Info("Connecting to Redis", zap.String("address", cfg.Redis.Address))
		if err := redisdb.Ping(ctx, client); err != nil {
			client.Close()
			return nil, err
		}
		return &storage{
			users:    redisrepo.NewUserRepository(client),
			bookings: redisrepo.NewBookingRepository(client),
			redis:    client,
			close:    func() error { return redisdb.Close(client) },
		}, nil

	case config.BackendBolt:
		store, err := boltrepo.Open(cfg.Storage.BoltPath)
		if err != nil {
			return nil, err
		}
		log.Info("Opened bolt store", zap.String("path", cfg.Storage.BoltPath))
		return &storage{
			users:    boltrepo.NewUserRepository(store),
			bookings: boltrepo.NewBookingRepository(store),
			close:    store.Close,
		}, nil
	}

	return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Options{
		Environment: cfg.App.Environment,
		Level:       cfg.Logging.Level,
		FilePath:    cfg.Logging.FilePath,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	metrics.Register()

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	store, err := openStorage(startCtx, cfg, log)
	cancelStart()
	if err != nil {
		log.Fatal("Failed to open storage", zap.String("backend", cfg.Storage.Backend), zap.Error(err))
	}
	defer func() {
		if err := store.close(); err != nil {
			log.Warn("Failed to close storage", zap.Error(err))
		}
	}()

	rates := domain.DefaultRates().With(cfg.Rates)
	hasher := security.NewArgon2Hasher(security.DefaultArgon2Params)

	accountService := services.NewAccountService(store.users, hasher, log)
	bookingService := services.NewBookingService(store.bookings, store.users, rates, log)

	sessions := handler.NewSessionGate(handler.SessionConfig{
		Secret:     cfg.Session.Secret,
		CookieName: cfg.Session.CookieName,
		TTL:        cfg.Session.TTL,
		Secure:     cfg.Session.Secure,
	})

	authLimiter, err := handler.NewRateLimiter(cfg.RateLimit.Auth, "auth", store.redis)
	if err != nil {
		log.Fatal("Failed to build rate limiter", zap.Error(err))
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := handler.NewRouter(handler.RouterConfig{
		Accounts:    handler.NewAccountHandler(accountService, sessions, log),
		Bookings:    handler.NewBookingHandler(bookingService, log),
		Sessions:    sessions,
		AuthLimiter: authLimiter,
		CORSOrigins: cfg.App.CORSOrigins,
		Logger:      log,
	})

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", server.Addr), zap.String("backend", cfg.Storage.Backend))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server startup failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exiting")
}
