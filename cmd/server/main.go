package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hongminglow/profile-auth/internal/auth"
	"github.com/hongminglow/profile-auth/internal/config"
	"github.com/hongminglow/profile-auth/internal/logging"
	"github.com/hongminglow/profile-auth/internal/server"
	"github.com/hongminglow/profile-auth/internal/storage"
	"github.com/hongminglow/profile-auth/internal/storage/memory"
	postgres "github.com/hongminglow/profile-auth/internal/storage/postgres"
)

func main() {
	envLoaded := godotenv.Load() == nil

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	if !envLoaded {
		logger.Info("no .env file found; relying on existing environment")
	}

	ctx := context.Background()
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("init store", zap.Error(err))
	}
	defer store.Close()

	sessions, closeSessions, err := openSessions(ctx, cfg)
	if err != nil {
		logger.Fatal("init sessions", zap.Error(err))
	}
	defer closeSessions()

	srv := server.New(cfg, store, sessions, logger)

	go func() {
		logger.Info("profile-auth listening",
			zap.String("addr", cfg.HTTPAddress()),
			zap.String("store", cfg.StoreDriver),
			zap.String("sessions", cfg.SessionBackend),
		)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Error("graceful shutdown error", zap.Error(err))
	}
}

func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (storage.UserStore, error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		logger.Warn("using in-memory store; data is lost on restart")
		return memory.New(), nil
	default:
		store, err := postgres.NewUserStore(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
}

func openSessions(ctx context.Context, cfg config.Config) (auth.Sessions, func(), error) {
	switch cfg.SessionBackend {
	case config.SessionRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("parse redis url: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		closeFn := func() { _ = client.Close() }
		return auth.NewRedisSessions(client, "session", cfg.SessionTTL, cfg.CookieSecure), closeFn, nil
	default:
		return auth.NewCookieSessions([]byte(cfg.SessionSecret), cfg.SessionTTL, cfg.CookieSecure), func() {}, nil
	}
}
