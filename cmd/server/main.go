package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"user_service/internal/app/di"
	"user_service/internal/app/router"
	usershandler "user_service/internal/feature/users/transport/handler"
	"user_service/internal/platform/config"
	platformdb "user_service/internal/platform/db"
	platformhandler "user_service/internal/platform/http/handler"
	"user_service/internal/platform/logger"
	platformredis "user_service/internal/platform/redis"
	"user_service/internal/platform/tracing"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return err
	}
	l := logger.Setup(os.Stdout, cfg.Log.Level)

	tp := tracing.Setup(cfg.Tracing, l)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			slog.Error("failed to shut down tracer provider", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// db
	db, err := platformdb.Open(cfg.DB)
	if err != nil {
		return err
	}
	defer func() {
		if err := platformdb.Close(db); err != nil {
			slog.Error("failed to close DB", "error", err)
		}
	}()
	if cfg.DB.RunMigrations {
		if err := platformdb.Migrate(db, di.Models()...); err != nil {
			return err
		}
		slog.Info("migrations applied")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	// Redis（任意）
	var rdb *redisv9.Client
	if cfg.Redis.Host != "" {
		if tmp, err := platformredis.NewRedisClient(ctx, cfg.Redis); err != nil {
			slog.Warn("Redis unavailable. Falling back to in-process rate limiting.", "error", err)
		} else {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					slog.Error("failed to close Redis client", "error", err)
				}
			}()
		}
	}

	// Usecase / Handler
	usersH := usershandler.NewUserHandler(di.NewUserUsecase(db))
	healthH := platformhandler.NewHealthHandler(sqlDB)

	// ルータ生成
	r := router.NewRouter(usersH, healthH, di.NewRateLimiter(rdb, cfg.RateLimit))

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", cfg.HTTP.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
