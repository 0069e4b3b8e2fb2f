package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"user_service/internal/app/di"
	"user_service/internal/feature/users/transport/console"
	"user_service/internal/platform/config"
	platformdb "user_service/internal/platform/db"
	"user_service/internal/platform/logger"
	"user_service/internal/platform/tracing"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("console stopped with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return err
	}
	// ログはメニュー出力と混ざらないよう標準エラーへ
	l := logger.Setup(os.Stderr, cfg.Log.Level)

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
	}

	menu := console.NewMenu(di.NewUserUsecase(db), os.Stdin, os.Stdout)
	if err := menu.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
