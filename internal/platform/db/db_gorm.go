// Package db はデータベース接続の構築を提供します。
package db

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/cenk/backoff"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"user_service/internal/platform/config"
)

// slowQueryThreshold はスロークエリとして警告するしきい値です。
const slowQueryThreshold = 200 * time.Millisecond

// Opener は DSN からデータベースを開きます。テストで差し替えます。
type Opener func(dsn string) (*gorm.DB, error)

// BuildDSN は設定から接続文字列を生成します。
// InstanceName が設定されている場合は Host/Port より Cloud SQL の Unix ソケットが優先されます。
// sqlite の場合はファイルパスをそのまま返します。
func BuildDSN(cfg config.DBConfig) string {
	if cfg.Driver == config.DriverSQLite {
		return cfg.SQLitePath
	}
	if cfg.InstanceName != "" {
		return fmt.Sprintf("host=/cloudsql/%s user=%s password=%s dbname=%s sslmode=disable",
			cfg.InstanceName, cfg.User, cfg.Password, cfg.Name)
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)
}

// ConnectWithRetry は timeout が経過するまで指数バックオフで接続を再試行します。
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 5 * time.Second
	bo.MaxElapsedTime = timeout

	var db *gorm.DB
	err := backoff.RetryNotify(func() error {
		var err error
		db, err = open(dsn)
		return err
	}, bo, func(err error, next time.Duration) {
		slog.Warn("DB connect failed, retrying", "error", err, "next", next)
	})
	if err != nil {
		return nil, fmt.Errorf("connect db failed after %v: %w", timeout, err)
	}
	return db, nil
}

// Open は設定に従って DB を開き、接続を確認します。
func Open(cfg config.DBConfig) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		TranslateError: true,
		Logger:         NewGormLogger(slog.Default(), slowQueryThreshold),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	var dialect func(dsn string) gorm.Dialector
	switch cfg.Driver {
	case config.DriverPostgres:
		dialect = postgres.Open
	case config.DriverSQLite:
		dialect = sqlite.Open
	default:
		return nil, fmt.Errorf("not support driver: %s", cfg.Driver)
	}

	open := func(dsn string) (*gorm.DB, error) {
		db, err := gorm.Open(dialect(dsn), gcfg)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		if err := sqlDB.Ping(); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
		if cfg.Driver == config.DriverSQLite {
			// sqlite は単一の書き込み接続に制限する
			sqlDB.SetMaxOpenConns(1)
		}
		return db, nil
	}

	db, err := ConnectWithRetry(BuildDSN(cfg), cfg.ConnectTimeout, open)
	if err != nil {
		return nil, err
	}
	slog.Info("DB connection successful", "driver", cfg.Driver)
	return db, nil
}

// Migrate はモデルのテーブルを作成・更新します。
func Migrate(db *gorm.DB, models ...any) error {
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

// Close は下位の接続プールを閉じます。
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
