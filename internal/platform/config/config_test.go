package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoad_Defaults は環境変数も設定ファイルもない場合にデフォルト値が使われることを検証します。
func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, "5432", cfg.DB.Port)
	assert.Equal(t, "disable", cfg.DB.SSLMode)
	assert.Equal(t, "users.db", cfg.DB.SQLitePath)
	assert.Equal(t, 60*time.Second, cfg.DB.ConnectTimeout)
	assert.False(t, cfg.DB.RunMigrations)
	assert.Empty(t, cfg.Redis.Host)
	assert.Equal(t, "6379", cfg.Redis.Port)
	assert.Equal(t, 100, cfg.RateLimit.Requests)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.True(t, cfg.Tracing.Enabled)
	assert.Equal(t, 1.0, cfg.Tracing.SampleRatio)
}

// TestLoad_FromEnv は環境変数からの読み込みを検証します。
func TestLoad_FromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_USER", "envuser")
	t.Setenv("DB_PASSWORD", "envpass")
	t.Setenv("DB_NAME", "envdb")
	t.Setenv("DB_HOST", "envhost")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("DB_CONNECT_TIMEOUT", "5s")
	t.Setenv("INSTANCE_CONNECTION_NAME", "project:region:instance")
	t.Setenv("RUN_MIGRATIONS", "true")
	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("RATE_LIMIT_REQUESTS", "10")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("TRACING_ENABLED", "false")
	t.Setenv("TRACING_SAMPLE_RATIO", "0.25")

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, DriverSQLite, cfg.DB.Driver)
	assert.Equal(t, "envuser", cfg.DB.User)
	assert.Equal(t, "envpass", cfg.DB.Password)
	assert.Equal(t, "envdb", cfg.DB.Name)
	assert.Equal(t, "envhost", cfg.DB.Host)
	assert.Equal(t, "5433", cfg.DB.Port)
	assert.Equal(t, 5*time.Second, cfg.DB.ConnectTimeout)
	assert.Equal(t, "project:region:instance", cfg.DB.InstanceName)
	assert.True(t, cfg.DB.RunMigrations)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr())
	assert.Equal(t, 10, cfg.RateLimit.Requests)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
	assert.False(t, cfg.Tracing.Enabled)
	assert.Equal(t, 0.25, cfg.Tracing.SampleRatio)
}

// TestLoad_FromFile は設定ファイルの値と環境変数の優先順位を検証します。
func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.yaml")
	content := []byte(`
http:
  addr: ":7070"
db:
  driver: sqlite
  sqlite_path: /tmp/test.db
rate_limit:
  window: 10s
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	t.Setenv("RATE_LIMIT_WINDOW", "20s")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.HTTP.Addr)
	assert.Equal(t, DriverSQLite, cfg.DB.Driver)
	assert.Equal(t, "/tmp/test.db", cfg.DB.SQLitePath)
	assert.Equal(t, 20*time.Second, cfg.RateLimit.Window, "env overrides file")
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing explicit file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

		assert.Error(t, err)
	})

	t.Run("unsupported driver", func(t *testing.T) {
		chdir(t, t.TempDir())
		t.Setenv("DB_DRIVER", "mysql")

		_, err := Load("")

		assert.ErrorContains(t, err, "unsupported db driver")
	})

	t.Run("invalid rate limit", func(t *testing.T) {
		chdir(t, t.TempDir())
		t.Setenv("RATE_LIMIT_REQUESTS", "0")

		_, err := Load("")

		assert.Error(t, err)
	})

	t.Run("sample ratio out of range", func(t *testing.T) {
		chdir(t, t.TempDir())
		t.Setenv("TRACING_SAMPLE_RATIO", "1.5")

		_, err := Load("")

		assert.ErrorContains(t, err, "sample ratio")
	})
}

// chdir は t.Chdir (Go 1.24+) と同等に、テスト終了時に元の作業ディレクトリへ戻します。
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
