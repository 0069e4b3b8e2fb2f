// Package logger は slog のロガーを構築します。
package logger

import (
	"io"
	"log/slog"
	"strings"
)

// ParseLevel は debug|info|warn|error を slog のレベルに変換します。不明な値は info として扱います。
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New は JSON 形式で w に出力するロガーを生成します。
func New(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
}

// Setup は New で生成したロガーをデフォルトに設定して返します。
func Setup(w io.Writer, level string) *slog.Logger {
	l := New(w, level)
	slog.SetDefault(l)
	return l
}
