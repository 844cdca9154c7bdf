package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

var globalLogger *slog.Logger

// ParseLevel ログレベル文字列をslog.Levelに変換
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level: %s", level)
	}
}

// New 指定された出力先・形式でロガーを作成（グローバルには設定しない）
func New(level string, w io.Writer, format string) (*slog.Logger, error) {
	slogLevel, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if w == nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: slogLevel}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "text", "":
		handler = slog.NewTextHandler(w, opts)
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	return slog.New(handler), nil
}

// InitLogger ログレベルと形式に応じてslogを初期化し、デフォルトロガーに設定
// レポートは標準出力に書くため、ログはwに分離する
func InitLogger(level string, w io.Writer, format string) error {
	l, err := New(level, w, format)
	if err != nil {
		return err
	}

	globalLogger = l
	slog.SetDefault(globalLogger)

	return nil
}

// GetLogger グローバルロガーを取得
func GetLogger() *slog.Logger {
	if globalLogger == nil {
		// デフォルトロガーを返す
		return slog.Default()
	}
	return globalLogger
}
