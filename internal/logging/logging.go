package logging

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config 描述日志输出
type Config struct {
	Level    string
	Format   string
	FilePath string
}

// New 按配置构建 logger；返回的 closer 用于关闭滚动日志文件（可能为 nil）
func New(cfg Config) (*slog.Logger, io.Closer) {
	return newLogger(os.Stderr, cfg)
}

func newLogger(console io.Writer, cfg Config) (*slog.Logger, io.Closer) {
	var w io.Writer = console
	var closer io.Closer
	if cfg.FilePath != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    20,
			MaxBackups: 3,
			MaxAge:     30,
		}
		w = io.MultiWriter(console, lj)
		closer = lj
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	var h slog.Handler
	if cfg.Format == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h), closer
}

// ParseLevel converts a string to slog.Level, defaulting to Info.
func ParseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Discard 返回丢弃全部输出的 logger，供测试使用
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}
