package app

import (
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logFileTimeFormat = "2006_01_02_15_04_05"
	logFileMaxSizeMB  = 10
	logFileMaxBackups = 5
)

// newLogger creates and configures a new slog.Logger instance. It does not
// set the global logger, allowing for isolated logger instances. When logDir
// is set, records are also written to a rotating file named after the start
// time; the returned closer releases it.
func newLogger(levelStr, formatStr string, outW io.Writer, logDir string, start time.Time) (*slog.Logger, io.Closer) {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var closer io.Closer = nopCloser{}
	if logDir != "" {
		file := &lumberjack.Logger{
			Filename:   logFilePath(logDir, start),
			MaxSize:    logFileMaxSizeMB,
			MaxBackups: logFileMaxBackups,
		}
		outW = io.MultiWriter(outW, file)
		closer = file
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler

	if formatStr == "json" {
		handler = slog.NewJSONHandler(outW, handlerOpts)
	} else {
		handler = slog.NewTextHandler(outW, handlerOpts)
	}

	return slog.New(handler), closer
}

func logFilePath(logDir string, start time.Time) string {
	return filepath.Join(logDir, start.UTC().Format(logFileTimeFormat)+".log")
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
