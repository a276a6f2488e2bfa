package desktop

import (
	"context"
	"log/slog"
	"os"

	"github.com/wailsapp/wails/v2/pkg/logger"
)

// slogLogger routes Wails framework logs into slog.
type slogLogger struct {
	logger *slog.Logger
	exit   func(int)
}

// NewLogger adapts l to the Wails logger interface.
func NewLogger(l *slog.Logger) logger.Logger {
	if l == nil {
		l = slog.Default()
	}
	return &slogLogger{logger: l.With("component", "wails"), exit: os.Exit}
}

// LogLevel maps a slog level to the Wails level filter.
func LogLevel(level slog.Level) logger.LogLevel {
	switch {
	case level <= slog.LevelDebug:
		return logger.DEBUG
	case level <= slog.LevelInfo:
		return logger.INFO
	case level <= slog.LevelWarn:
		return logger.WARNING
	default:
		return logger.ERROR
	}
}

// levelTrace sits below slog's debug level.
const levelTrace = slog.LevelDebug - 4

func (l *slogLogger) log(level slog.Level, message string) {
	l.logger.Log(context.Background(), level, message)
}

func (l *slogLogger) Print(message string)   { l.log(slog.LevelInfo, message) }
func (l *slogLogger) Trace(message string)   { l.log(levelTrace, message) }
func (l *slogLogger) Debug(message string)   { l.log(slog.LevelDebug, message) }
func (l *slogLogger) Info(message string)    { l.log(slog.LevelInfo, message) }
func (l *slogLogger) Warning(message string) { l.log(slog.LevelWarn, message) }
func (l *slogLogger) Error(message string)   { l.log(slog.LevelError, message) }

func (l *slogLogger) Fatal(message string) {
	l.log(slog.LevelError, message)
	l.exit(1)
}
