package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"github.com/i474232898/mollier-diagram/internal/config"
)

// New builds the application logger: colourised text via tint for
// LOG_FORMAT=text, JSON otherwise.
func New(cfg *config.AppConfig, appName string) *slog.Logger {
	return newLogger(os.Stdout, cfg.LogFormat, cfg.LogLevel, appName)
}

func newLogger(w io.Writer, format string, level slog.Level, appName string) *slog.Logger {
	if format == "text" {
		h := tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
		return slog.New(h).With("app", appName)
	}

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(h).With("app", appName)
}
