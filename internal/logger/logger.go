// Package logger builds the service's slog.Logger.
//
// Production environments get JSON output for log aggregation; everything
// else gets human-readable text at debug level.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// Format represents logger output format.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Config controls logger construction and is loaded from the environment.
type Config struct {
	Level   string `env:"LOG_LEVEL" envDefault:"info"`    // debug, info, warn, error
	Format  Format `env:"LOG_FORMAT" envDefault:"json"`   // json or text
	Service string `env:"LOG_SERVICE" envDefault:"billing-api"`
	Env     string `env:"APP_ENV" envDefault:"development"`
}

// New creates a configured slog.Logger writing to w (os.Stdout when nil).
func New(cfg Config, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	if cfg.Format == FormatText {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	handler = handler.WithAttrs([]slog.Attr{
		slog.String("service", cfg.Service),
		slog.String("env", cfg.Env),
	})

	return slog.New(handler)
}

// SetAsDefault installs l as the process-wide default logger.
func SetAsDefault(l *slog.Logger) {
	slog.SetDefault(l)
}

func parseLevel(s string) slog.Level {
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
