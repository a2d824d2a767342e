package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/nerrad567/gray-logic-catalog/internal/infrastructure/config"
)

// ServiceName is attached to every log entry.
const ServiceName = "graylogic-catalog"

// Logger is a slog.Logger carrying service and version attributes. Its
// Debug, Info, Warn and Error methods satisfy the small Logger interfaces
// the other packages declare.
type Logger struct {
	*slog.Logger
}

// New writes to stderr when cfg.Output is "stderr" and to stdout otherwise.
func New(cfg config.LoggingConfig, version string) *Logger {
	var w io.Writer = os.Stdout
	if strings.EqualFold(cfg.Output, "stderr") {
		w = os.Stderr
	}
	return NewWithWriter(w, cfg, version)
}

// NewWithWriter writes to w and ignores cfg.Output. Format "text" selects
// logfmt-style output; anything else is JSON.
func NewWithWriter(w io.Writer, cfg config.LoggingConfig, version string) *Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var h slog.Handler = slog.NewJSONHandler(w, opts)
	if strings.EqualFold(cfg.Format, "text") {
		h = slog.NewTextHandler(w, opts)
	}

	return &Logger{slog.New(h).With(
		slog.String("service", ServiceName),
		slog.String("version", version),
	)}
}

// parseLevel accepts slog level names in any case, plus "warning".
// Anything unparseable is info.
func parseLevel(s string) slog.Level {
	if strings.EqualFold(s, "warning") {
		return slog.LevelWarn
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func (l *Logger) With(args ...any) *Logger {
	return &Logger{l.Logger.With(args...)}
}

// Component tags every entry from the returned logger with component=name.
func (l *Logger) Component(name string) *Logger {
	return l.With("component", name)
}

// Default is the JSON, info-level stdout logger used until config loads.
func Default() *Logger {
	return New(config.LoggingConfig{Level: "info", Format: "json"}, "dev")
}
