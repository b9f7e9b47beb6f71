package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/nerrad567/prelogate-core/internal/infrastructure/config"
)

// ServiceName is attached to every log entry.
const ServiceName = "prelogate"

// Logger is a slog.Logger that carries the service and version on every
// entry. It is safe for concurrent use.
type Logger struct {
	*slog.Logger
}

// New logs to stderr when cfg.Output is "stderr" and to stdout otherwise.
// Solutions are printed on stdout, so the CLI config picks stderr.
func New(cfg config.LoggingConfig, version string) *Logger {
	var w io.Writer = os.Stdout
	if strings.EqualFold(cfg.Output, "stderr") {
		w = os.Stderr
	}
	return NewWithWriter(w, cfg, version)
}

// NewWithWriter logs to w, as JSON unless cfg.Format is "text".
// cfg.Output is ignored.
func NewWithWriter(w io.Writer, cfg config.LoggingConfig, version string) *Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var h slog.Handler = slog.NewJSONHandler(w, opts)
	if strings.EqualFold(cfg.Format, "text") {
		h = slog.NewTextHandler(w, opts)
	}
	return &Logger{slog.New(h).With("service", ServiceName, "version", version)}
}

// parseLevel accepts slog's level names in any case, plus "warning".
// Anything unrecognised means info.
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

// With returns a child logger that adds args to every entry.
//
//	solverLog := log.With("problem", p.Name())
func (l *Logger) With(args ...any) *Logger {
	return &Logger{l.Logger.With(args...)}
}
