package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Log output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	// FormatAuto picks text on a terminal and JSON otherwise.
	FormatAuto = "auto"
)

// Options configures a logger.
type Options struct {
	Level  slog.Level
	Format string
	// Output defaults to stderr; stdout carries simulation reports.
	Output io.Writer
	// AddSource records the caller's file and line (enabled for --debug).
	AddSource bool
}

// New creates a configured slog.Logger from opts.
func New(opts Options) *slog.Logger {
	w := opts.Output
	if w == nil {
		w = os.Stderr
	}
	hopts := &slog.HandlerOptions{Level: opts.Level, AddSource: opts.AddSource}

	var handler slog.Handler
	switch resolveFormat(opts.Format, w) {
	case FormatJSON:
		handler = slog.NewJSONHandler(w, hopts)
	default:
		handler = slog.NewTextHandler(w, hopts)
	}
	return slog.New(handler)
}

// NewLogger creates a logger writing to stderr.
//
// level: slog level (DEBUG, INFO, WARN, ERROR)
// format: "text", "json" or "auto"
func NewLogger(level slog.Level, format string) *slog.Logger {
	return New(Options{Level: level, Format: format})
}

// NewLoggerWithWriter creates a logger writing to the given writer.
func NewLoggerWithWriter(level slog.Level, format string, w io.Writer) *slog.Logger {
	return New(Options{Level: level, Format: format, Output: w})
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Component tags every record of the returned logger with the component name.
func Component(logger *slog.Logger, name string) *slog.Logger {
	if logger == nil {
		logger = Discard()
	}
	return logger.With("component", name)
}

// IsTerminal reports whether w is a terminal (including Cygwin/MSYS ptys).
func IsTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func resolveFormat(format string, w io.Writer) string {
	switch strings.ToLower(format) {
	case FormatJSON:
		return FormatJSON
	case FormatAuto:
		if IsTerminal(w) {
			return FormatText
		}
		return FormatJSON
	default:
		return FormatText
	}
}

// ParseLevel converts a string log level to slog.Level.
// Returns slog.LevelInfo for unrecognized values.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
