package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"
)

// New opens the process logger. The console owns stdout, so logs go to a
// file by default; "-" sends them to stderr. A terminal destination gets the
// text handler, anything else gets JSON.
func New(destination string, level string) (*slog.Logger, io.Closer, error) {
	parsed, err := ParseLevel(level)
	if err != nil {
		return nil, nil, err
	}
	options := &slog.HandlerOptions{Level: parsed}

	if strings.TrimSpace(destination) == "-" {
		return slog.New(handlerFor(os.Stderr, options)), nopCloser{}, nil
	}

	if dir := filepath.Dir(destination); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}
	}
	file, err := os.OpenFile(destination, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return slog.New(handlerFor(file, options)), file, nil
}

func ParseLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", raw)
	}
}

func handlerFor(file *os.File, options *slog.HandlerOptions) slog.Handler {
	if term.IsTerminal(int(file.Fd())) {
		return slog.NewTextHandler(file, options)
	}
	return slog.NewJSONHandler(file, options)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
