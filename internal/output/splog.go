// Package output provides console and file logging plus terminal styling
// for the xman CLI.
package output

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/natefinch/lumberjack.v2"
)

// simpleHandler is a custom slog handler that writes messages without
// timestamps or level prefixes
type simpleHandler struct {
	writer    io.Writer
	debugMode bool
}

func (h *simpleHandler) Enabled(_ context.Context, level slog.Level) bool {
	// Debug messages only enabled in debug mode
	if level == slog.LevelDebug {
		return h.debugMode
	}
	return true
}

func (h *simpleHandler) Handle(_ context.Context, record slog.Record) error {
	_, err := fmt.Fprintln(h.writer, record.Message)
	return err
}

func (h *simpleHandler) WithAttrs(_ []slog.Attr) slog.Handler {
	return h
}

func (h *simpleHandler) WithGroup(_ string) slog.Handler {
	return h
}

// multiHandler fans out log records to multiple handlers
type multiHandler struct {
	handlers []slog.Handler
}

func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *multiHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, record.Level) {
			if err := handler.Handle(ctx, record); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newHandlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		newHandlers[i] = handler.WithAttrs(attrs)
	}
	return &multiHandler{handlers: newHandlers}
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	newHandlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		newHandlers[i] = handler.WithGroup(name)
	}
	return &multiHandler{handlers: newHandlers}
}

// createLumberjackLogger creates a rotating file logger with configuration
// from environment variables
func createLumberjackLogger(logFilePath string) *lumberjack.Logger {
	config := &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    1,  // 1MB
		MaxBackups: 2,  // Keep 2 old files
		MaxAge:     30, // Keep for 30 days
		Compress:   false,
	}

	if maxSizeStr := os.Getenv("XMAN_LOG_MAX_SIZE"); maxSizeStr != "" {
		if maxSize, err := strconv.Atoi(maxSizeStr); err == nil && maxSize > 0 {
			config.MaxSize = maxSize
		}
	}

	if maxBackupsStr := os.Getenv("XMAN_LOG_MAX_BACKUPS"); maxBackupsStr != "" {
		if maxBackups, err := strconv.Atoi(maxBackupsStr); err == nil && maxBackups >= 0 {
			config.MaxBackups = maxBackups
		}
	}

	if maxAgeStr := os.Getenv("XMAN_LOG_MAX_AGE"); maxAgeStr != "" {
		if maxAge, err := strconv.Atoi(maxAgeStr); err == nil && maxAge > 0 {
			config.MaxAge = maxAge
		}
	}

	return config
}

// defaultLogPath returns the rotating log file location under the user cache
// directory
func defaultLogPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "xman", "xman.log"), nil
}

// Splog provides structured logging and output
type Splog struct {
	logger *slog.Logger
}

// NewSplog creates a splog writing to stdout, with a rotating detail log in
// the user cache directory
func NewSplog(debug bool) *Splog {
	return NewSplogTo(os.Stdout, debug)
}

// NewSplogTo creates a splog writing console output to the given writer.
// Everything down to debug level is additionally written, with timestamps,
// to the rotating file log; file logging is skipped if the log directory
// cannot be created.
func NewSplogTo(writer io.Writer, debug bool) *Splog {
	handlers := []slog.Handler{
		&simpleHandler{writer: writer, debugMode: debug},
	}

	if logPath, err := defaultLogPath(); err == nil {
		if err := os.MkdirAll(filepath.Dir(logPath), 0o750); err == nil {
			fileHandler := slog.NewTextHandler(createLumberjackLogger(logPath), &slog.HandlerOptions{
				Level: slog.LevelDebug,
			})
			handlers = append(handlers, fileHandler)
		}
	}

	return &Splog{logger: slog.New(&multiHandler{handlers: handlers})}
}

// Info writes an info message
func (s *Splog) Info(format string, args ...any) {
	s.logger.Info(fmt.Sprintf(format, args...))
}

// Warn writes a warning message
func (s *Splog) Warn(format string, args ...any) {
	s.logger.Warn("⚠️  " + fmt.Sprintf(format, args...))
}

// Debug writes a debug message, shown on the console only in debug mode
func (s *Splog) Debug(format string, args ...any) {
	s.logger.Debug(fmt.Sprintf(format, args...))
}

// Tip writes a tip message
func (s *Splog) Tip(format string, args ...any) {
	s.logger.Info("💡 " + fmt.Sprintf(format, args...))
}

// Page writes preformatted multi-line content
func (s *Splog) Page(content string) {
	s.logger.Info(content)
}
