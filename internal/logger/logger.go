// Package logger provides logging for the advisor. Messages go to stderr as
// text (debug level only when verbose mode is on) and, when a log file is
// configured, to that file as JSON for machine parsing.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	slogmulti "github.com/samber/slog-multi"
)

var (
	mu      sync.RWMutex
	log     = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	file    *os.File
	verbose bool
)

// Setup configures the package logger. With verbose on, debug messages reach
// stderr; otherwise stderr carries warnings and errors only. logFile may be
// empty to disable the JSON file sink.
func Setup(verboseMode bool, logFile string) error {
	mu.Lock()
	defer mu.Unlock()

	verbose = verboseMode

	stderrLevel := slog.LevelWarn
	if verboseMode {
		stderrLevel = slog.LevelDebug
	}
	stderrHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: stderrLevel})

	if logFile == "" {
		log = slog.New(stderrHandler)
		return nil
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		// Stderr-only is better than no logs at all.
		log = slog.New(stderrHandler)
		return fmt.Errorf("open log file %s: %w", logFile, err)
	}

	file = f
	fileHandler := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})
	log = slog.New(slogmulti.Fanout(stderrHandler, fileHandler))
	return nil
}

// SetOutput redirects all log output to w at debug level. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	log = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// Close flushes and closes the log file if one was opened.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if file == nil {
		return nil
	}
	err := file.Close()
	file = nil
	return err
}

// Debug logs a formatted message at debug level.
func Debug(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	log.Debug(fmt.Sprintf(format, args...))
}

// Info logs a formatted message at info level.
func Info(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	log.Info(fmt.Sprintf(format, args...))
}

// Warn logs a formatted message at warn level.
func Warn(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	log.Warn(fmt.Sprintf(format, args...))
}

// Error logs a formatted message at error level.
func Error(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	log.Error(fmt.Sprintf(format, args...))
}

// Section logs a named section header at debug level, marking a pipeline
// stage in verbose output.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	log.Debug("=== " + name + " ===")
}
