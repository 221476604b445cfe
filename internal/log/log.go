// Package log provides structured logging for heinlein.
// Entries carry a level, a category and key=value fields, and are written to a
// debug log file only when enabled via --debug, the debug setting or HEINLEIN_DEBUG.
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Category groups related log messages.
type Category string

const (
	CatCLI      Category = "cli"      // Command dispatch
	CatRegistry Category = "registry" // Registry operations
	CatStore    Category = "store"    // Config file load/persist
	CatTemplate Category = "template" // Template catalog lookups
	CatConfig   Category = "config"   // Settings loading/saving
	CatPrompt   Category = "prompt"   // Confirmation prompts
	CatTrace    Category = "trace"    // Tracing provider lifecycle
)

// Logger provides structured logging.
type Logger struct {
	mu       sync.Mutex
	file     *os.File
	writer   io.Writer
	enabled  bool
	minLevel Level
	fields   []any
}

var (
	defaultLogger *Logger
	defaultMu     sync.Mutex
)

// Init opens (appending) the log file at path and installs it as the global logger.
// Returns a cleanup function to close the log file.
func Init(path string) (func(), error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec // G304: path is the user-configured debug log
	if err != nil {
		return nil, err
	}

	install(&Logger{
		file:     f,
		writer:   f,
		enabled:  true,
		minLevel: LevelDebug,
	})

	return func() { _ = f.Close() }, nil
}

// InitWriter installs a logger writing to w. Used by tests and by callers that
// manage the destination themselves.
func InitWriter(w io.Writer) {
	install(&Logger{
		writer:   w,
		enabled:  true,
		minLevel: LevelDebug,
	})
}

// Reset removes the global logger; subsequent calls are no-ops.
func Reset() {
	install(nil)
}

func install(l *Logger) {
	defaultMu.Lock()
	defaultLogger = l
	defaultMu.Unlock()
}

func current() *Logger {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultLogger
}

// SetEnabled toggles logging on/off.
func SetEnabled(enabled bool) {
	if l := current(); l != nil {
		l.mu.Lock()
		l.enabled = enabled
		l.mu.Unlock()
	}
}

// SetMinLevel sets the minimum log level.
func SetMinLevel(level Level) {
	if l := current(); l != nil {
		l.mu.Lock()
		l.minLevel = level
		l.mu.Unlock()
	}
}

// With attaches fields to every subsequent entry (e.g. the run ID).
func With(fields ...any) {
	if l := current(); l != nil {
		l.mu.Lock()
		l.fields = append(l.fields, fields...)
		l.mu.Unlock()
	}
}

// Debug logs at debug level.
func Debug(cat Category, msg string, fields ...any) {
	log(LevelDebug, cat, msg, fields...)
}

// Info logs at info level.
func Info(cat Category, msg string, fields ...any) {
	log(LevelInfo, cat, msg, fields...)
}

// Warn logs at warning level.
func Warn(cat Category, msg string, fields ...any) {
	log(LevelWarn, cat, msg, fields...)
}

// Error logs at error level.
func Error(cat Category, msg string, fields ...any) {
	log(LevelError, cat, msg, fields...)
}

// ErrorErr logs an error with the error value.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	if err != nil {
		fields = append(fields, "error", err.Error())
	} else {
		fields = append(fields, "error", "<nil>")
	}
	log(LevelError, cat, msg, fields...)
}

func log(level Level, cat Category, msg string, fields ...any) {
	l := current()
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.enabled || level < l.minLevel {
		return
	}

	// Format: 2025-12-06T10:45:00 [ERROR] [store] message key=value key2=value2
	timestamp := time.Now().Format("2006-01-02T15:04:05")
	entry := fmt.Sprintf("%s [%s] [%s] %s", timestamp, level, cat, msg)

	all := append(append([]any{}, l.fields...), fields...)
	for i := 0; i+1 < len(all); i += 2 {
		entry += fmt.Sprintf(" %v=%v", all[i], all[i+1])
	}
	// Odd field count: append orphan key with no value
	if len(all)%2 != 0 {
		entry += fmt.Sprintf(" %v=<missing>", all[len(all)-1])
	}
	entry += "\n"

	if l.writer != nil {
		_, _ = l.writer.Write([]byte(entry))
	}
}
