// Package logging provides the leveled "[timestamp] [LEVEL] message" output
// shared by the daemon and its collaborators.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"
)

// Level is a log severity.
type Level int32

// Levels, lowest first.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelError
)

// TimeFormat is the timestamp layout used in every line.
const TimeFormat = "2006-01-02 15:04:05"

var minLevel atomic.Int32

func init() {
	minLevel.Store(int32(LevelInfo))
}

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarning:
		return "WARNING"
	default:
		return "ERROR"
	}
}

// ParseLevel maps a settings value to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarning
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// SetLevel sets the minimum level that is written.
func SetLevel(l Level) {
	minLevel.Store(int32(l))
}

// EnableDebug turns on debug output.
func EnableDebug() {
	SetLevel(LevelDebug)
	Debugf("debug logging enabled")
}

// DebugEnabled reports whether debug logging is active.
func DebugEnabled() bool {
	return Level(minLevel.Load()) <= LevelDebug
}

// Setup routes the standard logger to stderr and, if path is non-empty, to
// path opened for append. The returned closer releases the file.
func Setup(path string) (io.Closer, error) {
	log.SetFlags(0)
	log.SetPrefix("")
	if path == "" {
		log.SetOutput(os.Stderr)
		return io.NopCloser(nil), nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.SetOutput(os.Stderr)
		return io.NopCloser(nil), fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.SetOutput(os.Stderr)
		return io.NopCloser(nil), fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	log.SetOutput(io.MultiWriter(os.Stderr, f))
	return f, nil
}

// Logf writes one line at the given level.
func Logf(level Level, format string, args ...any) {
	if level < Level(minLevel.Load()) {
		return
	}
	log.Printf("[%s] [%s] %s", time.Now().Format(TimeFormat), level, fmt.Sprintf(format, args...))
}

// Debugf emits a formatted debug message when debugging is enabled.
func Debugf(format string, args ...any) { Logf(LevelDebug, format, args...) }

// Infof emits a formatted info message.
func Infof(format string, args ...any) { Logf(LevelInfo, format, args...) }

// Warnf emits a formatted warning.
func Warnf(format string, args ...any) { Logf(LevelWarning, format, args...) }

// Errorf emits a formatted error message.
func Errorf(format string, args ...any) { Logf(LevelError, format, args...) }

// Logger tags every message with a component name, e.g. "[rpc]".
type Logger struct {
	tag string
}

// New returns a Logger for the named component.
func New(component string) *Logger {
	return &Logger{tag: "[" + component + "] "}
}

// Debugf emits a tagged debug message.
func (l *Logger) Debugf(format string, args ...any) { Logf(LevelDebug, l.tag+format, args...) }

// Infof emits a tagged info message.
func (l *Logger) Infof(format string, args ...any) { Logf(LevelInfo, l.tag+format, args...) }

// Warnf emits a tagged warning.
func (l *Logger) Warnf(format string, args ...any) { Logf(LevelWarning, l.tag+format, args...) }

// Errorf emits a tagged error message.
func (l *Logger) Errorf(format string, args ...any) { Logf(LevelError, l.tag+format, args...) }

// MaskIdentifier obscures an identifier leaving only the last four characters
// visible.
func MaskIdentifier(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	if len(trimmed) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(trimmed)-4) + trimmed[len(trimmed)-4:]
}
