// Package logger is a small leveled wrapper around the standard log package.
// The level is read from LOG_LEVEL (DEBUG, INFO, WARN, ERROR) when the
// package is initialised and defaults to INFO.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents a logging level.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "INFO"
	}
}

// ParseLevel parses a level name.  Unknown names map to InfoLevel.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DebugLevel
	case "WARN", "WARNING":
		return WarnLevel
	case "ERROR":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// Logger writes leveled, UTC-timestamped lines.
type Logger struct {
	mu    sync.RWMutex
	out   *log.Logger
	err   *log.Logger
	level Level
}

var std = New(os.Stdout, os.Stderr, ParseLevel(os.Getenv("LOG_LEVEL")))

// New builds a Logger writing INFO/DEBUG/WARN to out and ERROR to errOut.
func New(out, errOut io.Writer, level Level) *Logger {
	return &Logger{
		out:   log.New(out, "", 0),
		err:   log.New(errOut, "", 0),
		level: level,
	}
}

// Default returns the process-wide logger.
func Default() *Logger { return std }

// SetLevel changes the level of the process-wide logger.
func SetLevel(level Level) { std.SetLevel(level) }

func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
}

func (l *Logger) Level() Level {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

func (l *Logger) logf(level Level, format string, args ...interface{}) {
	if level < l.Level() {
		return
	}
	ts := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
	line := fmt.Sprintf("[%s] %s: %s", ts, level, fmt.Sprintf(format, args...))
	if level == ErrorLevel {
		l.err.Println(line)
		return
	}
	l.out.Println(line)
}

func (l *Logger) Debug(format string, args ...interface{}) { l.logf(DebugLevel, format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.logf(InfoLevel, format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.logf(WarnLevel, format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.logf(ErrorLevel, format, args...) }

func Debug(format string, args ...interface{}) { std.Debug(format, args...) }
func Info(format string, args ...interface{})  { std.Info(format, args...) }
func Warn(format string, args ...interface{})  { std.Warn(format, args...) }
func Error(format string, args ...interface{}) { std.Error(format, args...) }
