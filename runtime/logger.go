package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// LogLevel is the verbosity threshold of evaluator and scheduler logs.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
	LogLevelOff
)

func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	case LogLevelOff:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

// Level maps the level onto slog, so a LogLevel can be used as a
// slog.Leveler.  Off sits above every level slog emits.
func (l LogLevel) Level() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	case LogLevelOff:
		return slog.LevelError + 4
	}
	return slog.LevelInfo
}

// ParseLogLevel accepts the level names in any case, plus WARNING and NONE.
func ParseLogLevel(s string) (LogLevel, error) {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return LogLevelDebug, nil
	case "INFO":
		return LogLevelInfo, nil
	case "WARN", "WARNING":
		return LogLevelWarn, nil
	case "ERROR":
		return LogLevelError, nil
	case "OFF", "NONE":
		return LogLevelOff, nil
	default:
		return LogLevelInfo, fmt.Errorf("unknown log level: %s", s)
	}
}

// Logger is what the evaluator and scheduler log through.  Messages are
// printf style.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
	SetLevel(level LogLevel)
	GetLevel() LogLevel
}

// DefaultLogger formats messages and emits them as slog records.  Until it is
// given a handler of its own it logs through slog.Default(), so whatever
// handler the binary installs also renders runtime logs.
type DefaultLogger struct {
	mu      sync.RWMutex
	level   LogLevel
	handler slog.Handler
}

// NewLogger creates a logger writing text records to output, or to
// slog.Default() when output is nil.
func NewLogger(output io.Writer, level LogLevel) *DefaultLogger {
	l := &DefaultLogger{level: level}
	l.SetOutput(output)
	return l
}

func (l *DefaultLogger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *DefaultLogger) GetLevel() LogLevel {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

// SetOutput sends records to a text handler on output.  A nil output goes
// back to slog.Default().
func (l *DefaultLogger) SetOutput(output io.Writer) {
	var h slog.Handler
	if output != nil {
		h = slog.NewTextHandler(output, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	l.SetHandler(h)
}

// SetHandler routes records to h, or to slog.Default() when h is nil.
func (l *DefaultLogger) SetHandler(h slog.Handler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handler = h
}

// Handler returns the handler records currently go to.
func (l *DefaultLogger) Handler() slog.Handler {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.handler != nil {
		return l.handler
	}
	return slog.Default().Handler()
}

// Records must pass both our level and the handler's own.
func (l *DefaultLogger) log(level LogLevel, format string, args ...any) {
	if level < l.GetLevel() {
		return
	}
	ctx := context.Background()
	h := l.Handler()
	if !h.Enabled(ctx, level.Level()) {
		return
	}
	r := slog.NewRecord(time.Now(), level.Level(), fmt.Sprintf(format, args...), 0)
	_ = h.Handle(ctx, r)
}

func (l *DefaultLogger) Debug(format string, args ...any) {
	l.log(LogLevelDebug, format, args...)
}

func (l *DefaultLogger) Info(format string, args ...any) {
	l.log(LogLevelInfo, format, args...)
}

func (l *DefaultLogger) Warn(format string, args ...any) {
	l.log(LogLevelWarn, format, args...)
}

func (l *DefaultLogger) Error(format string, args ...any) {
	l.log(LogLevelError, format, args...)
}

var globalLogger = NewLogger(nil, LogLevelInfo)

// GlobalLogger is the logger evaluators and schedulers use unless given
// another one.
func GlobalLogger() *DefaultLogger {
	return globalLogger
}

// SetLogLevel sets the level of the global logger.  The level of slog's
// built in default handler follows, so debug records are not dropped there
// when no other handler is installed.
func SetLogLevel(level LogLevel) {
	globalLogger.SetLevel(level)
	slog.SetLogLoggerLevel(level.Level())
}

func GetLogLevel() LogLevel {
	return globalLogger.GetLevel()
}

func init() {
	if levelStr := os.Getenv("ECSL_LOG_LEVEL"); levelStr != "" {
		if level, err := ParseLogLevel(levelStr); err == nil {
			SetLogLevel(level)
		}
	}

	// Test binaries only show errors unless a test asks for more
	if strings.HasSuffix(os.Args[0], ".test") {
		SetLogLevel(LogLevelError)
	}
}
