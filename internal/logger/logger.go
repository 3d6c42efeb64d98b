// Package logger is a thin printf-style facade over zerolog.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Level is a log severity.
type Level = zerolog.Level

const (
	TraceLevel = zerolog.TraceLevel
	DebugLevel = zerolog.DebugLevel
	InfoLevel  = zerolog.InfoLevel
	WarnLevel  = zerolog.WarnLevel
	ErrorLevel = zerolog.ErrorLevel
	FatalLevel = zerolog.FatalLevel
	PanicLevel = zerolog.PanicLevel
)

var (
	mu     sync.RWMutex
	log    zerolog.Logger
	output io.Writer = os.Stderr
	format           = "console"
)

func init() {
	log = build(output, format).Level(InfoLevel)
	if os.Getenv("DOBBY_DEBUG") == "1" {
		log = log.Level(DebugLevel)
		log.Debug().Msg("[DEBUG] Debug mode enabled")
	}
}

func build(w io.Writer, f string) zerolog.Logger {
	if f == "json" {
		return zerolog.New(w).With().Timestamp().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly, NoColor: true}).
		With().Timestamp().Logger()
}

// ParseLevel converts a level name (trace, debug, info, warn, error, fatal, panic).
func ParseLevel(s string) (Level, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || s == "" {
		return InfoLevel, fmt.Errorf("invalid log level %q", s)
	}
	return lvl, nil
}

// SetLevel changes the minimum level. DOBBY_DEBUG=1 keeps debug output on.
func SetLevel(l Level) {
	if os.Getenv("DOBBY_DEBUG") == "1" && l > DebugLevel {
		l = DebugLevel
	}
	mu.Lock()
	log = log.Level(l)
	mu.Unlock()
}

// GetLevel returns the current minimum level.
func GetLevel() Level {
	mu.RLock()
	defer mu.RUnlock()
	return log.GetLevel()
}

// SetOutput redirects log output, keeping level and format.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	lvl := log.GetLevel()
	output = w
	log = build(output, format).Level(lvl)
}

// SetFormat switches between "console" and "json" output.
func SetFormat(f string) {
	mu.Lock()
	defer mu.Unlock()
	lvl := log.GetLevel()
	format = f
	log = build(output, format).Level(lvl)
}

// OpenFile sends log output to path in addition to stderr.
func OpenFile(path string) (io.Closer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	SetOutput(io.MultiWriter(os.Stderr, f))
	return f, nil
}

func current() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

func Trace(format string, args ...any) {
	l := current()
	l.Trace().Msgf(format, args...)
}

func Debug(format string, args ...any) {
	l := current()
	l.Debug().Msgf(format, args...)
}

func Info(format string, args ...any) {
	l := current()
	l.Info().Msgf(format, args...)
}

func Warn(format string, args ...any) {
	l := current()
	l.Warn().Msgf(format, args...)
}

func Error(format string, args ...any) {
	l := current()
	l.Error().Msgf(format, args...)
}
