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

// Leveled package logger used across the service, backed by zerolog.
// Init(level) picks the level; Debugf/Infof/Warnf/Errorf/Fatalf write
// structured lines with a "service" field.

const service = "douban-interactions"

var (
	mu     sync.RWMutex
	logger = newLogger(os.Stdout, false)
)

func newLogger(w io.Writer, console bool) zerolog.Logger {
	if console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).With().Timestamp().Str("service", service).Logger().Level(zerolog.InfoLevel)
}

// Init sets the global log level (case-insensitive: debug, info, warn, error, fatal).
// Call early during startup. Default level is Info.
func Init(l string) {
	mu.Lock()
	defer mu.Unlock()
	logger = logger.Level(parseLevel(l))
}

// UseConsole switches to human-readable output (development).
func UseConsole() {
	mu.Lock()
	defer mu.Unlock()
	lvl := logger.GetLevel()
	logger = newLogger(os.Stdout, true).Level(lvl)
}

// SetOutput redirects log output, keeping the current level.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	lvl := logger.GetLevel()
	logger = newLogger(w, false).Level(lvl)
}

func parseLevel(l string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(l)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	}
	return zerolog.InfoLevel
}

func current() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := logger
	return &l
}

func Debugf(format string, v ...interface{}) { current().Debug().Msgf(format, v...) }

func Infof(format string, v ...interface{}) { current().Info().Msgf(format, v...) }

func Warnf(format string, v ...interface{}) { current().Warn().Msgf(format, v...) }

func Errorf(format string, v ...interface{}) { current().Error().Msgf(format, v...) }

// Fatalf logs and exits with status 1 regardless of level.
func Fatalf(format string, v ...interface{}) {
	current().WithLevel(zerolog.FatalLevel).Msgf(format, v...)
	os.Exit(1)
}

// Println maps to Info.
func Println(v ...interface{}) {
	current().Info().Msg(strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
}

func Debug(v string) { Debugf("%s", v) }
func Info(v string)  { Infof("%s", v) }
func Warn(v string)  { Warnf("%s", v) }
func Error(v string) { Errorf("%s", v) }

// With returns a child logger carrying the given key/value context, for
// call sites that want structured fields instead of formatted text.
func With(fields map[string]interface{}) zerolog.Logger {
	return current().With().Fields(fields).Logger()
}

// LevelString returns the current level as text.
func LevelString() string {
	switch current().GetLevel() {
	case zerolog.DebugLevel:
		return "debug"
	case zerolog.WarnLevel:
		return "warn"
	case zerolog.ErrorLevel:
		return "error"
	case zerolog.FatalLevel:
		return "fatal"
	}
	return "info"
}
