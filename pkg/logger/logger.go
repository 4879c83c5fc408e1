// Package logger is the process-wide structured logger.
//
// Call sites pass a message followed by alternating key/value pairs:
//
//	logger.Info("server starting", "address", addr)
//	logger.Error("failed to load products", "error", err)
//
// A trailing value without a key is logged under "detail", or as the
// error field when it is an error.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	log zerolog.Logger
	mu  sync.RWMutex
)

func init() {
	setup("development", os.Stderr)
}

// Init configures the global logger for the given environment.
// "production" emits JSON, anything else a human readable console format.
func Init(env string) {
	mu.Lock()
	defer mu.Unlock()
	setup(env, os.Stderr)
}

// SetOutput redirects log output, mainly for tests.
func SetOutput(env string, w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	setup(env, w)
}

func setup(env string, w io.Writer) {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.MessageFieldName = "message"

	level := zerolog.DebugLevel
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(lvl)); err == nil {
			level = parsed
		}
	} else if isProduction(env) {
		level = zerolog.InfoLevel
	}

	out := w
	if !isProduction(env) {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}

	log = zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func isProduction(env string) bool {
	switch strings.ToLower(env) {
	case "production", "prod":
		return true
	}
	return false
}

func current() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := log
	return &l
}

func Debug(msg string, keyvals ...any) {
	emit(current().Debug(), msg, keyvals)
}

func Info(msg string, keyvals ...any) {
	emit(current().Info(), msg, keyvals)
}

func Warn(msg string, keyvals ...any) {
	emit(current().Warn(), msg, keyvals)
}

func Error(msg string, keyvals ...any) {
	emit(current().Error(), msg, keyvals)
}

// Fatal logs and exits the process.
func Fatal(msg string, keyvals ...any) {
	emit(current().Fatal(), msg, keyvals)
}

func emit(ev *zerolog.Event, msg string, keyvals []any) {
	if ev == nil {
		return
	}

	n := len(keyvals)
	if n%2 == 1 {
		last := keyvals[n-1]
		keyvals = keyvals[:n-1]
		if err, ok := last.(error); ok {
			ev = ev.Err(err)
		} else {
			ev = ev.Interface("detail", last)
		}
	}

	for i := 0; i < len(keyvals); i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			key = "field"
		}
		switch v := keyvals[i+1].(type) {
		case error:
			ev = ev.AnErr(key, v)
		case string:
			ev = ev.Str(key, v)
		case int:
			ev = ev.Int(key, v)
		case int64:
			ev = ev.Int64(key, v)
		case uint64:
			ev = ev.Uint64(key, v)
		case float64:
			ev = ev.Float64(key, v)
		case bool:
			ev = ev.Bool(key, v)
		case time.Duration:
			ev = ev.Dur(key, v)
		default:
			ev = ev.Interface(key, v)
		}
	}

	ev.Msg(msg)
}
