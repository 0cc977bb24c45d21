// Copyright 2020 Aleksandr Demakin. All rights reserved.

// Package logger configures the zerolog logger shared by the checker packages.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Output formats accepted by Setup and New.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Log is the process-wide logger.
var Log = New(os.Stderr, FormatConsole)

// Logger wraps a zerolog logger with key-value helpers.
type Logger struct {
	z zerolog.Logger
}

// New returns a logger writing to w in the given format.
// Unknown formats fall back to the console format.
func New(w io.Writer, format string) *Logger {
	if strings.ToLower(format) != FormatJSON {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return &Logger{z: zerolog.New(w).With().Timestamp().Logger()}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{z: zerolog.Nop()}
}

// ParseLevel maps a level name to a zerolog level. Unknown names are Info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return zerolog.DebugLevel
	case "WARN":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	case "DISABLED", "OFF":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// Setup sets the global level and replaces Log with a stderr logger.
func Setup(level string, format string) {
	zerolog.SetGlobalLevel(ParseLevel(level))
	Log = New(os.Stderr, format)
}

// With returns a child logger with the field attached to every event.
func (l *Logger) With(key string, value interface{}) *Logger {
	return &Logger{z: l.z.With().Interface(key, value).Logger()}
}

// Info logs at info level with key-value pairs.
func (l *Logger) Info(msg string, args ...interface{}) {
	send(l.z.Info(), msg, args)
}

// Debug logs at debug level with key-value pairs.
func (l *Logger) Debug(msg string, args ...interface{}) {
	send(l.z.Debug(), msg, args)
}

// Warn logs at warn level with key-value pairs.
func (l *Logger) Warn(msg string, args ...interface{}) {
	send(l.z.Warn(), msg, args)
}

// Error logs at error level with key-value pairs.
func (l *Logger) Error(msg string, args ...interface{}) {
	send(l.z.Error(), msg, args)
}

// send adds key-value pairs to e and writes it. A trailing key without a value is dropped.
func send(e *zerolog.Event, msg string, args []interface{}) {
	if e == nil {
		return
	}
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", args[i])
		}
		e.Interface(key, args[i+1])
	}
	e.Msg(msg)
}
