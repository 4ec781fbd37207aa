// Package logging provides a thin level filter over the standard
// library logger. The core never reaches for a structured logging
// library (see DESIGN.md); plain log.Printf with level gating matches
// the teacher's own ambition.
package logging

import (
	"log"
	"os"
	"strings"
)

// Level is one of debug, info, warn, error.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func parseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger gates log.Printf calls on a minimum level, read once from
// LOG_LEVEL (spec §6) at construction time.
type Logger struct {
	min    Level
	prefix string
}

// New creates a Logger whose minimum level is read from the LOG_LEVEL
// environment variable (info when unset or unrecognized).
func New(prefix string) *Logger {
	return &Logger{min: parseLevel(os.Getenv("LOG_LEVEL")), prefix: prefix}
}

func (l *Logger) log(level Level, tag, format string, args ...any) {
	if level < l.min {
		return
	}
	if l.prefix != "" {
		format = "[" + l.prefix + "] " + tag + " " + format
	} else {
		format = tag + " " + format
	}
	log.Printf(format, args...)
}

func (l *Logger) Debugf(format string, args ...any) { l.log(LevelDebug, "debug:", format, args...) }
func (l *Logger) Infof(format string, args ...any)   { l.log(LevelInfo, "info:", format, args...) }
func (l *Logger) Warnf(format string, args ...any)   { l.log(LevelWarn, "warn:", format, args...) }
func (l *Logger) Errorf(format string, args ...any)  { l.log(LevelError, "error:", format, args...) }
