// Package logx is the leveled logger used across the firmware.
//
// Two backends exist, selected by build tags in the same way as the rest of
// x/: MCU builds print compact "Info: msg k=v" lines to an io.Writer (usually
// a UART), host builds route entries through logrus with structured fields.
// Callers only see the Logger interface.
package logx

import "strings"

// Level orders events from most to least verbose.
type Level uint8

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "Trace"
	case LevelDebug:
		return "Debug"
	case LevelInfo:
		return "Info"
	case LevelWarn:
		return "Warn"
	default:
		return "Error"
	}
}

// ParseLevel accepts "trace".."error" in any case.
func ParseLevel(s string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LevelTrace, true
	case "debug":
		return LevelDebug, true
	case "info", "":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	}
	return LevelInfo, false
}

// Logger emits one event per call. kv is a flat list of key, value pairs.
type Logger interface {
	Trace(msg string, kv ...any)
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)
	// With returns a child logger that prefixes every event with kv.
	With(kv ...any) Logger
}

type nop struct{}

func (nop) Trace(string, ...any) {}
func (nop) Debug(string, ...any) {}
func (nop) Info(string, ...any)  {}
func (nop) Warn(string, ...any)  {}
func (nop) Error(string, ...any) {}
func (nop) With(...any) Logger   { return nop{} }

// Nop discards everything.
func Nop() Logger { return nop{} }

// OrNop returns l, or a discarding logger when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return nop{}
	}
	return l
}

// join appends extra pairs to base without aliasing base's backing array.
func join(base []any, extra []any) []any {
	out := make([]any, 0, len(base)+len(extra))
	out = append(out, base...)
	return append(out, extra...)
}
