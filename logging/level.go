// Package logging defines the level-tagged logging callback taken by the
// pool and sub-pool (and the interactive shell's options); the connection
// and driver layers do not log.
//
// The library never writes to a global logger: every component that wants to
// emit trace or error messages takes a Func and calls it directly, the same
// way the connection pool expects a caller-supplied callback for its trace
// attachment point.
package logging

import "fmt"

// Level indicates the severity of a logged message.
type Level int

const (
	// Debug is used for verbose per-statement tracing (query text, timing).
	Debug Level = iota
	// Info is used for lifecycle events (pool started, connection opened).
	Info
	// Warn is used for recoverable conditions (host marked failed, isolation
	// level downgraded).
	Warn
	// Error is used for failures that surface to the caller.
	Error
)

// String returns the upper-case name of the level, or "UNKNOWN" for an
// out-of-range value.
func (l Level) String() string {
	switch l {
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warn:
		return "WARN"
	case Error:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Func is a logging callback. format/args follow fmt.Sprintf conventions.
type Func func(level Level, format string, args ...any)

// Discard is a Func that drops every message. It is the default when no
// logger is configured.
func Discard(Level, string, ...any) {}

// Default writes each message to standard output as "[LEVEL] message",
// formatting it fmt.Printf-style; kept trivial on purpose, callers needing
// structured output should supply their own Func.
func Default(level Level, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Printf("[%s] %s\n", level, msg)
}
