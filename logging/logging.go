// Package logging provides namespaced diagnostic loggers on top of log/slog.
//
// Every component gets its own *Logger (for example "cache:en-de"), which can
// be switched on and off at runtime. Namespaces listed in the BINGO_DEBUG
// environment variable start enabled:
//
//	BINGO_DEBUG=cache:*,session bingo translate --to de "Hello"
package logging

import (
	"io"
	"log/slog"
	"os"
	"path"
	"strings"
	"sync/atomic"
)

// DebugEnv is the environment variable holding the enabled namespaces.
const DebugEnv = "BINGO_DEBUG"

var debugOverride atomic.Pointer[string]

// SetDebug replaces BINGO_DEBUG for loggers created afterwards.
// An empty spec restores the environment variable.
func SetDebug(spec string) {
	debugOverride.Store(&spec)
}

// debugSpec returns the active namespace patterns.
func debugSpec() string {
	if p := debugOverride.Load(); p != nil && *p != "" {
		return *p
	}
	return os.Getenv(DebugEnv)
}

// Logger is a namespaced logger that can be toggled at runtime.
// The zero value is not usable; create one with New.
type Logger struct {
	namespace string
	base      *slog.Logger
	enabled   atomic.Bool
}

// New creates a logger for namespace writing to base.
// If base is nil, slog.Default() is used.
func New(namespace string, base *slog.Logger) *Logger {
	if base == nil {
		base = slog.Default()
	}
	l := &Logger{
		namespace: namespace,
		base:      base.With("ns", namespace),
	}
	l.enabled.Store(matches(debugSpec(), namespace))
	return l
}

// Discard returns a logger that never writes.
func Discard() *Logger {
	return &Logger{
		namespace: "discard",
		base:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// Namespace returns the logger namespace.
func (l *Logger) Namespace() string {
	return l.namespace
}

// Enable turns on diagnostic output.
func (l *Logger) Enable() {
	l.enabled.Store(true)
}

// Disable turns off diagnostic output. Errors are still reported.
func (l *Logger) Disable() {
	l.enabled.Store(false)
}

// Enabled reports whether diagnostic output is on.
func (l *Logger) Enabled() bool {
	return l.enabled.Load()
}

// Log writes a debug message with optional key/value context.
func (l *Logger) Log(msg string, args ...any) {
	if !l.enabled.Load() {
		return
	}
	l.base.Debug(msg, args...)
}

// Error reports a failure. Errors bypass the namespace toggle.
func (l *Logger) Error(msg string, err error, args ...any) {
	l.base.Error(msg, append([]any{"error", err}, args...)...)
}

// Child returns a logger for a sub-namespace ("parent:name") that inherits
// the parent's enabled state unless the debug patterns enable it explicitly.
func (l *Logger) Child(name string) *Logger {
	c := &Logger{
		namespace: l.namespace + ":" + name,
		base:      l.base.With("sub", name),
	}
	c.enabled.Store(l.Enabled() || matches(debugSpec(), c.namespace))
	return c
}

// matches reports whether namespace is selected by the comma separated
// patterns in spec. Patterns use path.Match syntax, so "cache:*" works.
func matches(spec, namespace string) bool {
	for _, p := range strings.Split(spec, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if p == "*" || p == namespace {
			return true
		}
		if ok, _ := path.Match(p, namespace); ok {
			return true
		}
	}
	return false
}
