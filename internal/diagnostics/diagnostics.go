// Package diagnostics wires an optional structured-logging trace sink into
// the otherwise pure, I/O-free validation pipeline. It wraps
// go.uber.org/zap behind a small nil-safe interface so callers that never
// configure a logger pay nothing and never see a nil-pointer panic.
package diagnostics

import "go.uber.org/zap"

// Logger is the trace sink cypherguard.Validate calls through. A nil *Logger is valid and silently drops every call, so the
// core stays usable with zero configuration.
type Logger struct {
	z *zap.Logger
}

// New wraps an existing zap logger. Passing nil is equivalent to the zero
// value: every method becomes a no-op.
func New(z *zap.Logger) *Logger {
	if z == nil {
		return nil
	}
	return &Logger{z: z}
}

// NoOp returns a Logger that discards everything, for callers that want an
// explicit value rather than a nil *Logger.
func NoOp() *Logger {
	return New(zap.NewNop())
}

// Trace logs one pipeline step (e.g. "parsed", "extracted", "validated")
// with structured fields. Safe to call on a nil receiver.
func (l *Logger) Trace(step string, fields ...zap.Field) {
	if l == nil || l.z == nil {
		return
	}
	l.z.Debug(step, fields...)
}

// Error logs a pipeline failure. Safe to call on a nil receiver.
func (l *Logger) Error(step string, err error, fields ...zap.Field) {
	if l == nil || l.z == nil || err == nil {
		return
	}
	l.z.Error(step, append(fields, zap.Error(err))...)
}
