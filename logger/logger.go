// Package logger is the structured logging facade used by every monitor
// component. Fields travel as a map so call sites stay independent of the
// backend; LogrusLogger is the production implementation.
package logger

import "context"

// Logger writes leveled, structured entries. Implementations must be safe
// for concurrent use. fields may be nil.
type Logger interface {
	Debug(ctx context.Context, msg string, fields map[string]interface{})
	Info(ctx context.Context, msg string, fields map[string]interface{})
	Warn(ctx context.Context, msg string, fields map[string]interface{})
	Error(ctx context.Context, msg string, fields map[string]interface{})

	// WithField returns a child logger that adds key to every entry.
	WithField(key string, value interface{}) Logger

	// WithFields returns a child logger that adds fields to every entry.
	WithFields(fields map[string]interface{}) Logger
}

type nopLogger struct{}

// Nop returns a Logger that discards everything.
func Nop() Logger { return nopLogger{} }

func (nopLogger) Debug(context.Context, string, map[string]interface{}) {}
func (nopLogger) Info(context.Context, string, map[string]interface{}) {}
func (nopLogger) Warn(context.Context, string, map[string]interface{}) {}
func (nopLogger) Error(context.Context, string, map[string]interface{}) {}

func (l nopLogger) WithField(string, interface{}) Logger { return l }
func (l nopLogger) WithFields(map[string]interface{}) Logger { return l }
