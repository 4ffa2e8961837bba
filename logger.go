package surf3d

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely, making disabled logging effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	l := newNopLogger()
	loggerPtr.Store(l)
}

// SetLogger configures the logger for surf3d. By default, surf3d produces
// no log output. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by surf3d:
//   - [slog.LevelDebug]: per-operation diagnostics (transfers, launches)
//   - [slog.LevelInfo]: lifecycle events (surface created)
//   - [slog.LevelWarn]: non-fatal issues (dropped element access, release errors)
//
// Devices that implement SetLogger(*slog.Logger) receive the logger when an
// array is constructed on them, so backend diagnostics share the same
// configuration.
//
// Example:
//
//	// Enable info-level logging to stderr:
//	surf3d.SetLogger(slog.Default())
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger used by surf3d.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// loggerSetter is implemented by devices that accept a logger.
type loggerSetter interface {
	SetLogger(*slog.Logger)
}

// propagateLogger passes the current logger to a device if it implements
// the loggerSetter interface. Called from array constructors so the device
// always has the logger that was active when it was put to use.
func propagateLogger(dev any) {
	if ls, ok := dev.(loggerSetter); ok {
		ls.SetLogger(Logger())
	}
}
