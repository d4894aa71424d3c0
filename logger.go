package geolayer

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler discards every record; Enabled returns false so that
// callers skip formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger of the package. By default nothing is logged.
// Pass nil to restore the silent default.
//
// Log levels used:
//   - [slog.LevelDebug]: per-frame diagnostics, discarded engine state reset errors
//   - [slog.LevelInfo]: attach and detach of the overlay
//   - [slog.LevelWarn]: invalid up axis, malformed projection matrix, failed render pass
//
// Engines created afterwards receive the logger too if they implement
// SetLogger(*slog.Logger).
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger. It is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

type loggerSetter interface {
	SetLogger(*slog.Logger)
}

// propagateLogger hands the logger to an engine that accepts one
func propagateLogger(target any) {
	if ls, ok := target.(loggerSetter); ok {
		ls.SetLogger(Logger())
	}
}
