// Package logging holds the logger shared by every greeble package.
// By default nothing is logged.
package logging

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/gg"
)

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger installs l for greeble and the rasterizer used by previews.
// Pass nil to silence logging again.
//
// Levels:
//   - Debug: per-face decisions and dead branches
//   - Info: batch and cell lifecycle
//   - Warn: kernel precondition failures that end a branch
func SetLogger(l *slog.Logger) {
	gg.SetLogger(l)
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
