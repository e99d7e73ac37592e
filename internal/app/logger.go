package app

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
)

// AtomicLogger holds the process logger and lets a config reload replace it.
type AtomicLogger struct {
	current atomic.Pointer[slog.Logger]
}

// NewAtomicLogger creates an AtomicLogger starting with l.
func NewAtomicLogger(l *slog.Logger) *AtomicLogger {
	a := &AtomicLogger{}
	a.current.Store(l)
	return a
}

// Get returns the logger in effect right now.
func (a *AtomicLogger) Get() *slog.Logger {
	return a.current.Load()
}

// Swap replaces the logger. Loggers returned by Logger follow the swap.
func (a *AtomicLogger) Swap(l *slog.Logger) {
	a.current.Store(l)
}

// Logger returns a logger that always writes through the current handler.
func (a *AtomicLogger) Logger() *slog.Logger {
	return slog.New(&swapHandler{owner: a})
}

// swapHandler resolves the current handler on every call and replays
// the attributes and groups added through With and WithGroup.
type swapHandler struct {
	owner *AtomicLogger
	ops   []func(slog.Handler) slog.Handler
}

func (h *swapHandler) handler() slog.Handler {
	hd := h.owner.Get().Handler()
	for _, op := range h.ops {
		hd = op(hd)
	}
	return hd
}

func (h *swapHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.owner.Get().Handler().Enabled(ctx, level)
}

func (h *swapHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.handler().Handle(ctx, r)
}

func (h *swapHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.with(func(hd slog.Handler) slog.Handler { return hd.WithAttrs(attrs) })
}

func (h *swapHandler) WithGroup(name string) slog.Handler {
	return h.with(func(hd slog.Handler) slog.Handler { return hd.WithGroup(name) })
}

func (h *swapHandler) with(op func(slog.Handler) slog.Handler) slog.Handler {
	ops := make([]func(slog.Handler) slog.Handler, len(h.ops), len(h.ops)+1)
	copy(ops, h.ops)
	return &swapHandler{owner: h.owner, ops: append(ops, op)}
}

// newLogger creates and configures a logger writing to w.
func newLogger(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var handler slog.Handler
	if strings.EqualFold(format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// slogAdapter adapts slog.Logger to the logger.Logger interface.
type slogAdapter struct {
	logger *slog.Logger
}

func (a *slogAdapter) Debug(msg string, keysAndValues ...any) {
	a.logger.Debug(msg, keysAndValues...)
}

func (a *slogAdapter) Info(msg string, keysAndValues ...any) {
	a.logger.Info(msg, keysAndValues...)
}

func (a *slogAdapter) Warn(msg string, keysAndValues ...any) {
	a.logger.Warn(msg, keysAndValues...)
}

func (a *slogAdapter) Error(msg string, keysAndValues ...any) {
	a.logger.Error(msg, keysAndValues...)
}
